// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package swipe

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/deck"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/models"
)

var (
	ErrLocked           = errors.New("a swipe is still being committed")
	ErrNotFront         = errors.New("card is not the front of the deck")
	ErrNoGesture        = errors.New("no drag in progress")
	ErrGestureActive    = errors.New("a drag is in progress")
	ErrStaleGesture     = errors.New("drag outlived its card")
	ErrStaleTransition  = errors.New("transition is not pending")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrEmptyDeck        = errors.New("deck is empty")
	ErrInvalidDirection = errors.New("direction must be left or right")
)

// Phase is the gesture state of a controller
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseDragging       Phase = "dragging"
	PhaseCommittingLike Phase = "committing_like"
	PhaseCommittingPass Phase = "committing_pass"
	PhaseReturning      Phase = "returning"
)

// OutcomeKind says what a pointer-up, key press or completion resulted in
type OutcomeKind string

const (
	// The drag was a click: open the card's detail view
	OutcomeClick OutcomeKind = "click"
	// An exit transition started; mutation waits for Complete
	OutcomeCommit OutcomeKind = "commit"
	// A return-to-center transition started
	OutcomeReturn OutcomeKind = "return"
	// An exit transition completed and the swipe was applied
	OutcomeCommitted OutcomeKind = "committed"
	// A return transition completed
	OutcomeSettled OutcomeKind = "settled"
)

type Point struct {
	X, Y float64
}

// Frame is the render state of the dragged card
type Frame struct {
	OffsetX     float64
	OffsetY     float64
	Rotation    float64
	LikeOpacity float64
	PassOpacity float64
}

type Outcome struct {
	Kind         OutcomeKind
	TransitionID uint64
	Direction    Direction
	Decision     string
	Item         models.PolicyItem
	Committed    *models.HistoryEntry
}

// Analyzer receives the liked items once the like-count threshold is reached.
// Analyze must not block.
type Analyzer interface {
	Analyze(liked []models.PolicyItem)
}

type Options struct {
	Config  Config
	Catalog *catalog.Store
	Liked   *liked.Set
	// Optional
	Analyzer Analyzer
	// Viewport width reported by the client; 0 uses Config.ViewportWidth
	ViewportWidth float64
	Rand          *rand.Rand
	Now           func() time.Time
}

type gesture struct {
	cardID  string
	start   Point
	current Point
}

type transitionKind int

const (
	transitionExit transitionKind = iota
	transitionReturn
)

type transition struct {
	id        uint64
	kind      transitionKind
	item      models.PolicyItem
	direction Direction
	decision  string
	startedAt time.Time
}

// Controller owns one swipe session: the deck, its pager, the undo history and
// the gesture state machine. It is driven by one event at a time and is not
// safe for concurrent use.
type Controller struct {
	cfg      Config
	viewport float64
	catalog  *catalog.Store
	liked    *liked.Set
	analyzer Analyzer
	builder  deck.Builder
	now      func() time.Time

	deck    *deck.Deck
	pager   *deck.Pager
	history History

	phase   Phase
	gesture *gesture
	pending *transition
	lastID  uint64

	analysisFired bool
}

// NewController builds the first deck from the catalog, excluding liked ids,
// and releases the first batch.
func NewController(opts Options) *Controller {
	viewport := opts.ViewportWidth
	if viewport <= 0 {
		viewport = opts.Config.ViewportWidth
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		cfg:      opts.Config,
		viewport: viewport,
		catalog:  opts.Catalog,
		liked:    opts.Liked,
		analyzer: opts.Analyzer,
		builder:  deck.Builder{ChunkSize: opts.Config.ChunkSize, Rand: opts.Rand},
		now:      now,
		deck:     deck.New(nil),
		phase:    PhaseIdle,
	}
	c.rebuild()
	// A device that already crossed the threshold in an earlier session
	// should not be re-analyzed on its next like.
	if c.cfg.AnalysisThreshold > 0 && c.liked.Len() >= c.cfg.AnalysisThreshold {
		c.analysisFired = true
	}
	return c
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// Locked reports whether a commit transition is in flight. New gestures are
// dropped while locked.
func (c *Controller) Locked() bool {
	return c.phase == PhaseCommittingLike || c.phase == PhaseCommittingPass
}

// Threshold is the horizontal distance a drag must exceed to commit
func (c *Controller) Threshold() float64 {
	return c.cfg.CommitThresholdFraction * c.viewport
}

// PointerDown starts a drag on cardID, which must be the front of the deck.
func (c *Controller) PointerDown(ctx context.Context, cardID string, p Point) error {
	if c.Locked() {
		if c.now().Sub(c.pending.startedAt) < c.cfg.AnimationTimeout {
			rejectedTotal.WithLabelValues("locked").Inc()
			return ErrLocked
		}
		slog.Warn("commit transition was never completed, forcing it",
			"transition_id", c.pending.id,
			"policy_id", c.pending.item.ID,
		)
		forcedTotal.Inc()
		c.finishCommit(ctx)
	}

	front, ok := c.deck.Front()
	if !ok || front.ID != cardID {
		rejectedTotal.WithLabelValues("not_front").Inc()
		return ErrNotFront
	}

	// Any drag or return still around belongs to an abandoned gesture
	c.reset()

	c.gesture = &gesture{cardID: cardID, start: p, current: p}
	c.phase = PhaseDragging
	return nil
}

// PointerMove updates the drag offset and returns the card's render state
func (c *Controller) PointerMove(p Point) (Frame, error) {
	if err := c.checkGesture(); err != nil {
		return Frame{}, err
	}
	c.gesture.current = p
	return c.frame(), nil
}

// PointerUp ends the drag and classifies it as a click, a commit or a return.
func (c *Controller) PointerUp(p Point) (Outcome, error) {
	if err := c.checkGesture(); err != nil {
		return Outcome{}, err
	}
	c.gesture.current = p

	item, _ := c.deck.Front()
	dx := c.gesture.current.X - c.gesture.start.X
	dy := c.gesture.current.Y - c.gesture.start.Y

	if math.Hypot(dx, dy) < c.cfg.ClickSlop {
		c.reset()
		clicksTotal.Inc()
		return Outcome{Kind: OutcomeClick, Item: item}, nil
	}

	if math.Abs(dx) > c.Threshold() {
		dir := Left
		if dx > 0 {
			dir = Right
		}
		return c.beginCommit(item, dir), nil
	}

	c.gesture = nil
	c.phase = PhaseReturning
	t := c.newTransition(transitionReturn, item, "", "")
	return Outcome{Kind: OutcomeReturn, TransitionID: t.id, Item: item}, nil
}

// Cancel abandons a drag or a pending return. A commit in flight is not
// affected.
func (c *Controller) Cancel() {
	if c.Locked() {
		return
	}
	c.reset()
}

// Key handles an arrow key as a swipe of the front card
func (c *Controller) Key(dir Direction) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{}, ErrInvalidDirection
	}
	if c.Locked() {
		rejectedTotal.WithLabelValues("locked").Inc()
		return Outcome{}, ErrLocked
	}
	if c.phase == PhaseDragging {
		return Outcome{}, ErrGestureActive
	}
	c.reset()

	item, ok := c.deck.Front()
	if !ok {
		return Outcome{}, ErrEmptyDeck
	}
	return c.beginCommit(item, dir), nil
}

// Complete is called when the client finishes the transition with the given
// id. Finishing an exit transition applies the swipe.
func (c *Controller) Complete(ctx context.Context, transitionID uint64) (Outcome, error) {
	if c.pending == nil || c.pending.id != transitionID {
		return Outcome{}, ErrStaleTransition
	}

	t := c.pending
	if t.kind == transitionReturn {
		c.reset()
		return Outcome{Kind: OutcomeSettled, TransitionID: t.id, Item: t.item}, nil
	}

	entry := c.finishCommit(ctx)
	return Outcome{
		Kind:         OutcomeCommitted,
		TransitionID: t.id,
		Direction:    t.direction,
		Decision:     t.decision,
		Item:         t.item,
		Committed:    &entry,
	}, nil
}

// Undo reverts the most recent committed swipe: the card returns to the
// front of the deck and a like is removed from the liked set.
func (c *Controller) Undo(ctx context.Context) (models.HistoryEntry, error) {
	if c.Locked() {
		return models.HistoryEntry{}, ErrLocked
	}
	c.reset()

	entry, ok := c.history.Pop()
	if !ok {
		return models.HistoryEntry{}, ErrNothingToUndo
	}

	if entry.Decision == models.DecisionLike {
		c.liked.Remove(ctx, entry.Item.ID)
		if c.cfg.UndoResetsAnalysis && c.liked.Len() < c.cfg.AnalysisThreshold {
			c.analysisFired = false
		}
	}
	// A restart or search may have dealt the card again
	c.deck.Remove(entry.Item.ID)
	c.pager.Remove(entry.Item.ID)
	c.deck.PushFront(entry.Item)
	undoTotal.Inc()
	return entry, nil
}

// DecisionFor maps a swipe direction to like or pass
func (c *Controller) DecisionFor(dir Direction) string {
	if dir == c.cfg.LikeDirection {
		return models.DecisionLike
	}
	return models.DecisionPass
}

func (c *Controller) beginCommit(item models.PolicyItem, dir Direction) Outcome {
	decision := c.DecisionFor(dir)
	c.gesture = nil
	if decision == models.DecisionLike {
		c.phase = PhaseCommittingLike
	} else {
		c.phase = PhaseCommittingPass
	}
	t := c.newTransition(transitionExit, item, dir, decision)
	return Outcome{
		Kind:         OutcomeCommit,
		TransitionID: t.id,
		Direction:    dir,
		Decision:     decision,
		Item:         item,
	}
}

// finishCommit applies the pending exit transition and unlocks
func (c *Controller) finishCommit(ctx context.Context) models.HistoryEntry {
	t := c.pending
	c.pending = nil
	c.phase = PhaseIdle

	if front, ok := c.deck.Front(); ok && front.ID == t.item.ID {
		c.deck.PopFront()
	} else {
		slog.Warn("committed card is no longer at the front", "policy_id", t.item.ID)
	}

	entry := models.HistoryEntry{Item: t.item, Decision: t.decision}
	c.history.Push(entry)
	if t.decision == models.DecisionLike {
		c.liked.Add(ctx, t.item.ID)
		c.maybeAnalyze()
	}
	commitsTotal.WithLabelValues(t.decision).Inc()
	return entry
}

func (c *Controller) maybeAnalyze() {
	if c.analyzer == nil || c.cfg.AnalysisThreshold <= 0 || c.analysisFired {
		return
	}
	if c.liked.Len() < c.cfg.AnalysisThreshold {
		return
	}
	c.analysisFired = true
	c.analyzer.Analyze(c.catalog.Resolve(c.liked.List()))
}

func (c *Controller) newTransition(kind transitionKind, item models.PolicyItem, dir Direction, decision string) *transition {
	c.lastID++
	c.pending = &transition{
		id:        c.lastID,
		kind:      kind,
		item:      item,
		direction: dir,
		decision:  decision,
		startedAt: c.now(),
	}
	return c.pending
}

// checkGesture verifies a drag is active and its card is still the front.
// A drag whose card disappeared is reset.
func (c *Controller) checkGesture() error {
	if c.phase != PhaseDragging || c.gesture == nil {
		return ErrNoGesture
	}
	front, ok := c.deck.Front()
	if !ok || front.ID != c.gesture.cardID {
		slog.Warn("resetting drag on a card that left the front", "card_id", c.gesture.cardID)
		c.reset()
		return ErrStaleGesture
	}
	return nil
}

// reset drops any drag or return transition and goes idle. Callers check
// Locked first.
func (c *Controller) reset() {
	c.gesture = nil
	if c.pending != nil && c.pending.kind == transitionReturn {
		c.pending = nil
	}
	if !c.Locked() {
		c.phase = PhaseIdle
	}
}

func (c *Controller) frame() Frame {
	dx := c.gesture.current.X - c.gesture.start.X
	dy := c.gesture.current.Y - c.gesture.start.Y

	f := Frame{
		OffsetX:  dx,
		OffsetY:  dy,
		Rotation: dx / c.cfg.RotationDivisor,
	}

	opacity := 1.0
	if span := c.Threshold(); span > 0 {
		opacity = math.Min(math.Abs(dx)/span, 1)
	}
	switch {
	case dx > 0:
		c.setOpacity(&f, Right, opacity)
	case dx < 0:
		c.setOpacity(&f, Left, opacity)
	}
	return f
}

func (c *Controller) setOpacity(f *Frame, dir Direction, opacity float64) {
	if c.DecisionFor(dir) == models.DecisionLike {
		f.LikeOpacity = opacity
	} else {
		f.PassOpacity = opacity
	}
}
