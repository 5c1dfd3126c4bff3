package models

// Decision constants
const (
	DecisionLike = "like"
	DecisionPass = "pass"
)

// GenreOther is used for feed records without a genre
const GenreOther = "other"

// Domain types

// PolicyItem is one card. Immutable once loaded.
type PolicyItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Period  string `json:"period"`
	Link    string `json:"link"`
	Genre   string `json:"genre"`
}

type HistoryEntry struct {
	Item     PolicyItem `json:"item"`
	Decision string     `json:"decision"`
}

type GenreShare struct {
	Genre      string  `json:"genre"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // one decimal place
}

// Request types

type CreateSessionRequest struct {
	ViewportWidth float64 `json:"viewport_width"`
}

type PointerDownRequest struct {
	CardID string  `json:"card_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type PointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Response types

type CreateSessionResponse struct {
	SessionID  string          `json:"session_id"`
	SessionKey string          `json:"session_key"`
	Session    SessionSnapshot `json:"session"`
}

type SessionSnapshot struct {
	Phase         string       `json:"phase"`
	Locked        bool         `json:"locked"`
	Cards         []PolicyItem `json:"cards"`
	Remaining     int          `json:"remaining"`
	HistoryLen    int          `json:"history_len"`
	LikedCount    int          `json:"liked_count"`
	Empty         bool         `json:"empty"`
	LikeDirection string       `json:"like_direction"`
}

// PointerDownResponse reports whether a drag started. Rejected pointer-downs
// are dropped, not queued.
type PointerDownResponse struct {
	Accepted bool   `json:"accepted"`
	Phase    string `json:"phase"`
	Reason   string `json:"reason,omitempty"`
}

type FrameResponse struct {
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	Rotation    float64 `json:"rotation"`
	LikeOpacity float64 `json:"like_opacity"`
	PassOpacity float64 `json:"pass_opacity"`
}

// OutcomeResponse describes the result of a pointer-up, key press or
// transition completion.
type OutcomeResponse struct {
	Kind         string        `json:"kind"`
	Phase        string        `json:"phase"`
	TransitionID uint64        `json:"transition_id,omitempty"`
	Direction    string        `json:"direction,omitempty"`
	Decision     string        `json:"decision,omitempty"`
	Card         *PolicyItem   `json:"card,omitempty"`
	Link         string        `json:"link,omitempty"`
	Committed    *HistoryEntry `json:"committed,omitempty"`
}

type UndoResponse struct {
	Restored *HistoryEntry   `json:"restored,omitempty"`
	Message  string          `json:"message,omitempty"`
	Session  SessionSnapshot `json:"session"`
}

type LoadMoreResponse struct {
	Released int             `json:"released"`
	Message  string          `json:"message,omitempty"`
	Session  SessionSnapshot `json:"session"`
}

type PoliciesResponse struct {
	Policies []PolicyItem `json:"policies"`
}

type LikedResponse struct {
	IDs      []string     `json:"ids"`
	Policies []PolicyItem `json:"policies"`
	Degraded bool         `json:"degraded,omitempty"`
}

type AnalysisResponse struct {
	TotalLiked int          `json:"total_liked"`
	Genres     []GenreShare `json:"genres"`
	Nickname   string       `json:"nickname,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
