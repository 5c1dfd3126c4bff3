// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package swipe

import (
	"errors"
	"fmt"
	"time"
)

// Direction is the horizontal direction of a swipe or arrow key
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

func (d Direction) Valid() bool {
	return d == Left || d == Right
}

// Opposite returns the other direction
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// Config is the single tuning surface for gesture handling and deck building
type Config struct {
	// Fraction of the viewport width a drag must exceed to commit
	CommitThresholdFraction float64 `yaml:"commit_threshold_fraction"`
	// Which swipe direction means "like"; the other means "pass"
	LikeDirection Direction `yaml:"like_direction"`
	// Cards released per "load more"; 0 releases everything at once
	BatchSize int `yaml:"batch_size"`
	// Cards drawn per genre per round-robin round
	ChunkSize int `yaml:"chunk_size"`
	// Drags shorter than this (Euclidean) are clicks
	ClickSlop float64 `yaml:"click_slop"`
	// Rotation in degrees is horizontal offset / RotationDivisor
	RotationDivisor float64 `yaml:"rotation_divisor"`
	// Used when a session does not report its own viewport width
	ViewportWidth float64 `yaml:"viewport_width"`
	// Liked count that triggers a nickname analysis; 0 disables it
	AnalysisThreshold int `yaml:"analysis_threshold"`
	// Re-arm the analysis trigger when undo drops below the threshold
	UndoResetsAnalysis bool `yaml:"undo_resets_analysis"`
	// A commit transition older than this is force-completed by the next
	// pointer-down
	AnimationTimeout time.Duration `yaml:"animation_timeout"`
}

// DefaultConfig returns the canonical tuning: right = like, quarter-viewport
// threshold, batches of 10, chunks of 3.
func DefaultConfig() Config {
	return Config{
		CommitThresholdFraction: 0.25,
		LikeDirection:           Right,
		BatchSize:               10,
		ChunkSize:               3,
		ClickSlop:               10,
		RotationDivisor:         20,
		ViewportWidth:           400,
		AnalysisThreshold:       10,
		UndoResetsAnalysis:      false,
		AnimationTimeout:        2 * time.Second,
	}
}

// Validate checks ranges; it does not fill defaults
func (c Config) Validate() error {
	var errs []error
	if c.CommitThresholdFraction <= 0 || c.CommitThresholdFraction > 1 {
		errs = append(errs, fmt.Errorf("commit_threshold_fraction must be in (0, 1], got %v", c.CommitThresholdFraction))
	}
	if !c.LikeDirection.Valid() {
		errs = append(errs, fmt.Errorf("like_direction must be %q or %q, got %q", Left, Right, c.LikeDirection))
	}
	if c.BatchSize < 0 {
		errs = append(errs, errors.New("batch_size cannot be negative"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk_size must be positive"))
	}
	if c.ClickSlop < 0 {
		errs = append(errs, errors.New("click_slop cannot be negative"))
	}
	if c.RotationDivisor <= 0 {
		errs = append(errs, errors.New("rotation_divisor must be positive"))
	}
	if c.ViewportWidth <= 0 {
		errs = append(errs, errors.New("viewport_width must be positive"))
	}
	if c.AnalysisThreshold < 0 {
		errs = append(errs, errors.New("analysis_threshold cannot be negative"))
	}
	if c.AnimationTimeout <= 0 {
		errs = append(errs, errors.New("animation_timeout must be positive"))
	}
	return errors.Join(errs...)
}
