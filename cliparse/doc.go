// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - SessionKeySalt: Secret for session key HMAC (required)
  - DeviceSalt: Secret for device hashing (required)
  - SeedFile: JSON policy feed imported at startup
  - TuningFile: YAML swipe tuning
  - AnalysisURL: Remote nickname endpoint; empty disables analysis
  - Swipe: Gesture and deck tuning (swipe.Config)

# CLI Flags

	-p                  Server port
	-d                  Database URL
	-t                  Database type
	--session-salt      Session key salt
	--device-salt       Device hash salt
	--seed              Policy feed file
	--tuning            Tuning file
	--analysis-url      Analysis endpoint
	--like-direction    left or right
	--batch-size        Cards per load
	--threshold         Commit threshold fraction
	--analysis-threshold Likes before analysis

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	SESSION_KEY_SALT   → --session-salt
	DEVICE_SALT        → --device-salt
	SEED_FILE          → --seed
	TUNING_FILE        → --tuning
	ANALYSIS_URL       → --analysis-url
	LIKE_DIRECTION     → --like-direction
	BATCH_SIZE         → --batch-size
	COMMIT_THRESHOLD   → --threshold
	ANALYSIS_THRESHOLD → --analysis-threshold

main loads a .env file into the environment first when one exists.

# Tuning File

The YAML keys match swipe.Config:

	commit_threshold_fraction: 0.25
	like_direction: right
	batch_size: 10
	chunk_size: 3
	click_slop: 10
	rotation_divisor: 20
	viewport_width: 400
	analysis_threshold: 10
	undo_resets_analysis: false
	animation_timeout: 2s

Precedence is flag, then env, then file, then swipe.DefaultConfig.

# Validation

ParseFlags returns an error if required values are missing or the resulting
swipe tuning is out of range.
*/
package cliparse
