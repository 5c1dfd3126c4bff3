package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/policy-swipe/swipe"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	SessionKeySalt string
	DeviceSalt     string
	SeedFile       string
	TuningFile     string
	AnalysisURL    string
	Swipe          swipe.Config
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("policy-swipe", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionKeySalt, "session-salt", "", "Session key salt (prefer env)")
	fs.StringVar(&cfg.DeviceSalt, "device-salt", "", "Device hash salt (prefer env)")

	// Data and collaborators
	fs.StringVar(&cfg.SeedFile, "seed", "", "JSON policy feed to import at startup")
	fs.StringVar(&cfg.TuningFile, "tuning", "", "YAML file with swipe tuning")
	fs.StringVar(&cfg.AnalysisURL, "analysis-url", "", "Remote nickname analysis endpoint")

	// Swipe tuning overrides
	var (
		likeDirection     string
		batchSize         int
		threshold         float64
		analysisThreshold int
	)
	fs.StringVar(&likeDirection, "like-direction", "", "Swipe direction meaning like (left or right)")
	fs.IntVar(&batchSize, "batch-size", 0, "Cards released per load")
	fs.Float64Var(&threshold, "threshold", 0, "Commit threshold as a fraction of viewport width")
	fs.IntVar(&analysisThreshold, "analysis-threshold", 0, "Likes before a nickname analysis (0 disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionKeySalt == "" {
		cfg.SessionKeySalt = os.Getenv("SESSION_KEY_SALT")
	}
	if cfg.SessionKeySalt == "" {
		return Config{}, errors.New("SESSION_KEY_SALT required")
	}

	if cfg.DeviceSalt == "" {
		cfg.DeviceSalt = os.Getenv("DEVICE_SALT")
	}
	if cfg.DeviceSalt == "" {
		return Config{}, errors.New("DEVICE_SALT required")
	}

	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}
	if cfg.TuningFile == "" {
		cfg.TuningFile = os.Getenv("TUNING_FILE")
	}
	if cfg.AnalysisURL == "" {
		cfg.AnalysisURL = os.Getenv("ANALYSIS_URL")
	}

	// Swipe tuning: defaults < YAML file < env < flags
	cfg.Swipe = swipe.DefaultConfig()
	if cfg.TuningFile != "" {
		if err := loadTuning(cfg.TuningFile, &cfg.Swipe); err != nil {
			return Config{}, err
		}
	}
	if err := applyTuningEnv(&cfg.Swipe); err != nil {
		return Config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "like-direction":
			cfg.Swipe.LikeDirection = swipe.Direction(likeDirection)
		case "batch-size":
			cfg.Swipe.BatchSize = batchSize
		case "threshold":
			cfg.Swipe.CommitThresholdFraction = threshold
		case "analysis-threshold":
			cfg.Swipe.AnalysisThreshold = analysisThreshold
		}
	})

	if err := cfg.Swipe.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid swipe tuning: %w", err)
	}

	return cfg, nil
}

// loadTuning overlays the YAML file onto sc; keys missing from the file keep
// their current values
func loadTuning(path string, sc *swipe.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return nil
}

func applyTuningEnv(sc *swipe.Config) error {
	if v := os.Getenv("LIKE_DIRECTION"); v != "" {
		sc.LikeDirection = swipe.Direction(v)
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid BATCH_SIZE env variable")
		}
		sc.BatchSize = n
	}
	if v := os.Getenv("COMMIT_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid COMMIT_THRESHOLD env variable")
		}
		sc.CommitThresholdFraction = f
	}
	if v := os.Getenv("ANALYSIS_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid ANALYSIS_THRESHOLD env variable")
		}
		sc.AnalysisThreshold = n
	}
	return nil
}
