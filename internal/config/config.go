// Package config loads physiktrainer settings from a YAML file, a .env file
// and PHYSIK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix is the prefix of environment overrides, e.g. PHYSIK_DB_PATH.
const EnvPrefix = "PHYSIK"

// Config holds all runtime settings.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Bank    BankConfig    `mapstructure:"bank"`
	Grading GradingConfig `mapstructure:"grading"`
	Log     LogConfig     `mapstructure:"log"`

	// Learner is the default learner id for play and grade.
	Learner string `mapstructure:"learner"`
}

// DBConfig selects the progress database.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "pgx"
	DSN    string `mapstructure:"dsn"`    // overrides Path when set
	Path   string `mapstructure:"path"`   // SQLite file; empty means the XDG default
}

// BankConfig locates the exercise bank.
type BankConfig struct {
	// Path of a JSON bank file. Empty uses the bundled demo bank.
	Path string `mapstructure:"path"`
}

// GradingConfig tunes the grader.
type GradingConfig struct {
	TightThreshold float64 `mapstructure:"tight_threshold"`
	LooseThreshold float64 `mapstructure:"loose_threshold"`
	RuleCacheSize  int     `mapstructure:"rule_cache_size"`
}

// LogConfig configures zap and file rotation.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty disables the file log
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DB: DBConfig{
			Driver: "sqlite",
		},
		Grading: GradingConfig{
			TightThreshold: 0.85,
			LooseThreshold: 0.70,
			RuleCacheSize:  512,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("db.driver", c.DB.Driver)
	v.SetDefault("db.dsn", c.DB.DSN)
	v.SetDefault("db.path", c.DB.Path)
	v.SetDefault("bank.path", c.Bank.Path)
	v.SetDefault("grading.tight_threshold", c.Grading.TightThreshold)
	v.SetDefault("grading.loose_threshold", c.Grading.LooseThreshold)
	v.SetDefault("grading.rule_cache_size", c.Grading.RuleCacheSize)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("learner", c.Learner)
}

// Load reads configuration. When path is empty, physiktrainer.yaml is looked
// up in the working directory and the user config directory, and a missing
// file is not an error. A .env file in the working directory is loaded into
// the environment first without overriding variables already set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("physiktrainer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "physiktrainer"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and the database driver.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "pgx", "postgres":
	default:
		return fmt.Errorf("%w: db.driver %q (want sqlite or pgx)", ErrInvalid, c.DB.Driver)
	}
	if c.DB.Driver != "sqlite" && c.DB.DSN == "" {
		return fmt.Errorf("%w: db.dsn is required for driver %s", ErrInvalid, c.DB.Driver)
	}
	for name, t := range map[string]float64{
		"grading.tight_threshold": c.Grading.TightThreshold,
		"grading.loose_threshold": c.Grading.LooseThreshold,
	} {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%w: %s = %v (want 0 < t <= 1)", ErrInvalid, name, t)
		}
	}
	if c.Grading.RuleCacheSize < 0 {
		return fmt.Errorf("%w: grading.rule_cache_size must not be negative", ErrInvalid)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalid)
	}
	return nil
}

// DataSource returns the DSN to open, falling back to the SQLite path.
func (c DBConfig) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	return c.Path
}
