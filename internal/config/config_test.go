package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 0.85, cfg.Grading.TightThreshold)
	assert.Equal(t, 0.70, cfg.Grading.LooseThreshold)
	assert.Equal(t, 512, cfg.Grading.RuleCacheSize)
	assert.Empty(t, cfg.Log.File)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.DB.Driver = "oracle" }},
		{"postgres without dsn", func(c *Config) { c.DB.Driver = "pgx" }},
		{"zero threshold", func(c *Config) { c.Grading.TightThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.Grading.LooseThreshold = 1.2 }},
		{"negative cache", func(c *Config) { c.Grading.RuleCacheSize = -1 }},
		{"negative rotation", func(c *Config) { c.Log.MaxBackups = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := DefaultConfig()
	cfg.DB.Driver = "pgx"
	cfg.DB.DSN = "postgres://localhost/physik"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physiktrainer.yaml")
	yaml := `
db:
  path: /tmp/physik.db
bank:
  path: bank.json
grading:
  loose_threshold: 0.6
log:
  level: debug
learner: anna
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/physik.db", cfg.DB.Path)
	assert.Equal(t, "/tmp/physik.db", cfg.DB.DataSource())
	assert.Equal(t, "bank.json", cfg.Bank.Path)
	assert.Equal(t, 0.6, cfg.Grading.LooseThreshold)
	assert.Equal(t, 0.85, cfg.Grading.TightThreshold, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "anna", cfg.Learner)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physiktrainer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("learner: anna\n"), 0o644))

	t.Setenv("PHYSIK_LEARNER", "ben")
	t.Setenv("PHYSIK_DB_DSN", "file:test.db")
	t.Setenv("PHYSIK_GRADING_RULE_CACHE_SIZE", "0")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ben", cfg.Learner)
	assert.Equal(t, "file:test.db", cfg.DB.DataSource())
	assert.Zero(t, cfg.Grading.RuleCacheSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physiktrainer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grading:\n  tight_threshold: 3\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PHYSIK_BANK_PATH=from-dotenv.json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PHYSIK_BANK_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.Bank.Path)
}
