package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/userseed/internal/models"
	"github.com/hetulpatel/userseed/internal/storage"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SEED_CONFIG", "STORE_DRIVER", "STORE_HOST", "STORE_PORT", "STORE_USER", "STORE_PASSWORD",
		"STORE_DATABASE", "STORE_CHARSET", "SQLITE_PATH", "SEED_ROW_COUNT", "SEED_COMMIT_INTERVAL",
		"SEED_PASSWORD_HASH", "SEED_BIRTHDAY", "SEED_LEGACY_COMMIT_CADENCE", "SEED_LOGIN_STRATEGY",
		"SEED_LOGIN_PREFIX", "SEED_LOGIN_START", "SEED_MAX_LOGIN_RETRIES", "SEED_ROW_DELAY",
		"SEED_NAME_SOURCE", "SEED_NAME_SEED", "SEED_PROGRESS_EVERY", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "SEED_LOGIN_REGISTRY_PREFIX", "SEED_LOGIN_REGISTRY_TTL", "SEED_PUBLISH_EVENTS",
		"KAFKA_BROKERS", "SEED_KAFKA_TOPIC", "SEED_LLM_API_KEY", "SEED_LLM_BASE_URL", "SEED_LLM_MODEL",
		"SEED_NAME_BATCH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, storage.DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, "social_network", cfg.Store.Database)
	assert.Equal(t, "utf8mb4", cfg.Store.Charset)
	assert.Equal(t, 1_000_000, cfg.Seed.RowCount)
	assert.Equal(t, 100, cfg.Seed.CommitInterval)
	assert.Equal(t, models.DefaultPasswordHash, cfg.Seed.PasswordHash)
	assert.Equal(t, models.DefaultBirthDay, cfg.Seed.BirthDay)
	assert.False(t, cfg.Seed.LegacyCommitCadence)
	assert.False(t, cfg.Kafka.Publish)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: sqlite
  path: /tmp/seed.db
seed:
  rowCount: 500
  commitInterval: 50
  birthDay: "1990-05-05"
  loginStrategy: sequence
  loginPrefix: user
kafka:
  publish: true
  brokers: ["k1:9092"]
`), 0o644))

	t.Setenv("SEED_ROW_COUNT", "3")
	t.Setenv("SEED_ROW_DELAY", "2ms")
	t.Setenv("SEED_LEGACY_COMMIT_CADENCE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, storage.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/seed.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Seed.RowCount, "env overrides file")
	assert.Equal(t, 50, cfg.Seed.CommitInterval)
	assert.Equal(t, "1990-05-05", cfg.Seed.BirthDay)
	assert.Equal(t, "sequence", cfg.Seed.LoginStrategy)
	assert.Equal(t, "user", cfg.Seed.LoginPrefix)
	assert.Equal(t, 2*time.Millisecond, cfg.Seed.RowDelay)
	assert.True(t, cfg.Seed.LegacyCommitCadence)
	assert.True(t, cfg.Kafka.Publish)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
}

func TestLoadFromSeedConfigEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed:\n  rowCount: 12\n"), 0o644))
	t.Setenv("SEED_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Seed.RowCount)
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed:\n  rowCnt: 12\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED_ROW_COUNT", "many")
	t.Setenv("SEED_ROW_DELAY", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "SEED_ROW_COUNT")
	assert.ErrorContains(t, err, "SEED_ROW_DELAY")
}

func TestLoadOverridesApplyBeforeValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED_ROW_COUNT", "0")

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalid)

	cfg, err := Load("", func(c *Config) { c.Seed.RowCount = 5 })
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Seed.RowCount)
}

func TestLoadNormalizesEnumeratedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SEED_LOGIN_STRATEGY", " UUID ")
	t.Setenv("SEED_NAME_SOURCE", "LLM")
	t.Setenv("SEED_LLM_API_KEY", "k")
	t.Setenv("SEED_LLM_MODEL", "names-model")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, storage.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "uuid", cfg.Seed.LoginStrategy)
	assert.Equal(t, NameSourceLLM, cfg.Seed.NameSource)
	assert.Equal(t, "k", cfg.LLM.APIKey)
	assert.Equal(t, "names-model", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rows", func(c *Config) { c.Seed.RowCount = 0 }},
		{"zero interval", func(c *Config) { c.Seed.CommitInterval = 0 }},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"mysql without database", func(c *Config) { c.Store.Database = "" }},
		{"bad birthday", func(c *Config) { c.Seed.BirthDay = "01/01/1988" }},
		{"empty hash", func(c *Config) { c.Seed.PasswordHash = "" }},
		{"bad strategy", func(c *Config) { c.Seed.LoginStrategy = "random" }},
		{"negative retries", func(c *Config) { c.Seed.MaxLoginRetries = -1 }},
		{"negative delay", func(c *Config) { c.Seed.RowDelay = -time.Second }},
		{"llm without key", func(c *Config) { c.Seed.NameSource = NameSourceLLM }},
		{"unknown name source", func(c *Config) { c.Seed.NameSource = "faker" }},
		{"publish without brokers", func(c *Config) { c.Kafka.Publish = true; c.Kafka.Brokers = nil }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
