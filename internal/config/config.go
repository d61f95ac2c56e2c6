package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/hetulpatel/userseed/internal/kafka"
	"github.com/hetulpatel/userseed/internal/login"
	"github.com/hetulpatel/userseed/internal/models"
	"github.com/hetulpatel/userseed/internal/storage"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	NameSourceCatalog = "catalog"
	NameSourceLLM     = "llm"
)

// Config is everything a seeding run needs.
type Config struct {
	Store storage.Target `yaml:"store"`
	Seed  Seed           `yaml:"seed"`
	Redis Redis          `yaml:"redis"`
	Kafka Kafka          `yaml:"kafka"`
	LLM   LLM            `yaml:"llm"`
}

type Seed struct {
	RowCount       int    `yaml:"rowCount"`
	CommitInterval int    `yaml:"commitInterval"`
	PasswordHash   string `yaml:"passwordHash"`
	BirthDay       string `yaml:"birthDay"`

	// LegacyCommitCadence reproduces the old "commit unless i%interval == 0" behaviour.
	LegacyCommitCadence bool `yaml:"legacyCommitCadence"`

	LoginStrategy   string        `yaml:"loginStrategy"`
	LoginPrefix     string        `yaml:"loginPrefix"`
	LoginStart      int64         `yaml:"loginStart"`
	MaxLoginRetries int           `yaml:"maxLoginRetries"`
	RowDelay        time.Duration `yaml:"rowDelay"`
	NameSource      string        `yaml:"nameSource"`
	NameSeed        uint64        `yaml:"nameSeed"`
	ProgressEvery   int           `yaml:"progressEvery"`
}

// Redis enables the cross-process login registry when Addr is set.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type Kafka struct {
	Publish bool     `yaml:"publish"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LLM struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseURL"`
	Model       string  `yaml:"model"`
	BatchSize   int     `yaml:"batchSize"`
	Temperature float32 `yaml:"temperature"`
}

// Default mirrors the values the seeder historically ran with.
func Default() Config {
	return Config{
		Store: storage.Target{
			Driver:   storage.DriverMySQL,
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "social_network",
			Charset:  "utf8mb4",
			Path:     "data/users.db",
		},
		Seed: Seed{
			RowCount:        1_000_000,
			CommitInterval:  100,
			PasswordHash:    models.DefaultPasswordHash,
			BirthDay:        models.DefaultBirthDay,
			LoginStrategy:   login.StrategyTimestamp,
			MaxLoginRetries: 3,
			NameSource:      NameSourceCatalog,
			ProgressEvery:   10_000,
		},
		Kafka: Kafka{
			Brokers: []string{kafka.DefaultBroker},
			Topic:   kafka.DefaultSeededTopic,
		},
		LLM: LLM{
			BatchSize:   50,
			Temperature: 0.9,
		},
	}
}

// Override adjusts a loaded config before validation, e.g. from command-line flags.
type Override func(*Config)

// Load applies defaults, then the YAML file named by SEED_CONFIG (or path when non-empty),
// then environment variables, then overrides, and validates the result once. A .env file
// in the working directory is loaded first.
func Load(path string, overrides ...Override) (Config, error) {
	godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("SEED_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setString("STORE_DRIVER", &c.Store.Driver)
	setString("STORE_HOST", &c.Store.Host)
	setInt("STORE_PORT", &c.Store.Port)
	setString("STORE_USER", &c.Store.User)
	setString("STORE_PASSWORD", &c.Store.Password)
	setString("STORE_DATABASE", &c.Store.Database)
	setString("STORE_CHARSET", &c.Store.Charset)
	setString("SQLITE_PATH", &c.Store.Path)

	setInt("SEED_ROW_COUNT", &c.Seed.RowCount)
	setInt("SEED_COMMIT_INTERVAL", &c.Seed.CommitInterval)
	setString("SEED_PASSWORD_HASH", &c.Seed.PasswordHash)
	setString("SEED_BIRTHDAY", &c.Seed.BirthDay)
	setBool("SEED_LEGACY_COMMIT_CADENCE", &c.Seed.LegacyCommitCadence)
	setString("SEED_LOGIN_STRATEGY", &c.Seed.LoginStrategy)
	setString("SEED_LOGIN_PREFIX", &c.Seed.LoginPrefix)
	if v := os.Getenv("SEED_LOGIN_START"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEED_LOGIN_START: %w", err))
		} else {
			c.Seed.LoginStart = n
		}
	}
	setInt("SEED_MAX_LOGIN_RETRIES", &c.Seed.MaxLoginRetries)
	setDuration("SEED_ROW_DELAY", &c.Seed.RowDelay)
	setString("SEED_NAME_SOURCE", &c.Seed.NameSource)
	if v := os.Getenv("SEED_NAME_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEED_NAME_SEED: %w", err))
		} else {
			c.Seed.NameSeed = n
		}
	}
	setInt("SEED_PROGRESS_EVERY", &c.Seed.ProgressEvery)

	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setInt("REDIS_DB", &c.Redis.DB)
	setString("SEED_LOGIN_REGISTRY_PREFIX", &c.Redis.Prefix)
	setDuration("SEED_LOGIN_REGISTRY_TTL", &c.Redis.TTL)

	setBool("SEED_PUBLISH_EVENTS", &c.Kafka.Publish)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = kafka.ParseBrokers(v)
	}
	setString("SEED_KAFKA_TOPIC", &c.Kafka.Topic)

	setString("SEED_LLM_API_KEY", &c.LLM.APIKey)
	setString("SEED_LLM_BASE_URL", &c.LLM.BaseURL)
	setString("SEED_LLM_MODEL", &c.LLM.Model)
	setInt("SEED_NAME_BATCH", &c.LLM.BatchSize)

	return errors.Join(errs...)
}

// normalize lowercases the enumerated settings so callers can compare them directly.
func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Seed.LoginStrategy = strings.ToLower(strings.TrimSpace(c.Seed.LoginStrategy))
	c.Seed.NameSource = strings.ToLower(strings.TrimSpace(c.Seed.NameSource))
}

// Validate runs the pre-flight sanity checks.
func (c Config) Validate() error {
	var problems []string
	switch strings.ToLower(c.Store.Driver) {
	case storage.DriverMySQL:
		if c.Store.Database == "" {
			problems = append(problems, "store database is required for mysql")
		}
	case storage.DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("store driver must be mysql or sqlite, got %q", c.Store.Driver))
	}
	if c.Seed.RowCount <= 0 {
		problems = append(problems, "row count must be positive")
	}
	if c.Seed.CommitInterval <= 0 {
		problems = append(problems, "commit interval must be positive")
	}
	if c.Seed.PasswordHash == "" {
		problems = append(problems, "password hash is required")
	}
	if _, err := time.Parse(models.BirthDayLayout, c.Seed.BirthDay); err != nil {
		problems = append(problems, fmt.Sprintf("birthday %q is not YYYY-MM-DD", c.Seed.BirthDay))
	}
	switch strings.ToLower(c.Seed.LoginStrategy) {
	case login.StrategyTimestamp, login.StrategySequence, login.StrategyUUID:
	default:
		problems = append(problems, fmt.Sprintf("unknown login strategy %q", c.Seed.LoginStrategy))
	}
	if c.Seed.MaxLoginRetries < 0 {
		problems = append(problems, "max login retries cannot be negative")
	}
	if c.Seed.RowDelay < 0 {
		problems = append(problems, "row delay cannot be negative")
	}
	switch strings.ToLower(c.Seed.NameSource) {
	case NameSourceCatalog:
	case NameSourceLLM:
		if c.LLM.APIKey == "" {
			problems = append(problems, "llm name source needs SEED_LLM_API_KEY")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown name source %q", c.Seed.NameSource))
	}
	if c.Kafka.Publish && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "event publishing needs at least one kafka broker")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
