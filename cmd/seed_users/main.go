package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"

	"github.com/hetulpatel/userseed/internal/cache"
	"github.com/hetulpatel/userseed/internal/config"
	kafkautil "github.com/hetulpatel/userseed/internal/kafka"
	"github.com/hetulpatel/userseed/internal/llm"
	"github.com/hetulpatel/userseed/internal/logging"
	"github.com/hetulpatel/userseed/internal/login"
	"github.com/hetulpatel/userseed/internal/names"
	"github.com/hetulpatel/userseed/internal/queue"
	"github.com/hetulpatel/userseed/internal/seeder"
	"github.com/hetulpatel/userseed/internal/storage"
)

type flags struct {
	configPath     string
	count          int
	commitInterval int
	legacyCadence  bool
	loginStrategy  string
	nameSource     string
}

func main() {
	logging.InitFromEnv()

	var f flags
	cmd := &cobra.Command{
		Use:   "seed_users",
		Short: "Fill the users table with synthetic accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML config file (defaults to $SEED_CONFIG)")
	cmd.Flags().IntVar(&f.count, "count", 0, "number of users to insert")
	cmd.Flags().IntVar(&f.commitInterval, "commit-interval", 0, "rows per transaction")
	cmd.Flags().BoolVar(&f.legacyCadence, "legacy-commit-cadence", false, "commit on every row index not divisible by the interval")
	cmd.Flags().StringVar(&f.loginStrategy, "login-strategy", "", "timestamp, sequence or uuid")
	cmd.Flags().StringVar(&f.nameSource, "name-source", "", "catalog or llm")

	if err := cmd.Execute(); err != nil {
		logging.Fatalf("[seed] %v", err)
	}
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath, func(c *config.Config) { applyFlags(cmd, f, c) })
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	nameGen, err := buildNames(cfg)
	if err != nil {
		return err
	}

	logins, closeLogins, err := buildLogins(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogins()

	s := seeder.New(seeder.FromStore(store), nameGen, logins, seeder.Options{
		CommitInterval:      cfg.Seed.CommitInterval,
		PasswordHash:        cfg.Seed.PasswordHash,
		BirthDay:            cfg.Seed.BirthDay,
		LegacyCommitCadence: cfg.Seed.LegacyCommitCadence,
		MaxLoginRetries:     cfg.Seed.MaxLoginRetries,
		RowDelay:            cfg.Seed.RowDelay,
		ProgressEvery:       cfg.Seed.ProgressEvery,
	})

	if cfg.Kafka.Publish {
		writer := setupWriter(ctx, cfg.Kafka, cfg.Seed.CommitInterval)
		if writer != nil {
			defer writer.Close()
			s.WithPublisher(queue.NewPublisher(writer))
		}
	}

	if cfg.Seed.LegacyCommitCadence {
		logging.Infof("[seed] legacy commit cadence enabled: committing on every row index not divisible by %d", cfg.Seed.CommitInterval)
	}
	logging.Infof("[seed] inserting %d users into %s (commit every %d rows, logins=%s, names=%s)",
		cfg.Seed.RowCount, store.Target(), cfg.Seed.CommitInterval, cfg.Seed.LoginStrategy, cfg.Seed.NameSource)

	res, err := s.Run(ctx, cfg.Seed.RowCount)
	if err != nil {
		return fmt.Errorf("seed users: %w (committed %d of %d rows)", err, res.Committed, cfg.Seed.RowCount)
	}
	logging.Infof("[seed] committed %d users in %s", res.Committed, res.Elapsed.Round(time.Millisecond))
	return nil
}

func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	if cmd.Flags().Changed("count") {
		cfg.Seed.RowCount = f.count
	}
	if cmd.Flags().Changed("commit-interval") {
		cfg.Seed.CommitInterval = f.commitInterval
	}
	if cmd.Flags().Changed("legacy-commit-cadence") {
		cfg.Seed.LegacyCommitCadence = f.legacyCadence
	}
	if cmd.Flags().Changed("login-strategy") {
		cfg.Seed.LoginStrategy = f.loginStrategy
	}
	if cmd.Flags().Changed("name-source") {
		cfg.Seed.NameSource = f.nameSource
	}
}

func buildNames(cfg config.Config) (names.Generator, error) {
	if cfg.Seed.NameSource != config.NameSourceLLM {
		return names.NewCatalog(cfg.Seed.NameSeed), nil
	}
	client, err := llm.New(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	logging.Infof("[seed] requesting names from %s in batches of %d", client.Model(), cfg.LLM.BatchSize)
	return names.NewLLMGenerator(client, cfg.LLM.BatchSize), nil
}

func buildLogins(ctx context.Context, cfg config.Config) (login.Source, func(), error) {
	src, err := login.New(cfg.Seed.LoginStrategy, cfg.Seed.LoginPrefix, cfg.Seed.LoginStart)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Redis.Addr == "" {
		return src, func() {}, nil
	}
	reg, err := cache.NewRedisLoginRegistry(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, cfg.Redis.Prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("login registry: %w", err)
	}
	if err := reg.Ping(ctx); err != nil {
		reg.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logging.Infof("[seed] claiming logins in redis at %s", cfg.Redis.Addr)
	return login.NewReserved(src, reg, cfg.Seed.MaxLoginRetries+1), func() { reg.Close() }, nil
}

func setupWriter(ctx context.Context, cfg config.Kafka, batchSize int) *kafkago.Writer {
	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafkautil.WaitForBroker(waitCtx, cfg.Brokers); err != nil {
		logging.Infof("[seed] kafka unavailable, not publishing: %v", err)
		return nil
	}
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafkautil.EnsureTopic(ensureCtx, cfg.Brokers, cfg.Topic); err != nil {
		logging.Infof("[seed] ensure topic warning: %v", err)
	}
	cancelEnsure()
	return kafkautil.NewWriter(cfg.Brokers, cfg.Topic, batchSize)
}
