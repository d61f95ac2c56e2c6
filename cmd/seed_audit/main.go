package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hetulpatel/userseed/internal/config"
	"github.com/hetulpatel/userseed/internal/kafka"
	"github.com/hetulpatel/userseed/internal/logging"
	"github.com/hetulpatel/userseed/internal/storage"
	"github.com/hetulpatel/userseed/internal/workers"
)

func main() {
	logging.InitFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		logging.Fatalf("[seed-audit] load config: %v", err)
	}
	brokers := cfg.Kafka.Brokers
	topic := cfg.Kafka.Topic
	group := envString("SEED_AUDIT_GROUP", kafka.DefaultAuditGroup)
	workerCount := envInt("SEED_AUDIT_WORKERS", 2)

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatalf("[seed-audit] open store: %v", err)
	}
	defer store.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[seed-audit] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Infof("[seed-audit] ensure topic warning: %v", err)
	}
	cancelEnsure()

	auditor := workers.NewAuditor(store)
	logging.Infof("[seed-audit] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, auditor.Handle)

	seen, missing := auditor.Stats()
	logging.Infof("[seed-audit] checked %d events, %d logins missing from %s", seen, missing, store.Target())
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
