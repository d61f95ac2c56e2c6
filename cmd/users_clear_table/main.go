package main

import (
	"context"

	"github.com/hetulpatel/userseed/internal/config"
	"github.com/hetulpatel/userseed/internal/logging"
	"github.com/hetulpatel/userseed/internal/storage"
)

func main() {
	logging.InitFromEnv()
	cfg, err := config.Load("")
	if err != nil {
		logging.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatalf("open store: %v", err)
	}
	defer store.Close()

	before, err := store.CountUsers(ctx)
	if err != nil {
		logging.Fatalf("count users: %v", err)
	}
	if err := store.ClearTables(ctx); err != nil {
		logging.Fatalf("clear tables: %v", err)
	}
	logging.Infof("cleared %d users from %s", before, store.Target())
}
