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

	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("create tables: %v", err)
	}
	logging.Infof("users table created at %s", store.Target())
}
