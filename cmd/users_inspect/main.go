package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

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
	limit := envInt("INSPECT_LIMIT", 5)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatalf("open store: %v", err)
	}
	defer store.Close()

	total, err := store.CountUsers(ctx)
	if err != nil {
		logging.Fatalf("count users: %v", err)
	}
	fmt.Printf("%s: %d users\n", store.Target(), total)

	users, err := store.ListUsers(ctx, limit)
	if err != nil {
		logging.Fatalf("list users: %v", err)
	}
	for _, u := range users {
		u.Password = ""
		b, err := json.MarshalIndent(u, "", "  ")
		if err != nil {
			logging.Fatalf("marshal user %d: %v", u.ID, err)
		}
		fmt.Println(string(b))
	}
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
