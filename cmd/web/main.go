package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/danh0999/Hokori-Learning-sub002/internal/app"
	"github.com/danh0999/Hokori-Learning-sub002/internal/db"
	"github.com/danh0999/Hokori-Learning-sub002/internal/draft"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(1)
	}

	store, dbConn, err := openDraftStore(context.Background(), cfg)
	if err != nil {
		log.Printf("draft store error: %v", err)
		os.Exit(1)
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	r := app.NewRouter(cfg, store, dbConn)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("hokori quiz import listening on %s (env=%s, drafts=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.DraftStoreDriver)
	if err := srv.ListenAndServe(); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}

func openDraftStore(ctx context.Context, cfg app.Config) (draft.Store, *sql.DB, error) {
	if cfg.DraftStoreDriver == "memory" {
		return draft.NewMemoryStore(), nil, nil
	}
	driver := db.Driver(cfg.DraftStoreDriver)
	conn, err := db.Open(ctx, driver, cfg.DraftStoreDSN, cfg.PoolConfig())
	if err != nil {
		return nil, nil, err
	}
	store, err := draft.NewSQLStore(ctx, conn, driver)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return store, conn, nil
}
