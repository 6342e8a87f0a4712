package main

import (
	"context"
	"net/http"
	"os"

	"soundvault/internal/blob"
	"soundvault/internal/logging"
	"soundvault/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLog := logging.New("info", "text")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := openDatabase(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	blobs, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		log.Fatal().Err(err).Msg("open blob store")
	}

	dataStore := store.New(db)
	handler := newHTTPHandler(cfg, dataStore, blobs, log)

	log.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
