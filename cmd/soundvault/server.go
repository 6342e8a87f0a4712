package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"soundvault/internal/app/likes"
	"soundvault/internal/app/playlists"
	"soundvault/internal/app/songs"
	"soundvault/internal/app/users"
	"soundvault/internal/auth"
	"soundvault/internal/blob"
	"soundvault/internal/http/middleware"
	"soundvault/internal/httpapi"
	"soundvault/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, blobs *blob.Store, log zerolog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	userSvc := users.New(dataStore, tokens)
	songSvc := songs.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	likeSvc := likes.New(dataStore)

	handler := httpapi.New(userSvc, songSvc, playlistSvc, likeSvc, tokens, blobs, log).Routes()

	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging(log)(handler)
	handler = middleware.Recovery(log)(handler)
	return handler
}
