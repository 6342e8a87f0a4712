package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"soundvault/internal/app/users"
	"soundvault/internal/auth"
	"soundvault/internal/blob"
	"soundvault/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, input users.RegisterInput) (store.User, error)
	Login(ctx context.Context, email, password string) (string, store.User, error)
	Get(ctx context.Context, id string) (store.User, error)
	List(ctx context.Context) ([]store.User, error)
	Update(ctx context.Context, id string, upd store.UserUpdate) (store.User, error)
	SetVerified(ctx context.Context, id string) (store.User, error)
	SetPremium(ctx context.Context, id string) (store.User, error)
	Delete(ctx context.Context, id string) (string, error)
}

// SongService coordinates catalog operations.
type SongService interface {
	Create(ctx context.Context, song store.Song) (store.Song, error)
	List(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Update(ctx context.Context, id string, song store.Song) (store.Song, error)
	Delete(ctx context.Context, id string) error
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string) (store.Playlist, error)
	List(ctx context.Context, ownerID string) ([]store.Playlist, error)
	Get(ctx context.Context, id string) (store.Playlist, error)
	Update(ctx context.Context, ownerID, id, name, description string) (store.Playlist, error)
	Delete(ctx context.Context, ownerID, id string) error
	AddSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
	RemoveSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
}

// LikeService coordinates the per-user like set.
type LikeService interface {
	Toggle(ctx context.Context, userID, songID string) (bool, error)
	List(ctx context.Context, userID string) ([]store.Song, error)
}

// TokenVerifier resolves a bearer token to an identity payload.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	songs     SongService
	playlists PlaylistService
	likes     LikeService
	tokens    TokenVerifier
	blobs     *blob.Store
	log       zerolog.Logger
}

// New configures a Server with the given services.
func New(
	users UserService,
	songs SongService,
	playlists PlaylistService,
	likes LikeService,
	tokens TokenVerifier,
	blobs *blob.Store,
	log zerolog.Logger,
) *Server {
	return &Server{
		users:     users,
		songs:     songs,
		playlists: playlists,
		likes:     likes,
		tokens:    tokens,
		blobs:     blobs,
		log:       log,
	}
}

// Routes exposes the HTTP handlers for the catalog API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// User routes
	mux.HandleFunc("POST /api/v1/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/users/profile", s.handleProfile)
	mux.HandleFunc("GET /api/v1/users", s.handleListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("PATCH /api/v1/users/{id}", s.handleVerifyUser)
	mux.HandleFunc("PATCH /api/v1/users/premium/{id}", s.handlePremiumUser)
	mux.HandleFunc("DELETE /api/v1/users/{id}", s.handleDeleteUser)

	// Song routes
	mux.HandleFunc("POST /api/v1/songs", s.handleCreateSong)
	mux.HandleFunc("GET /api/v1/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("PUT /api/v1/songs/{id}", s.handleUpdateSong)
	mux.HandleFunc("DELETE /api/v1/songs/{id}", s.handleDeleteSong)

	// Playlist routes
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /api/v1/playlists", s.handleListPlaylists)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("PUT /api/v1/playlists/{id}", s.handleUpdatePlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("PUT /api/v1/playlists/{playlistID}/{songID}", s.handleAddPlaylistSong)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistID}/{songID}", s.handleRemovePlaylistSong)

	// Like routes
	mux.HandleFunc("POST /api/v1/likes/{id}", s.handleToggleLike)
	mux.HandleFunc("GET /api/v1/likes", s.handleListLikes)

	// Stored blobs (song audio, cover and profile images)
	mux.HandleFunc("GET /api/v1/files/{name}", s.handleGetFile)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// authenticate resolves the bearer token and writes the 401 itself when the
// request cannot be authenticated.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return nil, false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		return nil, false
	}
	return claims, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, claims *auth.Claims) bool {
	if !claims.Admin {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
		return false
	}
	return true
}

// pathID pulls a path parameter and rejects anything that does not look like
// a store-generated id, before any store call happens.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if !store.ValidID(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "invalid id"})
		return "", false
	}
	return id, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidUser),
		errors.Is(err, store.ErrInvalidSong),
		errors.Is(err, store.ErrInvalidPlaylist):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotPlaylistOwner):
		return http.StatusForbidden
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists),
		errors.Is(err, store.ErrSongExists),
		errors.Is(err, store.ErrSongAlreadyInPlaylist):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, err := s.blobs.Open(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("stream blob")
	}
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
