package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUserExists signals the email+username pair is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound indicates a missing user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrSongExists signals a catalog entry with the same name already exists.
	ErrSongExists = errors.New("song already exists")
	// ErrSongNotFound indicates a missing catalog entry.
	ErrSongNotFound = errors.New("song not found")

	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrNotPlaylistOwner indicates the caller does not own the playlist.
	ErrNotPlaylistOwner = errors.New("not the playlist owner")
	// ErrSongAlreadyInPlaylist signals a duplicate membership add.
	ErrSongAlreadyInPlaylist = errors.New("song already in playlist")

	// ErrInvalidUser, ErrInvalidSong and ErrInvalidPlaylist wrap the specific
	// validation failure so handlers can map them to a 400 response.
	ErrInvalidUser     = errors.New("invalid user")
	ErrInvalidSong     = errors.New("invalid song")
	ErrInvalidPlaylist = errors.New("invalid playlist")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func newID() string {
	return uuid.NewString()
}

// ValidID reports whether raw has the shape of a store-generated identifier.
// Path parameters are checked before any query is issued.
func ValidID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}
