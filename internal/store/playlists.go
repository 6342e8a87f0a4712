package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Playlist holds an ordered set of song references owned by one user. The
// owner is fixed at creation.
type Playlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Songs       []Song    `json:"songs"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func validatePlaylist(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}
	if len(description) > 50 {
		return fmt.Errorf("%w: description must be at most 50 characters", ErrInvalidPlaylist)
	}
	return nil
}

// CreatePlaylist persists a new empty playlist for the owner.
func (s *Store) CreatePlaylist(ctx context.Context, ownerID, name, description string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if err := validatePlaylist(name, description); err != nil {
		return Playlist{}, err
	}

	p := Playlist{
		ID:          newID(),
		UserID:      ownerID,
		Name:        name,
		Description: description,
		Songs:       []Song{},
		CreatedAt:   time.Now().UTC(),
	}
	p.UpdatedAt = p.CreatedAt

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, p.ID, p.UserID, p.Name, p.Description, p.CreatedAt); err != nil {
		return Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}

	return p, nil
}

// ListPlaylists returns the playlists owned by a user, songs hydrated.
func (s *Store) ListPlaylists(ctx context.Context, ownerID string) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for i := range playlists {
		songs, err := s.listPlaylistSongs(ctx, playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].Songs = songs
	}
	return playlists, nil
}

// GetPlaylist returns a single playlist by id, songs hydrated.
func (s *Store) GetPlaylist(ctx context.Context, id string) (Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = $1`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist: %w", err)
	}

	songs, err := s.listPlaylistSongs(ctx, p.ID)
	if err != nil {
		return Playlist{}, err
	}
	p.Songs = songs
	return p, nil
}

// UpdatePlaylist replaces name and description. Owner only.
func (s *Store) UpdatePlaylist(ctx context.Context, ownerID, id, name, description string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if err := validatePlaylist(name, description); err != nil {
		return Playlist{}, err
	}

	if err := s.requireOwner(ctx, id, ownerID); err != nil {
		return Playlist{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, name, description, time.Now().UTC(), id); err != nil {
		return Playlist{}, fmt.Errorf("update playlist: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// DeletePlaylist removes a playlist and its memberships. Owner only. The
// song catalog is untouched.
func (s *Store) DeletePlaylist(ctx context.Context, ownerID, id string) error {
	if err := s.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = $1`, id); err != nil {
			return fmt.Errorf("delete playlist memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		return nil
	})
}

// AddSong appends a song at the tail of the playlist. Duplicates are
// rejected with ErrSongAlreadyInPlaylist.
func (s *Store) AddSong(ctx context.Context, ownerID, playlistID, songID string) (Playlist, error) {
	if err := s.requireOwner(ctx, playlistID, ownerID); err != nil {
		return Playlist{}, err
	}
	if _, err := s.GetSong(ctx, songID); err != nil {
		return Playlist{}, err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var present bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2)
		`, playlistID, songID).Scan(&present)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if present {
			return ErrSongAlreadyInPlaylist
		}

		var maxPos sql.NullInt32
		if err := tx.QueryRowContext(ctx, `
			SELECT MAX(position) FROM playlist_songs WHERE playlist_id = $1
		`, playlistID).Scan(&maxPos); err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		position := 0
		if maxPos.Valid {
			position = int(maxPos.Int32) + 1
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_songs (playlist_id, song_id, position)
			VALUES ($1, $2, $3)
		`, playlistID, songID, position); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return Playlist{}, err
	}

	return s.GetPlaylist(ctx, playlistID)
}

// RemoveSong drops a song from the playlist. Removing an absent song is a
// no-op, not an error.
func (s *Store) RemoveSong(ctx context.Context, ownerID, playlistID, songID string) (Playlist, error) {
	if err := s.requireOwner(ctx, playlistID, ownerID); err != nil {
		return Playlist{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID); err != nil {
		return Playlist{}, fmt.Errorf("delete membership: %w", err)
	}

	return s.GetPlaylist(ctx, playlistID)
}

func (s *Store) requireOwner(ctx context.Context, playlistID, userID string) error {
	var ownerID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM playlists WHERE id = $1`, playlistID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	if err != nil {
		return fmt.Errorf("check playlist ownership: %w", err)
	}
	if ownerID != userID {
		return ErrNotPlaylistOwner
	}
	return nil
}

func (s *Store) listPlaylistSongs(ctx context.Context, playlistID string) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.artist, s.audio, COALESCE(s.image, ''), s.duration
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Name, &song.Artist, &song.Audio, &song.Image, &song.Duration); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}
