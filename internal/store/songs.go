package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Song is a catalog entry. Audio and Image are blob filenames.
type Song struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Audio    string `json:"song"`
	Image    string `json:"image,omitempty"`
	Duration int    `json:"duration"`
}

func validateSong(song Song) error {
	if name := strings.TrimSpace(song.Name); name == "" || len(name) > 64 {
		return fmt.Errorf("%w: name is required and must be at most 64 characters", ErrInvalidSong)
	}
	if strings.TrimSpace(song.Artist) == "" {
		return fmt.Errorf("%w: artist is required", ErrInvalidSong)
	}
	if song.Audio == "" {
		return fmt.Errorf("%w: an audio file is required", ErrInvalidSong)
	}
	if song.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSong)
	}
	return nil
}

// CreateSong adds a catalog entry. A song with the same name already present
// yields ErrSongExists.
func (s *Store) CreateSong(ctx context.Context, song Song) (Song, error) {
	song.Name = strings.TrimSpace(song.Name)
	song.Artist = strings.TrimSpace(song.Artist)

	if err := validateSong(song); err != nil {
		return Song{}, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM songs WHERE name = $1)
	`, song.Name).Scan(&exists)
	if err != nil {
		return Song{}, fmt.Errorf("check existing song: %w", err)
	}
	if exists {
		return Song{}, ErrSongExists
	}

	song.ID = newID()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (id, name, artist, audio, image, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, song.ID, song.Name, song.Artist, song.Audio, nullIfEmpty(song.Image), song.Duration); err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}

	return song, nil
}

// ListSongs returns the whole catalog ordered by name.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, songSelect+` ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Name, &song.Artist, &song.Audio, &song.Image, &song.Duration); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// GetSong returns a single catalog entry by id.
func (s *Store) GetSong(ctx context.Context, id string) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, songSelect+` WHERE id = $1`, id).
		Scan(&song.ID, &song.Name, &song.Artist, &song.Audio, &song.Image, &song.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// UpdateSong replaces the catalog entry's fields. Callers merge unchanged
// fields from the existing record before calling.
func (s *Store) UpdateSong(ctx context.Context, id string, song Song) (Song, error) {
	song.Name = strings.TrimSpace(song.Name)
	song.Artist = strings.TrimSpace(song.Artist)

	if err := validateSong(song); err != nil {
		return Song{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE songs
		SET name = $1, artist = $2, audio = $3, image = $4, duration = $5
		WHERE id = $6
	`, song.Name, song.Artist, song.Audio, nullIfEmpty(song.Image), song.Duration, id)
	if err != nil {
		return Song{}, fmt.Errorf("update song: %w", err)
	}
	if err := requireAffected(res, ErrSongNotFound); err != nil {
		return Song{}, err
	}

	song.ID = id
	return song, nil
}

// DeleteSong removes a catalog entry. The song's id is pruned from every
// playlist and like set in the same transaction, so the entry survives if
// cascade cleanup fails.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE song_id = $1`, id); err != nil {
			return fmt.Errorf("prune playlist memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE song_id = $1`, id); err != nil {
			return fmt.Errorf("prune likes: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete song: %w", err)
		}
		return requireAffected(res, ErrSongNotFound)
	})
}

const songSelect = `
	SELECT id, name, artist, audio, COALESCE(image, ''), duration
	FROM songs`
