package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ToggleLike flips the song's membership in the user's like set: present
// songs are removed, absent ones added. The like set is created lazily on
// the first toggle. Returns whether the song is liked after the call.
func (s *Store) ToggleLike(ctx context.Context, userID, songID string) (bool, error) {
	if _, err := s.GetSong(ctx, songID); err != nil {
		return false, err
	}

	var liked bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM likes WHERE user_id = $1 AND song_id = $2
		`, userID, songID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO likes (user_id, song_id, created_at)
			VALUES ($1, $2, $3)
		`, userID, songID, time.Now().UTC()); err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// ListLikes returns the user's liked songs in like order.
func (s *Store) ListLikes(ctx context.Context, userID string) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.artist, s.audio, COALESCE(s.image, ''), s.duration
		FROM likes l
		JOIN songs s ON s.id = l.song_id
		WHERE l.user_id = $1
		ORDER BY l.created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Name, &song.Artist, &song.Audio, &song.Image, &song.Duration); err != nil {
			return nil, fmt.Errorf("scan liked song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}
	return songs, nil
}
