package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is an account record. PasswordHash never leaves the store through JSON.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender"`
	Image        string    `json:"image,omitempty"`
	JoinedAt     time.Time `json:"joinedAt"`
	Verified     bool      `json:"isVerified"`
	Premium      bool      `json:"isPremium"`
	Admin        bool      `json:"isAdmin"`
}

var validGenders = map[string]bool{
	"male":        true,
	"female":      true,
	"non-binary":  true,
	"undisclosed": true,
}

func validateNewUser(u User) error {
	if n := len(strings.TrimSpace(u.Name)); n < 3 || n > 12 {
		return fmt.Errorf("%w: name must be 3-12 characters", ErrInvalidUser)
	}
	if n := len(strings.TrimSpace(u.Username)); n < 3 || n > 12 {
		return fmt.Errorf("%w: username must be 3-12 characters", ErrInvalidUser)
	}
	if !strings.Contains(u.Email, "@") || strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidUser)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	if !validGenders[u.Gender] {
		return fmt.Errorf("%w: unknown gender", ErrInvalidUser)
	}
	return nil
}

// CreateUser registers a new account. The caller supplies an already-hashed
// credential. A duplicate email+username pair yields ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)

	if err := validateNewUser(u); err != nil {
		return User{}, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND username = $2)
	`, u.Email, u.Username).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return User{}, ErrUserExists
	}

	u.ID = newID()
	u.JoinedAt = time.Now().UTC()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, username, email, password_hash, gender, image, joined_at, is_verified, is_premium, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Name, u.Username, u.Email, u.PasswordHash, u.Gender, nullIfEmpty(u.Image), u.JoinedAt,
		u.Verified, u.Premium, u.Admin); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

// UserByEmail returns the account for a login attempt, hash included.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email))
}

// GetUser returns a single account by id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
}

// ListUsers returns every account, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, userSelect+` ORDER BY joined_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := s.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UserUpdate carries the profile fields replaced by an update. Image is the
// new blob filename, or the existing one when no new upload was made.
type UserUpdate struct {
	Name     string
	Username string
	Gender   string
	Image    string
}

// UpdateUser replaces the mutable profile fields of an account.
func (s *Store) UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, username = $2, gender = $3, image = $4
		WHERE id = $5
	`, upd.Name, upd.Username, upd.Gender, nullIfEmpty(upd.Image), id)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	if err := requireAffected(res, ErrUserNotFound); err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, id)
}

// SetVerified marks the account as verified.
func (s *Store) SetVerified(ctx context.Context, id string) (User, error) {
	return s.setFlag(ctx, id, "is_verified")
}

// SetPremium marks the account as premium.
func (s *Store) SetPremium(ctx context.Context, id string) (User, error) {
	return s.setFlag(ctx, id, "is_premium")
}

func (s *Store) setFlag(ctx context.Context, id, column string) (User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+column+` = TRUE WHERE id = $1`, id)
	if err != nil {
		return User{}, fmt.Errorf("set %s: %w", column, err)
	}
	if err := requireAffected(res, ErrUserNotFound); err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the account together with its playlists and likes, in a
// single transaction. It returns the profile image filename so the caller can
// discard the blob.
func (s *Store) DeleteUser(ctx context.Context, id string) (string, error) {
	var image sql.NullString

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT image FROM users WHERE id = $1`, id).Scan(&image)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = $1)
		`, id); err != nil {
			return fmt.Errorf("delete playlist memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("delete playlists: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return image.String, nil
}

const userSelect = `
	SELECT id, name, username, email, password_hash, gender, COALESCE(image, ''), joined_at, is_verified, is_premium, is_admin
	FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row rowScanner) (User, error) {
	u, err := s.scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (s *Store) scanUserRow(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Gender,
		&u.Image, &u.JoinedAt, &u.Verified, &u.Premium, &u.Admin)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func requireAffected(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
