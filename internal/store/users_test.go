package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestValidateNewUser(t *testing.T) {
	valid := User{
		Name:         "Robin",
		Username:     "robin99",
		Email:        "robin@example.com",
		PasswordHash: "$2a$10$hash",
		Gender:       "undisclosed",
	}

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr bool
	}{
		{name: "valid user", mutate: func(u *User) {}},
		{name: "name too short", mutate: func(u *User) { u.Name = "ab" }, wantErr: true},
		{name: "username too long", mutate: func(u *User) { u.Username = "waytoolongusername" }, wantErr: true},
		{name: "bad email", mutate: func(u *User) { u.Email = "not-an-email" }, wantErr: true},
		{name: "missing hash", mutate: func(u *User) { u.PasswordHash = "" }, wantErr: true},
		{name: "unknown gender", mutate: func(u *User) { u.Gender = "quux" }, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			u := valid
			tc.mutate(&u)
			err := validateNewUser(u)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil error but got %v", err)
			}
			if tc.wantErr && err != nil && !errors.Is(err, ErrInvalidUser) {
				t.Fatalf("expected ErrInvalidUser, got %v", err)
			}
		})
	}
}

func TestCreateUserSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND username = $2)`)).
		WithArgs("robin@example.com", "robin99").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(sqlmock.AnyArg(), "Robin", "robin99", "robin@example.com", "$2a$10$hash", "undisclosed",
			nil, sqlmock.AnyArg(), false, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.CreateUser(context.Background(), User{
		Name:         " Robin ",
		Username:     "robin99",
		Email:        "robin@example.com",
		PasswordHash: "$2a$10$hash",
		Gender:       "undisclosed",
	})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	if got.ID == "" || !ValidID(got.ID) {
		t.Fatalf("expected a generated uuid id, got %q", got.ID)
	}
	if got.Name != "Robin" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND username = $2)`)).
		WithArgs("robin@example.com", "robin99").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = s.CreateUser(context.Background(), User{
		Name:         "Robin",
		Username:     "robin99",
		Email:        "robin@example.com",
		PasswordHash: "$2a$10$hash",
		Gender:       "male",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	userID := "5f0f8f9a-0c57-4a0f-9df0-111111111111"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT image FROM users WHERE id = $1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow("12345-avatar.png"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlist_songs WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = $1)`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlists WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	image, err := s.DeleteUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}
	if image != "12345-avatar.png" {
		t.Fatalf("expected profile image filename, got %q", image)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteUserMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	userID := "5f0f8f9a-0c57-4a0f-9df0-222222222222"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT image FROM users WHERE id = $1`)).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = s.DeleteUser(context.Background(), userID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
