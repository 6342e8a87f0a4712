package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestToggleLikeInvolution(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	userID := testOwnerID
	songID := testSongID

	// First toggle: song absent from the like set, so it gets added.
	expectSongLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE user_id = $1 AND song_id = $2`)).
		WithArgs(userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, song_id, created_at) VALUES ($1, $2, $3)`)).
		WithArgs(userID, songID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := s.ToggleLike(context.Background(), userID, songID)
	if err != nil {
		t.Fatalf("first toggle error: %v", err)
	}
	if !liked {
		t.Fatalf("first toggle should like the song")
	}

	// Second toggle: the pair exists, so the delete removes it.
	expectSongLookup(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE user_id = $1 AND song_id = $2`)).
		WithArgs(userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err = s.ToggleLike(context.Background(), userID, songID)
	if err != nil {
		t.Fatalf("second toggle error: %v", err)
	}
	if liked {
		t.Fatalf("second toggle should restore the original membership")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleLikeMissingSong(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, artist, audio, COALESCE(image, ''), duration FROM songs WHERE id = $1`)).
		WithArgs(testSongID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "artist", "audio", "image", "duration"}))

	_, err = s.ToggleLike(context.Background(), testOwnerID, testSongID)
	if !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListLikesOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM likes l JOIN songs s ON s.id = l.song_id WHERE l.user_id = $1 ORDER BY l.created_at ASC`)).
		WithArgs(testOwnerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "artist", "audio", "image", "duration"}).
			AddRow(testSongID, "Holiday", "Bloc Party", "123-holiday.mp3", "", 221).
			AddRow("55555555-5555-4555-8555-555555555555", "Banquet", "Bloc Party", "124-banquet.mp3", "", 201))

	songs, err := s.ListLikes(context.Background(), testOwnerID)
	if err != nil {
		t.Fatalf("ListLikes error: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	if songs[0].Name != "Holiday" || songs[1].Name != "Banquet" {
		t.Fatalf("expected like order preserved, got %q then %q", songs[0].Name, songs[1].Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
