package users

import (
	"context"
	"errors"
	"testing"

	"soundvault/internal/auth"
	"soundvault/internal/store"
)

type stubStore struct {
	createdUser store.User
	createErr   error

	userByEmail store.User
	byEmailErr  error
}

func (s *stubStore) CreateUser(ctx context.Context, u store.User) (store.User, error) {
	s.createdUser = u
	if s.createErr != nil {
		return store.User{}, s.createErr
	}
	return u, nil
}

func (s *stubStore) UserByEmail(ctx context.Context, email string) (store.User, error) {
	if s.byEmailErr != nil {
		return store.User{}, s.byEmailErr
	}
	return s.userByEmail, nil
}

func (s *stubStore) GetUser(ctx context.Context, id string) (store.User, error) {
	return store.User{}, store.ErrUserNotFound
}
func (s *stubStore) ListUsers(ctx context.Context) ([]store.User, error) { return nil, nil }
func (s *stubStore) UpdateUser(ctx context.Context, id string, upd store.UserUpdate) (store.User, error) {
	return store.User{}, nil
}
func (s *stubStore) SetVerified(ctx context.Context, id string) (store.User, error) {
	return store.User{}, nil
}
func (s *stubStore) SetPremium(ctx context.Context, id string) (store.User, error) {
	return store.User{}, nil
}
func (s *stubStore) DeleteUser(ctx context.Context, id string) (string, error) { return "", nil }

func TestRegisterHashesPassword(t *testing.T) {
	st := &stubStore{}
	svc := New(st, auth.NewTokenManager("test-secret"))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Robin",
		Username: "robin99",
		Email:    "robin@example.com",
		Password: "hunter22!!",
		Gender:   "undisclosed",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if st.createdUser.PasswordHash == "" || st.createdUser.PasswordHash == "hunter22!!" {
		t.Fatalf("expected an irreversible hash, got %q", st.createdUser.PasswordHash)
	}
	if !auth.VerifyPassword("hunter22!!", st.createdUser.PasswordHash) {
		t.Fatalf("stored hash does not verify against the original password")
	}
}

func TestRegisterPasswordLength(t *testing.T) {
	svc := New(&stubStore{}, auth.NewTokenManager("test-secret"))

	for _, password := range []string{"short", "muchtoolongapasswordis"} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Robin",
			Username: "robin99",
			Email:    "robin@example.com",
			Password: password,
			Gender:   "undisclosed",
		})
		if !errors.Is(err, store.ErrInvalidUser) {
			t.Fatalf("password %q: expected ErrInvalidUser, got %v", password, err)
		}
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := New(&stubStore{byEmailErr: store.ErrUserNotFound}, auth.NewTokenManager("test-secret"))

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")
	if !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	svc := New(&stubStore{userByEmail: store.User{ID: "u1", Email: "robin@example.com", PasswordHash: hash}},
		auth.NewTokenManager("test-secret"))

	_, _, err = svc.Login(context.Background(), "robin@example.com", "wrong-horse")
	if !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	tokens := auth.NewTokenManager("test-secret")
	svc := New(&stubStore{userByEmail: store.User{ID: "u1", Admin: true, PasswordHash: hash}}, tokens)

	token, user, err := svc.Login(context.Background(), "robin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("expected the stored user back, got %q", user.ID)
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != "u1" || !claims.Admin {
		t.Fatalf("claims do not carry the identity: %+v", claims)
	}
}
