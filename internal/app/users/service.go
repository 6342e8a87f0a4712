package users

import (
	"context"
	"errors"
	"fmt"

	"soundvault/internal/auth"
	"soundvault/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, u store.User) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	GetUser(ctx context.Context, id string) (store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	UpdateUser(ctx context.Context, id string, upd store.UserUpdate) (store.User, error)
	SetVerified(ctx context.Context, id string) (store.User, error)
	SetPremium(ctx context.Context, id string) (store.User, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}

// Service exposes account workflows.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (store.User, error)
	Login(ctx context.Context, email, password string) (string, store.User, error)
	Get(ctx context.Context, id string) (store.User, error)
	List(ctx context.Context) ([]store.User, error)
	Update(ctx context.Context, id string, upd store.UserUpdate) (store.User, error)
	SetVerified(ctx context.Context, id string) (store.User, error)
	SetPremium(ctx context.Context, id string) (store.User, error)
	Delete(ctx context.Context, id string) (string, error)
}

// RegisterInput carries the registration form fields. Image is the already
// stored blob filename, empty when no image was uploaded.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Gender   string
	Image    string
}

type service struct {
	store  Store
	tokens *auth.TokenManager
}

// New wires a Service backed by the provided Store and token manager.
func New(st Store, tokens *auth.TokenManager) Service {
	return &service{store: st, tokens: tokens}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if n := len(input.Password); n < 8 || n > 16 {
		return store.User{}, fmt.Errorf("%w: password must be 8-16 characters", store.ErrInvalidUser)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return store.User{}, err
	}

	return s.store.CreateUser(ctx, store.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Gender:       input.Gender,
		Image:        input.Image,
	})
}

func (s *service) Login(ctx context.Context, email, password string) (string, store.User, error) {
	if err := ctx.Err(); err != nil {
		return "", store.User{}, err
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.CompareDummy(password)
			return "", store.User{}, store.ErrInvalidCredentials
		}
		return "", store.User{}, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", store.User{}, store.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Admin)
	if err != nil {
		return "", store.User{}, err
	}
	return token, user, nil
}

func (s *service) Get(ctx context.Context, id string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *service) List(ctx context.Context) ([]store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *service) Update(ctx context.Context, id string, upd store.UserUpdate) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UpdateUser(ctx, id, upd)
}

func (s *service) SetVerified(ctx context.Context, id string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.SetVerified(ctx, id)
}

func (s *service) SetPremium(ctx context.Context, id string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.SetPremium(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.store.DeleteUser(ctx, id)
}
