package likes

import (
	"context"

	"soundvault/internal/store"
)

// Store defines persistence operations required for like workflows.
type Store interface {
	ToggleLike(ctx context.Context, userID, songID string) (bool, error)
	ListLikes(ctx context.Context, userID string) ([]store.Song, error)
}

// Service coordinates the per-user like set.
type Service interface {
	Toggle(ctx context.Context, userID, songID string) (bool, error)
	List(ctx context.Context, userID string) ([]store.Song, error)
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Toggle(ctx context.Context, userID, songID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleLike(ctx, userID, songID)
}

func (s *service) List(ctx context.Context, userID string) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListLikes(ctx, userID)
}
