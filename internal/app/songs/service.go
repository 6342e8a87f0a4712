package songs

import (
	"context"

	"soundvault/internal/store"
)

// Store describes the persistence operations required by the song service.
type Store interface {
	CreateSong(ctx context.Context, song store.Song) (store.Song, error)
	ListSongs(ctx context.Context) ([]store.Song, error)
	GetSong(ctx context.Context, id string) (store.Song, error)
	UpdateSong(ctx context.Context, id string, song store.Song) (store.Song, error)
	DeleteSong(ctx context.Context, id string) error
}

// Service coordinates catalog workflows.
type Service interface {
	Create(ctx context.Context, song store.Song) (store.Song, error)
	List(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Update(ctx context.Context, id string, song store.Song) (store.Song, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, song store.Song) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.CreateSong(ctx, song)
}

func (s *service) List(ctx context.Context) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

func (s *service) Get(ctx context.Context, id string) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.GetSong(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, song store.Song) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.UpdateSong(ctx, id, song)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSong(ctx, id)
}
