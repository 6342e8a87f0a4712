package playlists

import (
	"context"

	"soundvault/internal/store"
)

// Store defines persistence operations required for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, ownerID, name, description string) (store.Playlist, error)
	ListPlaylists(ctx context.Context, ownerID string) ([]store.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (store.Playlist, error)
	UpdatePlaylist(ctx context.Context, ownerID, id, name, description string) (store.Playlist, error)
	DeletePlaylist(ctx context.Context, ownerID, id string) error
	AddSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
	RemoveSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
}

// Service coordinates playlist-related operations.
type Service interface {
	Create(ctx context.Context, ownerID, name, description string) (store.Playlist, error)
	List(ctx context.Context, ownerID string) ([]store.Playlist, error)
	Get(ctx context.Context, id string) (store.Playlist, error)
	Update(ctx context.Context, ownerID, id, name, description string) (store.Playlist, error)
	Delete(ctx context.Context, ownerID, id string) error
	AddSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
	RemoveSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error)
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, ownerID, name, description string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, ownerID, name, description)
}

func (s *service) List(ctx context.Context, ownerID string) ([]store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, ownerID)
}

func (s *service) Get(ctx context.Context, id string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Update(ctx context.Context, ownerID, id, name, description string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, ownerID, id, name, description)
}

func (s *service) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, ownerID, id)
}

func (s *service) AddSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.AddSong(ctx, ownerID, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, ownerID, playlistID, songID string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.RemoveSong(ctx, ownerID, playlistID, songID)
}
