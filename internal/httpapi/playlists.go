package httpapi

import (
	"encoding/json"
	"net/http"

	"soundvault/internal/store"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistResponse struct {
	Message  string         `json:"message"`
	Playlist store.Playlist `json:"playlist"`
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	playlist, err := s.playlists.Create(r.Context(), claims.UserID, req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlistResponse{Message: "Playlist created.", Playlist: playlist})
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	list, err := s.playlists.List(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []store.Playlist `json:"playlists"`
	}{Playlists: list})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	playlist, err := s.playlists.Update(r.Context(), claims.UserID, id, req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Message: "Playlist updated.", Playlist: playlist})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.playlists.Delete(r.Context(), claims.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Playlist deleted."})
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), claims.UserID, playlistID, songID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Message: "Song added to playlist.", Playlist: playlist})
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	playlist, err := s.playlists.RemoveSong(r.Context(), claims.UserID, playlistID, songID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{Message: "Song removed from playlist.", Playlist: playlist})
}
