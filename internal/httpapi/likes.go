package httpapi

import (
	"net/http"

	"soundvault/internal/store"
)

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	liked, err := s.likes.Toggle(r.Context(), claims.UserID, songID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	message := "Song unliked."
	if liked {
		message = "Song liked."
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Liked   bool   `json:"liked"`
	}{Message: message, Liked: liked})
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	songs, err := s.likes.List(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}
