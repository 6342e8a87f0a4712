package httpapi

import (
	"net/http"
	"strconv"

	"soundvault/internal/store"
)

type songResponse struct {
	Message string     `json:"message"`
	Song    store.Song `json:"song"`
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok || !s.requireAdmin(w, claims) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	up := s.blobs.Begin()
	defer up.Discard()

	audio, ok := s.stageFormFile(w, r, up, "song")
	if !ok {
		return
	}
	image, ok := s.stageFormFile(w, r, up, "image")
	if !ok {
		return
	}

	song, err := s.songs.Create(r.Context(), store.Song{
		Name:     r.FormValue("name"),
		Artist:   r.FormValue("artist"),
		Audio:    audio,
		Image:    image,
		Duration: parseDuration(r.FormValue("duration")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	up.Commit()
	writeJSON(w, http.StatusCreated, songResponse{Message: "Added successfully.", Song: song})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok || !s.requireAdmin(w, claims) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	existing, err := s.songs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	up := s.blobs.Begin()
	defer up.Discard()

	audio, ok := s.stageFormFile(w, r, up, "song")
	if !ok {
		return
	}
	image, ok := s.stageFormFile(w, r, up, "image")
	if !ok {
		return
	}

	next := store.Song{
		Name:     formValueOr(r, "name", existing.Name),
		Artist:   formValueOr(r, "artist", existing.Artist),
		Audio:    existing.Audio,
		Image:    existing.Image,
		Duration: existing.Duration,
	}
	if d := r.FormValue("duration"); d != "" {
		next.Duration = parseDuration(d)
	}
	if audio != "" {
		next.Audio = audio
	}
	if image != "" {
		next.Image = image
	}

	song, err := s.songs.Update(r.Context(), id, next)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up.Commit()

	// Replaced blobs are unreferenced now; drop the files.
	if audio != "" && existing.Audio != "" {
		if err := s.blobs.Remove(existing.Audio); err != nil {
			s.log.Error().Err(err).Str("file", existing.Audio).Msg("discard replaced audio")
		}
	}
	if image != "" && existing.Image != "" {
		if err := s.blobs.Remove(existing.Image); err != nil {
			s.log.Error().Err(err).Str("file", existing.Image).Msg("discard replaced image")
		}
	}

	writeJSON(w, http.StatusOK, songResponse{Message: "Song updated.", Song: song})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok || !s.requireAdmin(w, claims) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := s.songs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.songs.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	for _, file := range []string{existing.Audio, existing.Image} {
		if file == "" {
			continue
		}
		if err := s.blobs.Remove(file); err != nil {
			s.log.Error().Err(err).Str("file", file).Msg("discard song blob")
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Song has been removed."})
}

func parseDuration(raw string) int {
	d, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return d
}
