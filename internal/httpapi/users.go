package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"soundvault/internal/app/users"
	"soundvault/internal/blob"
	"soundvault/internal/store"
)

const maxUploadSize = 32 << 20

type userResponse struct {
	Message string     `json:"message"`
	User    store.User `json:"user"`
}

type loginResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    store.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	up := s.blobs.Begin()
	defer up.Discard()

	image, ok := s.stageFormFile(w, r, up, "image")
	if !ok {
		return
	}

	user, err := s.users.Register(r.Context(), users.RegisterInput{
		Name:     r.FormValue("name"),
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Gender:   r.FormValue("gender"),
		Image:    image,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	up.Commit()
	writeJSON(w, http.StatusCreated, userResponse{Message: "Registered successfully.", User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Logged in successfully.", Token: token, User: user})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok || !s.requireAdmin(w, claims) {
		return
	}

	list, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Users []store.User `json:"users"`
	}{Users: list})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok || !s.requireAdmin(w, claims) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if claims.UserID != id && !claims.Admin {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "cannot edit another user's profile"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	existing, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	up := s.blobs.Begin()
	defer up.Discard()

	image, ok := s.stageFormFile(w, r, up, "image")
	if !ok {
		return
	}

	upd := store.UserUpdate{
		Name:     formValueOr(r, "name", existing.Name),
		Username: formValueOr(r, "username", existing.Username),
		Gender:   formValueOr(r, "gender", existing.Gender),
		Image:    existing.Image,
	}
	if image != "" {
		upd.Image = image
	}

	user, err := s.users.Update(r.Context(), id, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up.Commit()

	// The replaced profile image is gone from the record; drop the file too.
	if image != "" && existing.Image != "" {
		if err := s.blobs.Remove(existing.Image); err != nil {
			s.log.Error().Err(err).Str("file", existing.Image).Msg("discard replaced profile image")
		}
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "User updated.", User: user})
}

func (s *Server) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	s.handleUserFlag(w, r, s.users.SetVerified)
}

func (s *Server) handlePremiumUser(w http.ResponseWriter, r *http.Request) {
	s.handleUserFlag(w, r, s.users.SetPremium)
}

func (s *Server) handleUserFlag(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, id string) (store.User, error)) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := set(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "User updated.", User: user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if claims.UserID != id && !claims.Admin {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "cannot delete another user"})
		return
	}

	image, err := s.users.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if image != "" {
		if err := s.blobs.Remove(image); err != nil {
			s.log.Error().Err(err).Str("file", image).Msg("discard profile image")
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "User has been deleted."})
}

// stageFormFile saves an optional uploaded file into the staged upload. A
// missing file field is fine; any other failure is written as a 400.
func (s *Server) stageFormFile(w http.ResponseWriter, r *http.Request, up *blob.Upload, field string) (string, bool) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid file upload"})
		return "", false
	}
	defer file.Close()

	name, err := up.Add(file, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return name, true
}

func formValueOr(r *http.Request, field, fallback string) string {
	if v := r.FormValue(field); v != "" {
		return v
	}
	return fallback
}
