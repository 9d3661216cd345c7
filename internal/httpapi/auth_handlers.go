package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/errs"
	"reviewd/internal/usecase/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	created, err := s.auth.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logging.Error(r.Context(), "register user failed", slog.Any("err", errs.Loggable(err)))
			writeError(w, http.StatusInternalServerError, "error creating user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:        created.ID,
		Username:  created.Username,
		Email:     created.Email,
		IsActive:  created.IsActive,
		CreatedAt: created.CreatedAt,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadCredentials):
			writeError(w, http.StatusUnauthorized, "incorrect username or password")
		case errors.Is(err, auth.ErrInactiveUser):
			writeError(w, http.StatusBadRequest, "inactive user")
		default:
			logging.Error(r.Context(), "login failed", slog.Any("err", errs.Loggable(err)))
			writeError(w, http.StatusInternalServerError, "error during authentication")
		}
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// handleLogout always reports success to the client; the client discards the
// token regardless of whether blacklisting stuck server-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	if s.auth.Logout(r.Context(), token) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
		return
	}

	logging.Warn(r.Context(), "token blacklist failed during logout")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out (token blacklist failed)"})
}
