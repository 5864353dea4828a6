package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"divebooks/internal/auth"
	"divebooks/internal/ledger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// handleLogin verifies credentials against the user store and mints a session
// token. Unknown usernames and wrong passwords get the same response, so the
// endpoint cannot be used to probe for accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Username and password required.")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password required.")
		return
	}

	user, err := s.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, ledger.ErrUserNotFound) {
			slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		}
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	ttl := s.opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, err := auth.IssueToken(user, []byte(s.opts.JWTSecret), ttl)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issuance failed", "error", err, "username", user.Username)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to sign in. Please try again later.")
		return
	}

	slog.InfoContext(r.Context(), "User signed in", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful.",
		Token:   token,
		User: loginUser{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     string(user.Role),
		},
	})
}
