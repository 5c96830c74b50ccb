package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fantanome/api/internal/fantanome"
)

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	Role      string `json:"role" validate:"required,oneof=parent participant"`
}

func (req *RegisterRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Role = strings.TrimSpace(req.Role)
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (req *LoginRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

// UserInfo is the public shape of a user.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expiresAt"`
	User      UserInfo `json:"user"`
}

func userInfo(u fantanome.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

// dummyHash keeps login timing similar whether or not the email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func handleRegister(logger *slog.Logger, store Store, tokens *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		user, err := store.CreateUser(r.Context(), fantanome.User{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      fantanome.Role(req.Role),
		}, string(hash))
		if errors.Is(err, fantanome.ErrConflict) {
			writeError(w, http.StatusConflict, "email is already registered")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		writeSession(w, logger, tokens, user, http.StatusCreated)
	}
}

func handleLogin(logger *slog.Logger, store Store, tokens *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		user, hash, err := store.UserByEmail(r.Context(), req.Email)
		if errors.Is(err, fantanome.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		writeSession(w, logger, tokens, user, http.StatusOK)
	}
}

func writeSession(w http.ResponseWriter, logger *slog.Logger, tokens *TokenIssuer, user fantanome.User, status int) {
	token, exp, err := tokens.Issue(user.ID)
	if err != nil {
		writeDomainError(w, logger, err, "")
		return
	}
	writeJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
		User:      userInfo(user),
	})
}

func handleLogout(logger *slog.Logger, tokens *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tokens.Revoke(r.Context(), claimsFrom(r)); err != nil {
			writeDomainError(w, logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userInfo(userFrom(r)))
	}
}
