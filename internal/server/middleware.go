package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fantanome/api/internal/fantanome"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyClaims
)

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// authMiddleware resolves the bearer token to a user and stores both in the
// request context. Requests without a valid token get 401.
func authMiddleware(logger *slog.Logger, tokens *TokenIssuer, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			claims, err := tokens.Verify(r.Context(), raw)
			if errors.Is(err, errInvalidToken) {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}
			if err != nil {
				logger.Error("verifying token", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			user, err := store.UserByID(r.Context(), claims.UserID)
			if errors.Is(err, fantanome.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}
			if err != nil {
				logger.Error("loading session user", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			ctx = context.WithValue(ctx, ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFrom(r *http.Request) fantanome.User {
	return r.Context().Value(ctxKeyUser).(fantanome.User)
}

func claimsFrom(r *http.Request) tokenClaims {
	return r.Context().Value(ctxKeyClaims).(tokenClaims)
}
