package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/swaggest/swgui/v5emb"

	"github.com/fantanome/api/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	store, tokens, now := deps.Store, deps.Tokens, deps.Now

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimit > 0 {
		limit = httprate.LimitByIP(deps.RateLimit, time.Minute)
	}

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Fantanome API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limit).Post("/register", handleRegister(logger, store, tokens))
		r.With(limit).Post("/login", handleLogin(logger, store, tokens))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(logger, tokens, store))
			r.Post("/logout", handleLogout(logger, tokens))
			r.Get("/me", handleMe())
		})
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Use(authMiddleware(logger, tokens, store))

		r.Get("/", handleListGames(logger, store, now))
		r.Post("/", handleCreateGame(logger, store, now))
		r.With(limit).Post("/join", handleJoinGame(logger, store, now))

		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", handleGetGame(logger, store, now))
			r.Put("/", handleUpdateGame(logger, store, now))
			r.Delete("/", handleDeleteGame(logger, store))
			r.Post("/invite-code", handleRegenerateInviteCode(logger, store))
			r.Get("/invite-code/qr", handleInviteQR(logger, store, deps.PublicURL))
			r.Get("/submission", handleGetSubmission(logger, store))
			r.Put("/submission", handleSaveSubmission(logger, store, now))
			r.Get("/victory", handleVictory(logger, store, now))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
