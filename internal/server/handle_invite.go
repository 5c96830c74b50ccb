package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/fantanome/api/internal/fantanome"
)

// JoinRequest is the request body for POST /api/games/join.
type JoinRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,len=6"`
}

func (req *JoinRequest) normalize() {
	req.InviteCode = strings.ToUpper(strings.TrimSpace(req.InviteCode))
}

// InviteCodeResponse is returned when the owner regenerates the code.
type InviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}

const qrSize = 320

func handleJoinGame(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if !fantanome.ValidInviteCode(req.InviteCode) {
			writeError(w, http.StatusNotFound, "invite code not found")
			return
		}

		user := userFrom(r)
		game, err := store.JoinByInviteCode(r.Context(), req.InviteCode, user.ID)
		if errors.Is(err, fantanome.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invite code not found")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		writeJSON(w, http.StatusOK, gameResponse(game, user.ID, now()))
	}
}

func handleRegenerateInviteCode(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(w, r, logger, store)
		if !ok {
			return
		}

		code, err := store.RegenerateInviteCode(r.Context(), game.ID)
		if err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}

		logger.Info("invite code regenerated", "game_id", game.ID)
		writeJSON(w, http.StatusOK, InviteCodeResponse{InviteCode: code})
	}
}

// joinURL is the link encoded in the invite QR code.
func joinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/join/" + url.PathEscape(code)
}

func handleInviteQR(logger *slog.Logger, store Store, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(w, r, logger, store)
		if !ok {
			return
		}

		png, err := qrcode.Encode(joinURL(publicURL, game.InviteCode), qrcode.Medium, qrSize)
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}
