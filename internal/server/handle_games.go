package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fantanome/api/internal/fantanome"
)

// GameRequest is the request body for creating or updating a game. On
// update a missing revealAt keeps the current reveal time.
type GameRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	RevealAt    *time.Time `json:"revealAt"`
}

func (req *GameRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
}

func (req GameRequest) input() GameInput {
	in := GameInput{Name: req.Name, Description: req.Description}
	if req.RevealAt != nil {
		t := req.RevealAt.UTC()
		in.RevealAt = &t
	}
	return in
}

// GameResponse describes a game as seen by one of its members.
type GameResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	OwnerID          string     `json:"ownerId"`
	IsOwner          bool       `json:"isOwner"`
	InviteCode       string     `json:"inviteCode"`
	RevealAt         *time.Time `json:"revealAt"`
	Revealed         bool       `json:"revealed"`
	ParticipantCount int        `json:"participantCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func gameResponse(g fantanome.Game, userID string, now time.Time) GameResponse {
	return GameResponse{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		OwnerID:          g.OwnerID,
		IsOwner:          g.OwnerID == userID,
		InviteCode:       g.InviteCode,
		RevealAt:         g.RevealAt,
		Revealed:         fantanome.IsRevealed(g, now),
		ParticipantCount: len(g.ParticipantIDs),
		CreatedAt:        g.CreatedAt,
	}
}

// memberGame loads the {gameID} route parameter and checks that the caller
// belongs to it. It writes the error response itself and returns false on
// failure.
func memberGame(w http.ResponseWriter, r *http.Request, logger *slog.Logger, store Store) (fantanome.Game, bool) {
	game, err := store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeDomainError(w, logger, err, "game not found")
		return fantanome.Game{}, false
	}
	if !game.HasMember(userFrom(r).ID) {
		writeError(w, http.StatusForbidden, "you are not a member of this game")
		return fantanome.Game{}, false
	}
	return game, true
}

// ownedGame is memberGame restricted to the owner.
func ownedGame(w http.ResponseWriter, r *http.Request, logger *slog.Logger, store Store) (fantanome.Game, bool) {
	game, ok := memberGame(w, r, logger, store)
	if !ok {
		return game, false
	}
	if game.OwnerID != userFrom(r).ID {
		writeError(w, http.StatusForbidden, "only the game owner can do this")
		return fantanome.Game{}, false
	}
	return game, true
}

func handleListGames(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		games, err := store.ListGamesForUser(r.Context(), user.ID)
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		t := now()
		resp := make([]GameResponse, 0, len(games))
		for _, g := range games {
			resp = append(resp, gameResponse(g, user.ID, t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleCreateGame(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if user.Role != fantanome.RoleParent {
			writeError(w, http.StatusForbidden, "only parents can create games")
			return
		}

		var req GameRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		game, err := store.CreateGame(r.Context(), user.ID, req.input())
		if errors.Is(err, fantanome.ErrConflict) {
			writeError(w, http.StatusConflict, "you already have a game with this name")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}

		logger.Info("game created", "game_id", game.ID, "owner_id", user.ID)
		writeJSON(w, http.StatusCreated, gameResponse(game, user.ID, now()))
	}
}

func handleGetGame(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := memberGame(w, r, logger, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, gameResponse(game, userFrom(r).ID, now()))
	}
}

func handleUpdateGame(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(w, r, logger, store)
		if !ok {
			return
		}

		var req GameRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		in := req.input()
		revealAt, err := fantanome.NextRevealAt(game, req.RevealAt, now())
		if errors.Is(err, fantanome.ErrRevealLocked) {
			writeError(w, http.StatusConflict, "results have been revealed, the reveal time can no longer change")
			return
		}
		in.RevealAt = revealAt

		updated, err := store.UpdateGame(r.Context(), game.ID, in)
		if errors.Is(err, fantanome.ErrConflict) {
			writeError(w, http.StatusConflict, "you already have a game with this name")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}
		writeJSON(w, http.StatusOK, gameResponse(updated, userFrom(r).ID, now()))
	}
}

func handleDeleteGame(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := ownedGame(w, r, logger, store)
		if !ok {
			return
		}

		if err := store.DeleteGame(r.Context(), game.ID); err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}

		logger.Info("game deleted", "game_id", game.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}
