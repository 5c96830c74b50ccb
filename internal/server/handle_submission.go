package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fantanome/api/internal/fantanome"
)

// SubmissionRequest is the request body for PUT /api/games/{gameID}/submission.
type SubmissionRequest struct {
	Names []string `json:"names" validate:"required,min=1,max=50,dive,required,max=100"`
}

func (req *SubmissionRequest) normalize() {
	for i, n := range req.Names {
		req.Names[i] = strings.TrimSpace(n)
	}
}

type SubmissionResponse struct {
	ID                 string    `json:"id"`
	GameID             string    `json:"gameId"`
	Names              []string  `json:"names"`
	Role               string    `json:"role"`
	IsParentPreference bool      `json:"isParentPreference"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func submissionResponse(s fantanome.Submission) SubmissionResponse {
	names := s.Names
	if names == nil {
		names = []string{}
	}
	return SubmissionResponse{
		ID:                 s.ID,
		GameID:             s.GameID,
		Names:              names,
		Role:               string(s.Role),
		IsParentPreference: s.IsParentPreference,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// handleSaveSubmission stores the caller's list for the game. The owner's
// list is the parent's preference; everyone else's is a guess.
func handleSaveSubmission(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := memberGame(w, r, logger, store)
		if !ok {
			return
		}
		if fantanome.IsRevealed(game, now()) {
			writeError(w, http.StatusConflict, "results have been revealed, submissions are closed")
			return
		}

		var req SubmissionRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		user := userFrom(r)
		sub := fantanome.Submission{
			GameID:    game.ID,
			Submitter: user,
			Role:      fantanome.RoleParticipant,
			Names:     req.Names,
		}
		if game.OwnerID == user.ID {
			sub.Role = fantanome.RoleParent
			sub.IsParentPreference = true
		}

		saved, err := store.SaveSubmission(r.Context(), sub)
		if err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}
		writeJSON(w, http.StatusOK, submissionResponse(saved))
	}
}

func handleGetSubmission(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := memberGame(w, r, logger, store)
		if !ok {
			return
		}

		sub, err := store.GetSubmission(r.Context(), game.ID, userFrom(r).ID)
		if errors.Is(err, fantanome.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no submission yet")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, submissionResponse(sub))
	}
}
