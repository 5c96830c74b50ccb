package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fantanome/api/internal/fantanome"
)

// WinnerItem is one ranked participant.
type WinnerItem struct {
	UserID       string                 `json:"userId"`
	User         UserInfo               `json:"user"`
	Score        int                    `json:"score"`
	GuessedNames []string               `json:"guessedNames"`
	ExactMatches int                    `json:"exactMatches"`
	OrderMatches []fantanome.OrderMatch `json:"orderMatches"`
}

// VictoryResponse is the results payload for GET /api/games/{gameID}/victory.
type VictoryResponse struct {
	Winners           []WinnerItem `json:"winners"`
	ParentPreferences []string     `json:"parentPreferences"`
	GameRevealed      bool         `json:"gameRevealed"`
	Message           string       `json:"message,omitempty"`
}

func victoryResponse(res fantanome.Results) VictoryResponse {
	resp := VictoryResponse{
		Winners:           make([]WinnerItem, 0, len(res.Winners)),
		ParentPreferences: res.ParentPreferences,
		GameRevealed:      res.Revealed,
		Message:           res.Message,
	}
	for _, s := range res.Winners {
		guessed := s.GuessedNames
		if guessed == nil {
			guessed = []string{}
		}
		resp.Winners = append(resp.Winners, WinnerItem{
			UserID: s.User.ID,
			User: UserInfo{
				ID:        s.User.ID,
				Email:     s.User.Email,
				FirstName: s.User.FirstName,
				LastName:  s.User.LastName,
			},
			Score:        s.Score,
			GuessedNames: guessed,
			ExactMatches: s.ExactMatches,
			OrderMatches: s.OrderMatches,
		})
	}
	return resp
}

func handleVictory(logger *slog.Logger, store Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := store.GetGame(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}

		revealed, err := fantanome.AuthorizeResults(game, userFrom(r).ID, now())
		switch {
		case errors.Is(err, fantanome.ErrNotMember):
			writeError(w, http.StatusForbidden, "you are not a member of this game")
			return
		case errors.Is(err, fantanome.ErrNotRevealed):
			writeError(w, http.StatusForbidden, "results are not revealed yet")
			return
		case err != nil:
			writeDomainError(w, logger, err, "game not found")
			return
		}

		subs, err := store.ListSubmissions(r.Context(), game.ID)
		if err != nil {
			writeDomainError(w, logger, err, "game not found")
			return
		}

		writeJSON(w, http.StatusOK, victoryResponse(fantanome.AssembleResults(subs, revealed)))
	}
}
