package server

import (
	"context"
	"time"

	"github.com/fantanome/api/internal/fantanome"
)

// GameInput carries the editable game fields.
type GameInput struct {
	Name        string
	Description string
	RevealAt    *time.Time
}

// Store is the persistence collaborator behind the HTTP handlers. Lookups
// that find nothing return fantanome.ErrNotFound; uniqueness violations
// return fantanome.ErrConflict.
type Store interface {
	CreateUser(ctx context.Context, u fantanome.User, passwordHash string) (fantanome.User, error)
	UserByEmail(ctx context.Context, email string) (u fantanome.User, passwordHash string, err error)
	UserByID(ctx context.Context, id string) (fantanome.User, error)

	CreateGame(ctx context.Context, ownerID string, in GameInput) (fantanome.Game, error)
	GetGame(ctx context.Context, id string) (fantanome.Game, error)
	ListGamesForUser(ctx context.Context, userID string) ([]fantanome.Game, error)
	UpdateGame(ctx context.Context, id string, in GameInput) (fantanome.Game, error)
	DeleteGame(ctx context.Context, id string) error
	RegenerateInviteCode(ctx context.Context, gameID string) (string, error)
	JoinByInviteCode(ctx context.Context, code, userID string) (fantanome.Game, error)

	// SaveSubmission inserts or wholesale replaces the submission keyed by
	// (GameID, Submitter.ID). The first save's id and creation time are kept.
	SaveSubmission(ctx context.Context, sub fantanome.Submission) (fantanome.Submission, error)
	GetSubmission(ctx context.Context, gameID, submitterID string) (fantanome.Submission, error)
	// ListSubmissions returns every submission of a game in the order they
	// were first saved, with submitter details filled in.
	ListSubmissions(ctx context.Context, gameID string) ([]fantanome.Submission, error)
}
