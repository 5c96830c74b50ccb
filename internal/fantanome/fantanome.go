// Package fantanome holds the game rules: name normalization, scoring,
// leaderboard assembly, the reveal gate and invite codes. Nothing here
// performs I/O; callers load records first and pass them in.
package fantanome

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrInviteCodeExhausted = errors.New("invite code generation exhausted")

	ErrNotMember    = fmt.Errorf("%w: not a member of the game", ErrForbidden)
	ErrNotRevealed  = fmt.Errorf("%w: results are not revealed yet", ErrForbidden)
	ErrRevealLocked = fmt.Errorf("%w: reveal time is fixed once revealed", ErrConflict)
)

type Role string

const (
	RoleParent      Role = "parent"
	RoleParticipant Role = "participant"
)

type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	CreatedAt time.Time
}

type Game struct {
	ID             string
	OwnerID        string
	Name           string
	Description    string
	InviteCode     string
	RevealAt       *time.Time
	ParticipantIDs []string
	CreatedAt      time.Time
}

// HasMember reports whether userID owns or has joined the game.
func (g Game) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	if g.OwnerID == userID {
		return true
	}
	for _, id := range g.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Submission is one user's ordered name list for a game.
type Submission struct {
	ID                 string
	GameID             string
	Submitter          User
	Role               Role
	IsParentPreference bool
	Names              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
