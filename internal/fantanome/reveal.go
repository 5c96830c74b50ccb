package fantanome

import "time"

// CanViewResults reports whether userID may ask for a game's results at all.
func CanViewResults(g Game, userID string) bool {
	return g.HasMember(userID)
}

// IsRevealed reports whether the reveal time has passed. A game without a
// reveal time is never revealed automatically.
func IsRevealed(g Game, now time.Time) bool {
	return g.RevealAt != nil && !g.RevealAt.After(now)
}

// AuthorizeResults applies the reveal gate for one request. Before the
// reveal only the owner may see standings. Both failures wrap ErrForbidden:
// ErrNotMember for outsiders, ErrNotRevealed for early participants.
func AuthorizeResults(g Game, userID string, now time.Time) (revealed bool, err error) {
	if !CanViewResults(g, userID) {
		return false, ErrNotMember
	}
	revealed = IsRevealed(g, now)
	if !revealed && g.OwnerID != userID {
		return false, ErrNotRevealed
	}
	return revealed, nil
}

// NextRevealAt resolves the reveal time after an owner edit. A nil request
// keeps the current time. Once the game is revealed the time can no longer
// move, so anything but the stored value is ErrRevealLocked.
func NextRevealAt(g Game, requested *time.Time, now time.Time) (*time.Time, error) {
	if requested == nil {
		return g.RevealAt, nil
	}
	if IsRevealed(g, now) && !requested.Equal(*g.RevealAt) {
		return nil, ErrRevealLocked
	}
	t := requested.UTC()
	return &t, nil
}
