package fantanome

import "sort"

// MessagePreferencesUnset accompanies an empty result set when the parent
// has not submitted a preference list yet.
const MessagePreferencesUnset = "The parent has not set their name preferences yet"

// Standing is one scored participant.
type Standing struct {
	User         User
	GuessedNames []string
	ScoreResult
}

type Results struct {
	Winners           []Standing
	ParentPreferences []string
	PreferencesSet    bool
	Revealed          bool
	Message           string
}

// PickParentPreference returns the authoritative preference submission.
// Normally there is at most one; if several carry the flag the most recently
// updated wins, then the lowest id.
func PickParentPreference(subs []Submission) (Submission, bool) {
	var (
		best  Submission
		found bool
	)
	for _, s := range subs {
		if !s.IsParentPreference {
			continue
		}
		if !found || s.UpdatedAt.After(best.UpdatedAt) ||
			(s.UpdatedAt.Equal(best.UpdatedAt) && s.ID < best.ID) {
			best = s
			found = true
		}
	}
	return best, found
}

// AssembleResults scores every participant submission against the parent's
// preferences and ranks them by score, highest first.
//
// subs must be in submission order (first saved first): equal scores keep
// that order.
func AssembleResults(subs []Submission, revealed bool) Results {
	res := Results{
		Winners:           []Standing{},
		ParentPreferences: []string{},
		Revealed:          revealed,
	}

	pref, ok := PickParentPreference(subs)
	if !ok {
		res.Message = MessagePreferencesUnset
		return res
	}
	res.PreferencesSet = true

	for _, s := range subs {
		if s.Role != RoleParticipant {
			continue
		}
		res.Winners = append(res.Winners, Standing{
			User:         s.Submitter,
			GuessedNames: s.Names,
			ScoreResult:  Score(pref.Names, s.Names),
		})
	}

	sort.SliceStable(res.Winners, func(i, j int) bool {
		return res.Winners[i].Score > res.Winners[j].Score
	})

	if revealed {
		res.ParentPreferences = append(res.ParentPreferences, pref.Names...)
	}
	return res
}
