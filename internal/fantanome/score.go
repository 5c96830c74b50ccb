package fantanome

const (
	ExactMatchPoints = 10
	OrderMatchPoints = 5
)

// OrderMatch is a guessed name that the parent listed at another position.
// Positions are 0-indexed.
type OrderMatch struct {
	Name            string `json:"name"`
	GuessedPosition int    `json:"guessedPosition"`
	ActualPosition  int    `json:"actualPosition"`
}

type ScoreResult struct {
	ExactMatches int
	OrderMatches []OrderMatch
	Score        int
}

// Score compares a guess list against the parent's preference list.
//
// Each guessed name is matched against the first preference with the same
// normalized form. Preference slots are not consumed, so a name guessed twice
// can be credited twice.
func Score(preferences, guess []string) ScoreResult {
	res := ScoreResult{OrderMatches: []OrderMatch{}}

	normalized := make([]string, len(preferences))
	for i, p := range preferences {
		normalized[i] = Normalize(p)
	}

	for i, name := range guess {
		pos := indexOf(normalized, Normalize(name))
		switch {
		case pos < 0:
		case pos == i:
			res.ExactMatches++
		default:
			res.OrderMatches = append(res.OrderMatches, OrderMatch{
				Name:            name,
				GuessedPosition: i,
				ActualPosition:  pos,
			})
		}
	}

	res.Score = ExactMatchPoints*res.ExactMatches + OrderMatchPoints*len(res.OrderMatches)
	return res
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}
