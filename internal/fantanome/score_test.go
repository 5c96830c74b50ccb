package fantanome

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"  ALICE ", "alice"},
		{"\tMarie Claire\n", "marie claire"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		preferences []string
		guess       []string
		wantExact   int
		wantOrder   []OrderMatch
		wantScore   int
	}{
		{
			name:        "exact matches",
			preferences: []string{"Alice", "Bob"},
			guess:       []string{"Alice", "Bob"},
			wantExact:   2,
			wantOrder:   []OrderMatch{},
			wantScore:   20,
		},
		{
			name:        "order matches",
			preferences: []string{"Alice", "Bob"},
			guess:       []string{"Bob", "Alice"},
			wantOrder: []OrderMatch{
				{Name: "Bob", GuessedPosition: 0, ActualPosition: 1},
				{Name: "Alice", GuessedPosition: 1, ActualPosition: 0},
			},
			wantScore: 10,
		},
		{
			name:        "no match",
			preferences: []string{"Alice"},
			guess:       []string{"Zoe"},
			wantOrder:   []OrderMatch{},
		},
		{
			name:      "empty inputs",
			wantOrder: []OrderMatch{},
		},
		{
			name:        "empty guess",
			preferences: []string{"Alice"},
			wantOrder:   []OrderMatch{},
		},
		{
			name:        "mixed with miss",
			preferences: []string{"Alice", "Bob", "Carla"},
			guess:       []string{"Alice", "Carla", "Zoe"},
			wantExact:   1,
			wantOrder:   []OrderMatch{{Name: "Carla", GuessedPosition: 1, ActualPosition: 2}},
			wantScore:   15,
		},
		{
			name:        "repeated guess credited twice",
			preferences: []string{"Alice", "Bob"},
			guess:       []string{"Alice", "alice"},
			wantExact:   1,
			wantOrder:   []OrderMatch{{Name: "alice", GuessedPosition: 1, ActualPosition: 0}},
			wantScore:   15,
		},
		{
			name:        "duplicate preference matches first slot",
			preferences: []string{"Bob", "Alice", "Alice"},
			guess:       []string{"Bob", "Zoe", "Alice"},
			wantExact:   1,
			wantOrder:   []OrderMatch{{Name: "Alice", GuessedPosition: 2, ActualPosition: 1}},
			wantScore:   15,
		},
		{
			name:        "guess longer than preferences",
			preferences: []string{"Alice"},
			guess:       []string{"Zoe", "Bob", "Alice"},
			wantOrder:   []OrderMatch{{Name: "Alice", GuessedPosition: 2, ActualPosition: 0}},
			wantScore:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.preferences, tt.guess)
			if got.ExactMatches != tt.wantExact {
				t.Errorf("exactMatches = %d, want %d", got.ExactMatches, tt.wantExact)
			}
			if !reflect.DeepEqual(got.OrderMatches, tt.wantOrder) {
				t.Errorf("orderMatches = %+v, want %+v", got.OrderMatches, tt.wantOrder)
			}
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
		})
	}
}

func TestScoreNormalizationInvariance(t *testing.T) {
	a := Score([]string{"Alice"}, []string{"ALICE "})
	b := Score([]string{"alice"}, []string{"Alice"})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("case/whitespace changed the result: %+v vs %+v", a, b)
	}
	if a.Score != ExactMatchPoints {
		t.Errorf("score = %d, want %d", a.Score, ExactMatchPoints)
	}
}

func TestScoreDeterministic(t *testing.T) {
	prefs := []string{"Alice", "Bob", "Carla", "Dario"}
	guess := []string{"Dario", "Bob", "Zoe", "alice"}

	first := Score(prefs, guess)
	for range 50 {
		if got := Score(prefs, guess); !reflect.DeepEqual(got, first) {
			t.Fatalf("result changed between calls: %+v vs %+v", got, first)
		}
	}
}
