package server

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/fantanome/api/internal/fantanome"
)

func victoryPath(gameID string) string {
	return "/api/games/" + gameID + "/victory"
}

func TestVictoryPreferencesUnset(t *testing.T) {
	env := newTestEnv(t)
	mum, _ := env.register("mum@example.com", "parent")
	kid, _ := env.register("kid@example.com", "participant")

	reveal := env.clock.Now()
	g := env.createGame(mum, "Game", &reveal)
	env.join(kid, g.InviteCode)

	var resp VictoryResponse
	env.expect(env.do(http.MethodGet, victoryPath(g.ID), kid, nil), http.StatusOK, &resp)

	if resp.Message != fantanome.MessagePreferencesUnset {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Winners == nil || len(resp.Winners) != 0 {
		t.Errorf("winners = %v, want empty list", resp.Winners)
	}
	if resp.ParentPreferences == nil || len(resp.ParentPreferences) != 0 {
		t.Errorf("parentPreferences = %v, want empty list", resp.ParentPreferences)
	}
}

func TestVictoryAccess(t *testing.T) {
	env := newTestEnv(t)
	mum, _ := env.register("mum@example.com", "parent")
	kid, _ := env.register("kid@example.com", "participant")
	stranger, _ := env.register("stranger@example.com", "participant")

	reveal := env.clock.Now().Add(time.Hour)
	g := env.createGame(mum, "Game", &reveal)
	noReveal := env.createGame(mum, "Someday", nil)
	env.join(kid, g.InviteCode)
	env.join(kid, noReveal.InviteCode)

	tests := []struct {
		name       string
		token      string
		gameID     string
		wantStatus int
		wantMsg    string
	}{
		{"participant before reveal", kid, g.ID, http.StatusForbidden, "results are not revealed yet"},
		{"participant without reveal time", kid, noReveal.ID, http.StatusForbidden, "results are not revealed yet"},
		{"stranger", stranger, g.ID, http.StatusForbidden, "you are not a member of this game"},
		{"unknown game", kid, "missing", http.StatusNotFound, "game not found"},
		{"no token", "", g.ID, http.StatusUnauthorized, "invalid or missing session token"},
		{"owner before reveal", mum, g.ID, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, victoryPath(tt.gameID), tt.token, nil)
			if tt.wantStatus == http.StatusOK {
				env.expect(w, http.StatusOK, nil)
				return
			}
			var resp ErrorResponse
			env.expect(w, tt.wantStatus, &resp)
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestVictoryOwnerBeforeReveal(t *testing.T) {
	env := newTestEnv(t)
	mum, _ := env.register("mum@example.com", "parent")
	kid, _ := env.register("kid@example.com", "participant")

	reveal := env.clock.Now().Add(time.Hour)
	g := env.createGame(mum, "Game", &reveal)
	env.join(kid, g.InviteCode)
	env.submit(mum, g.ID, "Luca", "Marco")
	env.submit(kid, g.ID, "Luca", "Marco")

	var resp VictoryResponse
	env.expect(env.do(http.MethodGet, victoryPath(g.ID), mum, nil), http.StatusOK, &resp)

	if resp.GameRevealed {
		t.Error("gameRevealed should be false")
	}
	if len(resp.ParentPreferences) != 0 {
		t.Errorf("parentPreferences = %v, want hidden before reveal", resp.ParentPreferences)
	}
	if len(resp.Winners) != 1 || resp.Winners[0].Score != 20 {
		t.Errorf("winners = %+v, want one participant scoring 20", resp.Winners)
	}
}

func TestVictoryRanking(t *testing.T) {
	env := newTestEnv(t)
	mum, _ := env.register("mum@example.com", "parent")
	anna, annaID := env.register("anna@example.com", "participant")
	bruno, brunoID := env.register("bruno@example.com", "participant")
	carla, carlaID := env.register("carla@example.com", "participant")
	dino, dinoID := env.register("dino@example.com", "participant")

	reveal := env.clock.Now().Add(time.Hour)
	g := env.createGame(mum, "Game", &reveal)
	for _, tok := range []string{anna, bruno, carla, dino} {
		env.join(tok, g.InviteCode)
	}

	env.submit(mum, g.ID, "Luca", "Marco", "Giulia")
	env.clock.Advance(time.Second)
	env.submit(anna, g.ID, "Marco", "Luca") // 2 order matches: 10
	env.clock.Advance(time.Second)
	env.submit(bruno, g.ID, " luca ", "MARCO", "Giulia") // 3 exact: 30
	env.clock.Advance(time.Second)
	env.submit(carla, g.ID, "Luca", "Pietro") // 1 exact: 10, ties with anna
	env.clock.Advance(time.Second)
	env.submit(dino, g.ID, "Pietro") // 0
	// Anna's resubmission keeps her original position for ties.
	env.clock.Advance(time.Second)
	env.submit(anna, g.ID, "Marco", "Luca")

	env.clock.Advance(time.Hour)

	var resp VictoryResponse
	env.expect(env.do(http.MethodGet, victoryPath(g.ID), dino, nil), http.StatusOK, &resp)

	if !resp.GameRevealed {
		t.Error("gameRevealed should be true")
	}
	if resp.Message != "" {
		t.Errorf("message = %q, want none", resp.Message)
	}
	if !slices.Equal(resp.ParentPreferences, []string{"Luca", "Marco", "Giulia"}) {
		t.Errorf("parentPreferences = %v", resp.ParentPreferences)
	}

	want := []struct {
		userID string
		score  int
	}{
		{brunoID, 30},
		{annaID, 10},
		{carlaID, 10},
		{dinoID, 0},
	}
	if len(resp.Winners) != len(want) {
		t.Fatalf("got %d winners, want %d", len(resp.Winners), len(want))
	}
	for i, w := range want {
		got := resp.Winners[i]
		if got.UserID != w.userID || got.Score != w.score {
			t.Errorf("winners[%d] = %s/%d, want %s/%d", i, got.UserID, got.Score, w.userID, w.score)
		}
		if got.User.ID != got.UserID || got.User.Role != "" {
			t.Errorf("winners[%d].user = %+v", i, got.User)
		}
		if got.OrderMatches == nil {
			t.Errorf("winners[%d].orderMatches is null", i)
		}
	}

	annaRow := resp.Winners[1]
	wantOrder := []fantanome.OrderMatch{
		{Name: "Marco", GuessedPosition: 0, ActualPosition: 1},
		{Name: "Luca", GuessedPosition: 1, ActualPosition: 0},
	}
	if !slices.Equal(annaRow.OrderMatches, wantOrder) {
		t.Errorf("anna orderMatches = %+v, want %+v", annaRow.OrderMatches, wantOrder)
	}
	if annaRow.ExactMatches != 0 {
		t.Errorf("anna exactMatches = %d", annaRow.ExactMatches)
	}
	if !slices.Equal(resp.Winners[0].GuessedNames, []string{"luca", "MARCO", "Giulia"}) {
		t.Errorf("guessedNames = %v, want as submitted", resp.Winners[0].GuessedNames)
	}
}

func TestVictoryRevealBoundaryInclusive(t *testing.T) {
	env := newTestEnv(t)
	mum, _ := env.register("mum@example.com", "parent")
	kid, _ := env.register("kid@example.com", "participant")

	reveal := env.clock.Now().Add(time.Minute)
	g := env.createGame(mum, "Game", &reveal)
	env.join(kid, g.InviteCode)
	env.submit(mum, g.ID, "Luca")

	env.clock.Advance(time.Minute - time.Nanosecond)
	env.expect(env.do(http.MethodGet, victoryPath(g.ID), kid, nil), http.StatusForbidden, nil)

	env.clock.Advance(time.Nanosecond)
	var resp VictoryResponse
	env.expect(env.do(http.MethodGet, victoryPath(g.ID), kid, nil), http.StatusOK, &resp)
	if !resp.GameRevealed {
		t.Error("results should be revealed at exactly the reveal time")
	}
}
