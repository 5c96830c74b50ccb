package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fantanome/api/internal/database"
	"github.com/fantanome/api/internal/migrations"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func setupStore(t *testing.T, now func() time.Time) *SQLStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewSQLStore(db, now)
}

type testEnv struct {
	t      *testing.T
	clock  *fakeClock
	store  *SQLStore
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := newFakeClock()
	store := setupStore(t, clock.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewHandler(logger, Deps{
		Store:     store,
		Tokens:    NewTokenIssuer("test-secret", 24*time.Hour, NewMemoryRevoker(clock.Now), clock.Now),
		PublicURL: "https://fantanome.test",
		Now:       clock.Now,
	})
	return &testEnv{t: t, clock: clock, store: store, router: router}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) expect(w *httptest.ResponseRecorder, status int, dest any) {
	e.t.Helper()
	if w.Code != status {
		e.t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if dest != nil {
		if err := json.NewDecoder(w.Body).Decode(dest); err != nil {
			e.t.Fatalf("decoding response: %v", err)
		}
	}
}

// register creates a user and returns the bearer token and user id.
func (e *testEnv) register(email, role string) (token, userID string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:     email,
		Password:  "correct horse",
		FirstName: "Test",
		Role:      role,
	})
	var resp AuthResponse
	e.expect(w, http.StatusCreated, &resp)
	return resp.Token, resp.User.ID
}

func (e *testEnv) createGame(token, name string, revealAt *time.Time) GameResponse {
	e.t.Helper()
	var g GameResponse
	e.expect(e.do(http.MethodPost, "/api/games", token, GameRequest{Name: name, RevealAt: revealAt}), http.StatusCreated, &g)
	return g
}

func (e *testEnv) join(token, code string) GameResponse {
	e.t.Helper()
	var g GameResponse
	e.expect(e.do(http.MethodPost, "/api/games/join", token, JoinRequest{InviteCode: code}), http.StatusOK, &g)
	return g
}

func (e *testEnv) submit(token, gameID string, names ...string) SubmissionResponse {
	e.t.Helper()
	var s SubmissionResponse
	e.expect(e.do(http.MethodPut, "/api/games/"+gameID+"/submission", token, SubmissionRequest{Names: names}), http.StatusOK, &s)
	return s
}
