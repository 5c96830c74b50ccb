package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fantanome/api/internal/fantanome"
)

// timeLayout is fixed width so that stored timestamps sort lexically. It is
// only used for writing: the driver may hand values back as RFC 3339 with
// trailing zeros trimmed.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore implements Store on a libSQL database migrated by
// internal/migrations.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB, now func() time.Time) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: db, now: now}
}

func (s *SQLStore) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// --- users ---

func (s *SQLStore) CreateUser(ctx context.Context, u fantanome.User, passwordHash string) (fantanome.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	created := s.timestamp()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, passwordHash, u.FirstName, u.LastName, string(u.Role), created)
	if isUniqueViolation(err, "users.email") {
		return fantanome.User{}, fantanome.ErrConflict
	}
	if err != nil {
		return fantanome.User{}, fmt.Errorf("inserting user: %w", err)
	}
	u.CreatedAt, _ = parseTime(created)
	return u, nil
}

const userColumns = `id, email, first_name, last_name, role, created_at`

func scanUser(row interface{ Scan(...any) error }, extra ...any) (fantanome.User, error) {
	var (
		u       fantanome.User
		role    string
		created string
	)
	dest := append([]any{&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, fantanome.ErrNotFound
		}
		return u, err
	}
	u.Role = fantanome.Role(role)
	t, err := parseTime(created)
	if err != nil {
		return u, fmt.Errorf("parsing user created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}

func (s *SQLStore) UserByEmail(ctx context.Context, email string) (fantanome.User, string, error) {
	var hash string
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	u, err := scanUser(row, &hash)
	if err != nil {
		return fantanome.User{}, "", err
	}
	return u, hash, nil
}

func (s *SQLStore) UserByID(ctx context.Context, id string) (fantanome.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// --- games ---

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nameTaken(ctx context.Context, q queryer, ownerID, name, exceptID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM games WHERE owner_id = ? AND name_key = ? AND id != ?
	`, ownerID, fantanome.Normalize(name), exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking game name: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) CreateGame(ctx context.Context, ownerID string, in GameInput) (fantanome.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	taken, err := nameTaken(ctx, tx, ownerID, in.Name, "")
	if err != nil {
		return fantanome.Game{}, err
	}
	if taken {
		return fantanome.Game{}, fantanome.ErrConflict
	}

	id := uuid.NewString()
	created := s.timestamp()

	// Claiming the code and inserting the row is one statement, so a
	// concurrent create that picked the same code simply counts as taken.
	code, err := fantanome.UniqueInviteCode(ctx, func(ctx context.Context, code string) (bool, error) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO games (id, owner_id, name, name_key, description, invite_code, reveal_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, ownerID, in.Name, fantanome.Normalize(in.Name), in.Description, code, nullableTime(in.RevealAt), created)
		switch {
		case isUniqueViolation(err, "games.invite_code"):
			return true, nil
		case isUniqueViolation(err, "games.owner_id"), isUniqueViolation(err, "games.name_key"):
			return false, fantanome.ErrConflict
		case err != nil:
			return false, err
		}
		return false, nil
	})
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("creating game: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO game_participants (game_id, user_id, joined_at) VALUES (?, ?, ?)
	`, id, ownerID, created); err != nil {
		return fantanome.Game{}, fmt.Errorf("adding owner as participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fantanome.Game{}, fmt.Errorf("committing game: %w", err)
	}

	createdAt, _ := parseTime(created)
	return fantanome.Game{
		ID:             id,
		OwnerID:        ownerID,
		Name:           in.Name,
		Description:    in.Description,
		InviteCode:     code,
		RevealAt:       in.RevealAt,
		ParticipantIDs: []string{ownerID},
		CreatedAt:      createdAt,
	}, nil
}

func (s *SQLStore) GetGame(ctx context.Context, id string) (fantanome.Game, error) {
	var (
		g        fantanome.Game
		revealAt sql.NullString
		created  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, invite_code, reveal_at, created_at
		FROM games WHERE id = ?
	`, id).Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.InviteCode, &revealAt, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return fantanome.Game{}, fantanome.ErrNotFound
	}
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("loading game: %w", err)
	}

	if g.CreatedAt, err = parseTime(created); err != nil {
		return fantanome.Game{}, fmt.Errorf("parsing game created_at: %w", err)
	}
	if revealAt.Valid {
		t, err := parseTime(revealAt.String)
		if err != nil {
			return fantanome.Game{}, fmt.Errorf("parsing game reveal_at: %w", err)
		}
		g.RevealAt = &t
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM game_participants WHERE game_id = ? ORDER BY joined_at, rowid
	`, id)
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("loading participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return fantanome.Game{}, err
		}
		g.ParticipantIDs = append(g.ParticipantIDs, uid)
	}
	return g, rows.Err()
}

func (s *SQLStore) ListGamesForUser(ctx context.Context, userID string) ([]fantanome.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id
		FROM games g
		JOIN game_participants p ON p.game_id = g.id
		WHERE p.user_id = ?
		ORDER BY g.created_at DESC, g.rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	games := make([]fantanome.Game, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetGame(ctx, id)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *SQLStore) UpdateGame(ctx context.Context, id string, in GameInput) (fantanome.Game, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return fantanome.Game{}, err
	}

	taken, err := nameTaken(ctx, s.db, g.OwnerID, in.Name, id)
	if err != nil {
		return fantanome.Game{}, err
	}
	if taken {
		return fantanome.Game{}, fantanome.ErrConflict
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE games SET name = ?, name_key = ?, description = ?, reveal_at = ? WHERE id = ?
	`, in.Name, fantanome.Normalize(in.Name), in.Description, nullableTime(in.RevealAt), id)
	if isUniqueViolation(err, "games.owner_id") || isUniqueViolation(err, "games.name_key") {
		return fantanome.Game{}, fantanome.ErrConflict
	}
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("updating game: %w", err)
	}
	return s.GetGame(ctx, id)
}

func (s *SQLStore) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fantanome.ErrNotFound
	}
	return nil
}

func (s *SQLStore) RegenerateInviteCode(ctx context.Context, gameID string) (string, error) {
	code, err := fantanome.UniqueInviteCode(ctx, func(ctx context.Context, code string) (bool, error) {
		result, err := s.db.ExecContext(ctx,
			`UPDATE games SET invite_code = ? WHERE id = ?`, code, gameID)
		if isUniqueViolation(err, "games.invite_code") {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return false, fantanome.ErrNotFound
		}
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("regenerating invite code: %w", err)
	}
	return code, nil
}

func (s *SQLStore) JoinByInviteCode(ctx context.Context, code, userID string) (fantanome.Game, error) {
	var gameID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM games WHERE invite_code = ?`, code,
	).Scan(&gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return fantanome.Game{}, fantanome.ErrNotFound
	}
	if err != nil {
		return fantanome.Game{}, fmt.Errorf("looking up invite code: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO game_participants (game_id, user_id, joined_at) VALUES (?, ?, ?)
		ON CONFLICT (game_id, user_id) DO NOTHING
	`, gameID, userID, s.timestamp()); err != nil {
		return fantanome.Game{}, fmt.Errorf("joining game: %w", err)
	}
	return s.GetGame(ctx, gameID)
}

// --- submissions ---

func (s *SQLStore) SaveSubmission(ctx context.Context, sub fantanome.Submission) (fantanome.Submission, error) {
	names := sub.Names
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fantanome.Submission{}, err
	}
	ts := s.timestamp()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO name_submissions
			(id, game_id, submitter_id, role, is_parent_preference, names, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, submitter_id) DO UPDATE SET
			role = excluded.role,
			is_parent_preference = excluded.is_parent_preference,
			names = excluded.names,
			updated_at = excluded.updated_at
	`, uuid.NewString(), sub.GameID, sub.Submitter.ID, string(sub.Role), boolToInt(sub.IsParentPreference), string(data), ts, ts)
	if err != nil {
		return fantanome.Submission{}, fmt.Errorf("saving submission: %w", err)
	}
	return s.GetSubmission(ctx, sub.GameID, sub.Submitter.ID)
}

const submissionColumns = `
	s.id, s.game_id, s.role, s.is_parent_preference, s.names, s.created_at, s.updated_at,
	u.id, u.email, u.first_name, u.last_name, u.role, u.created_at`

func scanSubmission(row interface{ Scan(...any) error }) (fantanome.Submission, error) {
	var (
		sub                           fantanome.Submission
		role, names, created, updated string
		userRole, userCreated         string
		isPref                        int
	)
	err := row.Scan(
		&sub.ID, &sub.GameID, &role, &isPref, &names, &created, &updated,
		&sub.Submitter.ID, &sub.Submitter.Email, &sub.Submitter.FirstName, &sub.Submitter.LastName,
		&userRole, &userCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, fantanome.ErrNotFound
	}
	if err != nil {
		return sub, err
	}

	sub.Role = fantanome.Role(role)
	sub.IsParentPreference = isPref != 0
	sub.Submitter.Role = fantanome.Role(userRole)
	if err := json.Unmarshal([]byte(names), &sub.Names); err != nil {
		return sub, fmt.Errorf("decoding names: %w", err)
	}
	if sub.CreatedAt, err = parseTime(created); err != nil {
		return sub, err
	}
	if sub.UpdatedAt, err = parseTime(updated); err != nil {
		return sub, err
	}
	if sub.Submitter.CreatedAt, err = parseTime(userCreated); err != nil {
		return sub, err
	}
	return sub, nil
}

func (s *SQLStore) GetSubmission(ctx context.Context, gameID, submitterID string) (fantanome.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+`
		FROM name_submissions s
		JOIN users u ON u.id = s.submitter_id
		WHERE s.game_id = ? AND s.submitter_id = ?
	`, gameID, submitterID)
	sub, err := scanSubmission(row)
	if err != nil && !errors.Is(err, fantanome.ErrNotFound) {
		return sub, fmt.Errorf("loading submission: %w", err)
	}
	return sub, err
}

func (s *SQLStore) ListSubmissions(ctx context.Context, gameID string) ([]fantanome.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM name_submissions s
		JOIN users u ON u.id = s.submitter_id
		WHERE s.game_id = ?
		ORDER BY s.created_at, s.rowid
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	var subs []fantanome.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
