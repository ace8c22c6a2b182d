package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"crosspad/internal/puzzle"
)

// schema is applied on every open. Rows are keyed by the same IDs and
// square keys the in-memory maps use; puzzles are stored whole as JSON
// documents since they never change after upload.
const schema = `
CREATE TABLE IF NOT EXISTS puzzles (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	doc        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	puzzle_id  TEXT NOT NULL REFERENCES puzzles(id),
	pass_hash  BLOB,
	solved     INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS players (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	name       TEXT NOT NULL,
	color      TEXT NOT NULL,
	joined_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (session_id, name)
);
CREATE TABLE IF NOT EXISTS fills (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	square     TEXT NOT NULL,
	letter     TEXT NOT NULL,
	player     TEXT NOT NULL,
	PRIMARY KEY (session_id, square)
);
`

// Open opens, creating if missing, the SQLite database at path with WAL
// journaling and a busy timeout, and applies the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// Load hydrates the store from its database: puzzles first so sessions can
// pick up their indexes, then players and fills. Call it once at startup,
// before the store is shared.
func (s *Store) Load(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.loadPuzzles(ctx); err != nil {
		return err
	}
	if err := s.loadSessions(ctx); err != nil {
		return err
	}
	if err := s.loadPlayers(ctx); err != nil {
		return err
	}
	return s.loadFills(ctx)
}

func (s *Store) loadPuzzles(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, doc FROM puzzles`)
	if err != nil {
		return fmt.Errorf("load puzzles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		var doc string
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &doc); err != nil {
			return fmt.Errorf("scan puzzle: %w", err)
		}
		if err := json.Unmarshal([]byte(doc), &rec.Puzzle); err != nil {
			return fmt.Errorf("decode puzzle %s: %w", rec.ID, err)
		}
		s.puzzles[rec.ID] = &rec
		s.indexes[rec.ID] = puzzle.NewIndex(&rec.Puzzle)
	}
	return rows.Err()
}

func (s *Store) loadSessions(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, puzzle_id, pass_hash, solved, created_at FROM sessions`)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sess := &Session{
			players: make(map[string]*Player),
			fills:   make(puzzle.State),
		}
		if err := rows.Scan(&sess.ID, &sess.PuzzleID, &sess.passHash, &sess.solved, &sess.CreatedAt); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		sess.idx = s.indexes[sess.PuzzleID]
		s.sessions[sess.ID] = sess
	}
	return rows.Err()
}

func (s *Store) loadPlayers(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, name, color, joined_at FROM players`)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid string
		p := &Player{}
		if err := rows.Scan(&sid, &p.Name, &p.Color, &p.JoinedAt); err != nil {
			return fmt.Errorf("scan player: %w", err)
		}
		if sess := s.sessions[sid]; sess != nil {
			sess.players[p.Name] = p
		}
	}
	return rows.Err()
}

func (s *Store) loadFills(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, square, letter, player FROM fills`)
	if err != nil {
		return fmt.Errorf("load fills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid, key, letter, player string
		if err := rows.Scan(&sid, &key, &letter, &player); err != nil {
			return fmt.Errorf("scan fill: %w", err)
		}
		var sq puzzle.Square
		if err := sq.UnmarshalText([]byte(key)); err != nil {
			return fmt.Errorf("fill for session %s: %w", sid, err)
		}
		if sess := s.sessions[sid]; sess != nil {
			sess.fills[sq] = puzzle.Fill{Letter: letter, Player: player}
		}
	}
	return rows.Err()
}

func (s *Store) insertPuzzle(ctx context.Context, rec *Record) error {
	if s.db == nil {
		return nil
	}
	doc, err := json.Marshal(rec.Puzzle)
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO puzzles (id, created_at, doc) VALUES (?, ?, ?)`,
		rec.ID, rec.CreatedAt, string(doc),
	); err != nil {
		return fmt.Errorf("insert puzzle: %w", err)
	}
	return nil
}

func (s *Store) insertSession(ctx context.Context, sess *Session) error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, puzzle_id, pass_hash, solved, created_at) VALUES (?, ?, ?, 0, ?)`,
		sess.ID, sess.PuzzleID, sess.passHash, sess.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) upsertPlayer(ctx context.Context, sessionID string, p *Player) error {
	if s.db == nil {
		return nil
	}
	// A returning player keeps their original row.
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO players (session_id, name, color, joined_at) VALUES (?, ?, ?, ?)`,
		sessionID, p.Name, p.Color, p.JoinedAt,
	); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (s *Store) persistFill(ctx context.Context, sessionID string, eff puzzle.Effect, player string) error {
	if s.db == nil {
		return nil
	}
	if eff.Value == "" {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM fills WHERE session_id = ? AND square = ?`,
			sessionID, eff.Square.Key(),
		); err != nil {
			return fmt.Errorf("delete fill: %w", err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO fills (session_id, square, letter, player) VALUES (?, ?, ?, ?)`,
		sessionID, eff.Square.Key(), strings.ToUpper(eff.Value), player,
	); err != nil {
		return fmt.Errorf("upsert fill: %w", err)
	}
	return nil
}

func (s *Store) persistSolved(ctx context.Context, sessionID string) error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET solved = 1 WHERE id = ?`, sessionID,
	); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}
