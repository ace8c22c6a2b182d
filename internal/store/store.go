package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"crosspad/internal/puzzle"
)

var (
	// ErrNotFound reports a puzzle or session ID the store does not know.
	ErrNotFound = errors.New("not found")
	// ErrBadPassword reports a failed join on a protected session.
	ErrBadPassword = errors.New("wrong password")
)

// Record is a stored puzzle with its bookkeeping.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	puzzle.Puzzle
}

// Store holds every puzzle and session. The maps are the working set; when
// a database is attached, writes go through to it as they happen so Load
// can rebuild the same state after a restart.
type Store struct {
	db *sql.DB

	mu       sync.RWMutex
	puzzles  map[string]*Record
	indexes  map[string]*puzzle.Index
	sessions map[string]*Session
}

// New creates a store backed by db. A nil db keeps everything in memory.
func New(db *sql.DB) *Store {
	return &Store{
		db:       db,
		puzzles:  make(map[string]*Record),
		indexes:  make(map[string]*puzzle.Index),
		sessions: make(map[string]*Session),
	}
}

// SavePuzzle validates p, assigns it an ID, builds its word index, and
// persists it.
func (s *Store) SavePuzzle(ctx context.Context, p *puzzle.Puzzle) (*Record, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid puzzle: %w", err)
	}

	rec := &Record{
		ID:        generateID(),
		CreatedAt: time.Now(),
		Puzzle:    *p,
	}
	if err := s.insertPuzzle(ctx, rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.puzzles[rec.ID] = rec
	s.indexes[rec.ID] = puzzle.NewIndex(&rec.Puzzle)
	s.mu.Unlock()

	return rec, nil
}

// GetPuzzle returns a puzzle by ID, or nil if not found.
func (s *Store) GetPuzzle(id string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzles[id]
}

// ListPuzzles returns all puzzles, most recent first.
func (s *Store) ListPuzzles() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Record, 0, len(s.puzzles))
	for _, rec := range s.puzzles {
		list = append(list, rec)
	}
	// Sort by CreatedAt descending (simple insertion, small N).
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].CreatedAt.After(list[j-1].CreatedAt); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
	return list
}

// Index returns the word index for a puzzle. The nil index returned for an
// unknown ID is safe to use and behaves as an empty puzzle.
func (s *Store) Index(puzzleID string) *puzzle.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexes[puzzleID]
}

// CreateSession starts a session on a puzzle. A non-empty password limits
// joining to players who present it.
func (s *Store) CreateSession(ctx context.Context, puzzleID, password string) (*Session, error) {
	s.mu.RLock()
	idx := s.indexes[puzzleID]
	s.mu.RUnlock()
	if idx == nil {
		return nil, fmt.Errorf("puzzle %s: %w", puzzleID, ErrNotFound)
	}

	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	sess := &Session{
		ID:        generateID(),
		PuzzleID:  puzzleID,
		CreatedAt: time.Now(),
		idx:       idx,
		passHash:  hash,
		players:   make(map[string]*Player),
		fills:     make(puzzle.State),
	}
	if err := s.insertSession(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

// GetSession returns a session by ID, or nil if not found.
func (s *Store) GetSession(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// ListSessions returns all sessions.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	return list
}

// JoinSession authorizes a player into a session and persists their seat.
func (s *Store) JoinSession(ctx context.Context, sessionID, name, password string) (*Player, error) {
	sess := s.GetSession(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err := sess.Authorize(password); err != nil {
		return nil, err
	}
	p := sess.AddPlayer(name)
	if err := s.upsertPlayer(ctx, sessionID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyEffect writes an effect into a session on behalf of player and
// persists the changed square. solvedNow is true only on the effect that
// completes the puzzle.
func (s *Store) ApplyEffect(ctx context.Context, sessionID string, eff puzzle.Effect, player string) (changed, solvedNow bool, err error) {
	sess := s.GetSession(sessionID)
	if sess == nil {
		return false, false, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	changed, solvedNow = sess.Apply(eff, player)
	if !changed {
		return false, false, nil
	}
	if err := s.persistFill(ctx, sessionID, eff, player); err != nil {
		return changed, solvedNow, err
	}
	if solvedNow {
		if err := s.persistSolved(ctx, sessionID); err != nil {
			return changed, solvedNow, err
		}
	}
	return changed, solvedNow, nil
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
