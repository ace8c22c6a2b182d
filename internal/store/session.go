// Package store keeps puzzles and solving sessions: an in-memory working
// set guarded by mutexes, optionally written through to SQLite so a restart
// does not lose games in progress.
package store

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"crosspad/internal/puzzle"
)

// Player is one participant in a session.
type Player struct {
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// playerColors is the palette assigned to players in join order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

// Session is one collaborative solve of a puzzle. The fill state and player
// list are guarded by mu; the puzzle index is immutable and shared.
type Session struct {
	ID        string
	PuzzleID  string
	CreatedAt time.Time

	idx      *puzzle.Index
	passHash []byte

	mu      sync.Mutex
	players map[string]*Player
	fills   puzzle.State
	solved  bool
}

// Snapshot is a point-in-time copy of a session, safe to hold and serialize
// after the session moves on.
type Snapshot struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	CreatedAt time.Time          `json:"created_at"`
	Players   map[string]*Player `json:"players"`
	Fills     puzzle.State       `json:"fills"`
	Solved    bool               `json:"solved"`
	Protected bool               `json:"protected"`
}

// Index returns the square-to-word index for the session's puzzle.
func (s *Session) Index() *puzzle.Index {
	return s.idx
}

// Protected reports whether joining requires a password.
func (s *Session) Protected() bool {
	return len(s.passHash) > 0
}

// Authorize checks a join password against the session's hash. Sessions
// created without a password accept anything.
func (s *Session) Authorize(password string) error {
	if len(s.passHash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(s.passHash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// AddPlayer registers a player and returns them. A returning player keeps
// their original color.
func (s *Session) AddPlayer(name string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[name]; ok {
		return p
	}

	p := &Player{
		Name:     name,
		Color:    playerColors[len(s.players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	s.players[name] = p
	return p
}

// RemovePlayer drops a player from the session.
func (s *Session) RemovePlayer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, name)
}

// Player looks up a player by name, or nil if they never joined.
func (s *Session) Player(name string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[name]
}

// Reduce runs the input reducer against the current fill state.
func (s *Session) Reduce(cur puzzle.Cursor, prev, next string) (puzzle.Cursor, *puzzle.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Reduce(cur, prev, next, s.fills)
}

// Apply writes one effect into the fill state on behalf of player. Letters
// are stored upper-case; an empty value clears the square. changed is false
// when the effect targets a blocked square or repeats what is already
// there, and solvedNow is true only on the move that completes the puzzle.
// The solved flag latches: later edits never unset it.
func (s *Session) Apply(eff puzzle.Effect, player string) (changed, solvedNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.idx.WordsAt(eff.Square)) == 0 {
		return false, false
	}

	if eff.Value == "" {
		if _, ok := s.fills[eff.Square]; !ok {
			return false, false
		}
		delete(s.fills, eff.Square)
	} else {
		next := puzzle.Fill{Letter: strings.ToUpper(eff.Value), Player: player}
		if s.fills[eff.Square] == next {
			return false, false
		}
		s.fills[eff.Square] = next
	}

	if !s.solved && s.idx.Complete(s.fills) {
		s.solved = true
		return true, true
	}
	return true, false
}

// Snapshot returns a deep copy of the session's shared state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make(map[string]*Player, len(s.players))
	for name, p := range s.players {
		cp := *p
		players[name] = &cp
	}
	fills := make(puzzle.State, len(s.fills))
	for sq, f := range s.fills {
		fills[sq] = f
	}
	return Snapshot{
		ID:        s.ID,
		PuzzleID:  s.PuzzleID,
		CreatedAt: s.CreatedAt,
		Players:   players,
		Fills:     fills,
		Solved:    s.solved,
		Protected: len(s.passHash) > 0,
	}
}
