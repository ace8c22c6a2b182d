package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"crosspad/internal/puzzle"
)

// testPuzzle returns a 3x3 puzzle with CAT across and CAR down sharing
// their C at the origin.
func testPuzzle() *puzzle.Puzzle {
	g := puzzle.Grid{}
	for col := range 3 {
		g[puzzle.Square{Col: col, Row: 0}] = puzzle.Cell{}
	}
	for row := range 3 {
		g[puzzle.Square{Col: 0, Row: row}] = puzzle.Cell{}
	}
	g[puzzle.Square{}] = puzzle.Cell{Number: 1}
	return &puzzle.Puzzle{
		Title: "tiny",
		Size:  3,
		Grid:  g,
		Clues: []puzzle.Clue{
			{Number: 1, Text: "Feline pet", Answer: "CAT", Row: 0, Col: 0, Dir: puzzle.Across},
			{Number: 1, Text: "Road vehicle", Answer: "CAR", Row: 0, Col: 0, Dir: puzzle.Down},
		},
	}
}

func TestSaveAndGetPuzzle(t *testing.T) {
	s := New(nil)
	rec, err := s.SavePuzzle(context.Background(), testPuzzle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected the puzzle to have an ID")
	}
	if s.GetPuzzle(rec.ID) == nil {
		t.Fatal("expected to find the saved puzzle")
	}
	if s.GetPuzzle("nonexistent") != nil {
		t.Fatal("expected nil for an unknown ID")
	}
	if s.Index(rec.ID) == nil {
		t.Fatal("expected the puzzle to get an index")
	}
	if s.Index("nonexistent") != nil {
		t.Fatal("expected no index for an unknown ID")
	}
}

func TestSavePuzzleValidates(t *testing.T) {
	s := New(nil)
	p := testPuzzle()
	p.Clues[0].Answer = "CATS"
	if _, err := s.SavePuzzle(context.Background(), p); err == nil {
		t.Fatal("expected an invalid puzzle to be rejected")
	}
}

func TestListPuzzles(t *testing.T) {
	s := New(nil)
	s.SavePuzzle(context.Background(), testPuzzle())
	s.SavePuzzle(context.Background(), testPuzzle())

	list := s.ListPuzzles()
	if len(list) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(list))
	}
	// Most recent first.
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected puzzles sorted by descending creation time")
	}
}

func TestCreateSession(t *testing.T) {
	s := New(nil)

	// Error on unknown puzzle.
	if _, err := s.CreateSession(context.Background(), "unknown", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, err := s.CreateSession(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.PuzzleID != rec.ID {
		t.Fatal("session should reference the puzzle")
	}
	if s.GetSession(sess.ID) == nil {
		t.Fatal("expected to find the session")
	}
	if sess.Protected() {
		t.Fatal("expected an open session without a password")
	}
}

func TestJoinSession(t *testing.T) {
	s := New(nil)
	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, _ := s.CreateSession(context.Background(), rec.ID, "sesame")

	if _, err := s.JoinSession(context.Background(), "unknown", "ada", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.JoinSession(context.Background(), sess.ID, "ada", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}

	p1, err := s.JoinSession(context.Background(), sess.ID, "ada", "sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, _ := s.JoinSession(context.Background(), sess.ID, "bob", "sesame")
	if p1.Color == p2.Color {
		t.Fatal("players should have different colors")
	}

	// Rejoining with the same name returns the existing player.
	again, _ := s.JoinSession(context.Background(), sess.ID, "ada", "sesame")
	if again.Color != p1.Color {
		t.Fatal("the same name should keep the same player")
	}
}

func TestApplyEffect(t *testing.T) {
	s := New(nil)
	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, _ := s.CreateSession(context.Background(), rec.ID, "")
	sq := puzzle.Square{Col: 1, Row: 0}

	changed, _, err := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq, Value: "a"}, "ada")
	if err != nil || !changed {
		t.Fatalf("expected a write, got changed=%v err=%v", changed, err)
	}
	snap := sess.Snapshot()
	if snap.Fills[sq] != (puzzle.Fill{Letter: "A", Player: "ada"}) {
		t.Fatalf("expected an upper-case attributed fill, got %+v", snap.Fills[sq])
	}

	// Repeating the same write changes nothing.
	if changed, _, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq, Value: "A"}, "ada"); changed {
		t.Fatal("expected a repeated write to be a no-op")
	}
	// The same letter from another player still changes attribution.
	if changed, _, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq, Value: "A"}, "bob"); !changed {
		t.Fatal("expected a different player's write to count")
	}

	// Clearing removes the fill entirely.
	if changed, _, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq}, "ada"); !changed {
		t.Fatal("expected the clear to count")
	}
	if _, ok := sess.Snapshot().Fills[sq]; ok {
		t.Fatal("expected the square to be blank")
	}
	if changed, _, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq}, "ada"); changed {
		t.Fatal("expected clearing a blank square to be a no-op")
	}

	// Blocked squares reject writes.
	if changed, _, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: puzzle.Square{Col: 2, Row: 2}, Value: "x"}, "ada"); changed {
		t.Fatal("expected a blocked square to reject the write")
	}
}

func TestApplySolvedLatch(t *testing.T) {
	s := New(nil)
	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, _ := s.CreateSession(context.Background(), rec.ID, "")

	fills := []struct {
		sq puzzle.Square
		v  string
	}{
		{puzzle.Square{Col: 0, Row: 0}, "c"},
		{puzzle.Square{Col: 1, Row: 0}, "a"},
		{puzzle.Square{Col: 2, Row: 0}, "t"},
		{puzzle.Square{Col: 0, Row: 1}, "a"},
	}
	for _, f := range fills {
		if _, solvedNow, err := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: f.sq, Value: f.v}, "ada"); err != nil || solvedNow {
			t.Fatalf("unexpected result before the last letter: solved=%v err=%v", solvedNow, err)
		}
	}

	changed, solvedNow, err := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: puzzle.Square{Col: 0, Row: 2}, Value: "r"}, "bob")
	if err != nil || !changed || !solvedNow {
		t.Fatalf("expected the last letter to solve the puzzle, got changed=%v solved=%v err=%v", changed, solvedNow, err)
	}

	// The flag latches: clearing a square afterwards does not unsolve.
	if _, solvedNow, _ := s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: puzzle.Square{Col: 0, Row: 2}}, "bob"); solvedNow {
		t.Fatal("expected solvedNow only on the completing move")
	}
	if !sess.Snapshot().Solved {
		t.Fatal("expected the session to stay solved")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New(nil)
	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, _ := s.CreateSession(context.Background(), rec.ID, "")
	sq := puzzle.Square{Col: 0, Row: 0}
	s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq, Value: "c"}, "ada")
	sess.AddPlayer("ada")

	snap := sess.Snapshot()
	snap.Fills[sq] = puzzle.Fill{Letter: "Z"}
	snap.Players["ada"].Color = "#000000"

	fresh := sess.Snapshot()
	if fresh.Fills[sq].Letter != "C" {
		t.Fatal("Snapshot should return a copy of the fills")
	}
	if fresh.Players["ada"].Color == "#000000" {
		t.Fatal("Snapshot should return a copy of the players")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(nil)
	rec, _ := s.SavePuzzle(context.Background(), testPuzzle())
	sess, _ := s.CreateSession(context.Background(), rec.ID, "")

	squares := []puzzle.Square{
		{Col: 0, Row: 0}, {Col: 1, Row: 0}, {Col: 2, Row: 0},
		{Col: 0, Row: 1}, {Col: 0, Row: 2},
	}
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sq := squares[i%len(squares)]
			s.ApplyEffect(context.Background(), sess.ID, puzzle.Effect{Square: sq, Value: "a"}, "ada")
			sess.Snapshot()
			sess.AddPlayer("player" + string(rune('A'+i%26)))
		}(i)
	}
	wg.Wait()
}
