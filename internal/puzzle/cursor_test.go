package puzzle

import "testing"

func TestClickKeepsDirectionOnNewSquare(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	prev := Cursor{Square: Square{Col: -1, Row: -1}, Dir: Across}
	got := idx.Click(prev, Square{})
	if got != (Cursor{Square: Square{}, Dir: Across}) {
		t.Fatalf("unexpected cursor: %+v", got)
	}
}

func TestClickSameSquareFlips(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	cur := Cursor{Square: Square{}, Dir: Across}
	cur = idx.Click(cur, Square{})
	if cur.Dir != Down {
		t.Fatalf("expected down after re-click, got %s", cur.Dir)
	}
	cur = idx.Click(cur, Square{})
	if cur.Dir != Across {
		t.Fatalf("expected across after the second re-click, got %s", cur.Dir)
	}

	// Re-clicking a square with no down word keeps the across direction.
	cur = Cursor{Square: Square{Col: 1, Row: 0}, Dir: Across}
	if got := idx.Click(cur, cur.Square); got.Dir != Across {
		t.Fatalf("expected across on a one-word square, got %s", got.Dir)
	}
}

func TestClickNormalizesDirection(t *testing.T) {
	idx := NewIndex(crossedPuzzle())

	// 0,1 only has a down word, so an across cursor arriving there turns.
	cur := idx.Click(Cursor{Square: Square{Col: 2, Row: 0}, Dir: Across}, Square{Col: 0, Row: 1})
	if cur != (Cursor{Square: Square{Col: 0, Row: 1}, Dir: Down}) {
		t.Fatalf("expected a down cursor at 0,1, got %+v", cur)
	}

	// Re-clicking it tries to flip across and normalizes back to down.
	cur = idx.Click(cur, Square{Col: 0, Row: 1})
	if cur.Dir != Down {
		t.Fatalf("expected down after re-clicking a one-word square, got %s", cur.Dir)
	}
}

func TestClickIgnoresBlockedSquares(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	cur := Cursor{Square: Square{Col: 1, Row: 0}, Dir: Across}
	if got := idx.Click(cur, Square{Col: 2, Row: 2}); got != cur {
		t.Fatalf("expected the cursor to stay, got %+v", got)
	}
	if got := idx.Click(cur, Square{Col: 9, Row: 9}); got != cur {
		t.Fatalf("expected the cursor to stay, got %+v", got)
	}
}

func TestClickDefaultsMissingDirection(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	got := idx.Click(Cursor{Square: Square{Col: -1, Row: -1}}, Square{Col: 1, Row: 0})
	if got.Dir != Across {
		t.Fatalf("expected across for a cursor with no direction, got %q", got.Dir)
	}
}

func TestAdvanceAlongWord(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	cur := Cursor{Square: Square{}, Dir: Across}
	cur = idx.Advance(cur)
	if cur != (Cursor{Square: Square{Col: 1, Row: 0}, Dir: Across}) {
		t.Fatalf("unexpected cursor after one advance: %+v", cur)
	}
	cur = idx.Advance(cur)
	if cur.Square != (Square{Col: 2, Row: 0}) {
		t.Fatalf("unexpected cursor after two advances: %+v", cur)
	}
}

func TestAdvanceStopsAtGridEdge(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	cur := Cursor{Square: Square{Col: 2, Row: 0}, Dir: Across}
	if got := idx.Advance(cur); got != cur {
		t.Fatalf("expected the cursor to stay on the last square, got %+v", got)
	}
}

func TestRetreatStopsAtWordStart(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	cur := Cursor{Square: Square{}, Dir: Down}
	if got := idx.Retreat(cur); got != cur {
		t.Fatalf("expected the cursor to stay on the first square, got %+v", got)
	}
}

func TestAdvanceThenRetreatRoundTrips(t *testing.T) {
	idx := NewIndex(crossedPuzzle())
	start := Cursor{Square: Square{Col: 0, Row: 1}, Dir: Down}
	if got := idx.Retreat(idx.Advance(start)); got != start {
		t.Fatalf("expected %+v, got %+v", start, got)
	}
}

func TestAdvanceTurnsAtColumnEnd(t *testing.T) {
	// A column word ending directly above a row word: advancing off the
	// column's last square lands on the row and turns across.
	p := &Puzzle{
		Size: 4,
		Grid: Grid{
			{Col: 0, Row: 0}: {Number: 1},
			{Col: 0, Row: 1}: {},
			{Col: 0, Row: 2}: {},
			{Col: 0, Row: 3}: {Number: 2},
			{Col: 1, Row: 3}: {},
		},
		Clues: []Clue{
			{Number: 1, Answer: "CAB", Row: 0, Col: 0, Dir: Down},
			{Number: 2, Answer: "AT", Row: 3, Col: 0, Dir: Across},
		},
	}
	idx := NewIndex(p)
	got := idx.Advance(Cursor{Square: Square{Col: 0, Row: 2}, Dir: Down})
	want := Cursor{Square: Square{Col: 0, Row: 3}, Dir: Across}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
