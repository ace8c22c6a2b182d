package puzzle

import "testing"

func TestWordString(t *testing.T) {
	down := crossedPuzzle().Clues[1]
	st := State{
		{Col: 0, Row: 0}: {Letter: "C"},
		{Col: 0, Row: 2}: {Letter: "R"},
	}
	// Blank squares contribute nothing.
	if got := WordString(down, st); got != "CR" {
		t.Fatalf("expected CR, got %q", got)
	}
	if got := WordString(Clue{}, st); got != "" {
		t.Fatalf("expected an empty word for the zero clue, got %q", got)
	}
}
