package puzzle

import "strings"

// WordCorrect reports whether the word for c is fully and correctly filled
// in st. Letters compare case-insensitively, so a lower-case fill matches
// an upper-case answer. A clue with no answer is never correct.
func WordCorrect(c Clue, st State) bool {
	want := []rune(c.Answer)
	if len(want) == 0 {
		return false
	}
	for k, sq := range c.Squares() {
		got := st[sq].Letter
		if got == "" || !strings.EqualFold(got, string(want[k])) {
			return false
		}
	}
	return true
}

// SquareCorrect reports whether any word running through sq is fully
// correct. A crossing letter counts as correct as soon as either of its
// words is solved; the reducer refuses to overwrite or clear such squares.
func (i *Index) SquareCorrect(sq Square, st State) bool {
	if i == nil {
		return false
	}
	for _, c := range i.at[sq] {
		if WordCorrect(c, st) {
			return true
		}
	}
	return false
}

// Complete reports whether every word in the puzzle is correct, which is
// the solved condition for a session. An Index without a puzzle, or a
// puzzle without clues, is never complete.
func (i *Index) Complete(st State) bool {
	if i == nil || i.puzzle == nil || len(i.puzzle.Clues) == 0 {
		return false
	}
	for _, c := range i.puzzle.Clues {
		if !WordCorrect(c, st) {
			return false
		}
	}
	return true
}
