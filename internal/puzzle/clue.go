package puzzle

import "unicode/utf8"

// Clue is one crossword entry: its printed number, the prompt text, the
// answer, and the square its word starts on. The word's footprint is derived
// from the answer length and orientation, never stored.
type Clue struct {
	Number int         `json:"number"`
	Text   string      `json:"text"`
	Answer string      `json:"answer"`
	Row    int         `json:"row"`
	Col    int         `json:"col"`
	Dir    Orientation `json:"dir"`
}

// Start returns the first square of the clue's word.
func (c Clue) Start() Square {
	return Square{Col: c.Col, Row: c.Row}
}

// Len returns the word length in letters.
func (c Clue) Len() int {
	return utf8.RuneCountInString(c.Answer)
}

// Squares returns the word's footprint in order: one square per answer
// letter, advancing along the clue's axis from Start.
func (c Clue) Squares() []Square {
	out := make([]Square, 0, c.Len())
	sq := c.Start()
	for range c.Len() {
		out = append(out, sq)
		sq = sq.step(c.Dir, 1)
	}
	return out
}

// Contains reports whether sq lies on the clue's word. The zero Clue has an
// empty answer and contains no squares, which stands in for "no active word".
func (c Clue) Contains(sq Square) bool {
	n := c.Len()
	if c.Dir == Across {
		return n > 0 && sq.Row == c.Row && sq.Col >= c.Col && sq.Col < c.Col+n
	}
	return n > 0 && sq.Col == c.Col && sq.Row >= c.Row && sq.Row < c.Row+n
}
