package puzzle

// Index answers "which words cover this square" in constant time. It is
// built once per puzzle and never mutated afterwards, so concurrent readers
// need no locking; a new puzzle simply gets a new Index.
//
// All methods tolerate a nil receiver and return zero values, so callers
// holding no puzzle (a session still waiting on grid extraction) can use an
// Index without guarding every call site.
type Index struct {
	puzzle *Puzzle
	at     map[Square][]Clue
}

// NewIndex builds the square-to-words lookup for p. The per-square clue
// order follows p.Clues, so across entries come first when the puzzle lists
// them first.
func NewIndex(p *Puzzle) *Index {
	idx := &Index{puzzle: p, at: make(map[Square][]Clue)}
	for _, c := range p.Clues {
		for _, sq := range c.Squares() {
			idx.at[sq] = append(idx.at[sq], c)
		}
	}
	return idx
}

// Puzzle returns the indexed puzzle, or nil for a nil Index.
func (i *Index) Puzzle() *Puzzle {
	if i == nil {
		return nil
	}
	return i.puzzle
}

// WordsAt returns every clue whose word covers sq. Squares outside the
// playable grid have no words.
func (i *Index) WordsAt(sq Square) []Clue {
	if i == nil {
		return nil
	}
	return i.at[sq]
}

// Selected resolves the cursor to the word it sits on, matching both the
// square and the orientation. ok is false when no word runs through
// cur.Square in cur.Dir.
func (i *Index) Selected(cur Cursor) (Clue, bool) {
	if i == nil {
		return Clue{}, false
	}
	for _, c := range i.at[cur.Square] {
		if c.Dir == cur.Dir {
			return c, true
		}
	}
	return Clue{}, false
}

// DirectionAllowed reports whether some word runs through sq in dir. A
// square inside a horizontal-only slot allows Across but not Down.
func (i *Index) DirectionAllowed(sq Square, dir Orientation) bool {
	if i == nil {
		return false
	}
	for _, c := range i.at[sq] {
		if c.Dir == dir {
			return true
		}
	}
	return false
}
