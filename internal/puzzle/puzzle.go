// Package puzzle implements the crossword logic core: grid geometry, the
// square-to-word index, cursor navigation, correctness evaluation, and the
// input reducer. Everything in this package is a pure computation over an
// immutable Puzzle and a caller-supplied state snapshot; it performs no I/O
// and holds no session state of its own.
package puzzle

import (
	"fmt"
	"unicode"
)

// Cell is one playable square of the grid. Number, when non-zero, is the
// clue number printed in the square.
type Cell struct {
	Number int `json:"number,omitempty"`
}

// Grid marks the playable squares of a puzzle. Squares absent from the map
// are blocked and can never hold a letter or a cursor.
type Grid map[Square]Cell

// Has reports whether sq is a playable square.
func (g Grid) Has(sq Square) bool {
	_, ok := g[sq]
	return ok
}

// Puzzle is a crossword definition: the playable grid, the clue list, and
// the grid's axis size. It is read-only for the lifetime of a solving
// session; loading a new puzzle means building a new Puzzle and a new Index.
type Puzzle struct {
	Title string `json:"title,omitempty"`
	Size  int    `json:"size"`
	Grid  Grid   `json:"grid"`
	Clues []Clue `json:"clues"`
}

// Validate checks the puzzle's structural invariants: answers are non-empty
// letter strings, every word footprint stays on playable squares inside the
// declared size, clue numbers match the grid, and crossing words agree on
// their shared letters.
func (p *Puzzle) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("grid size must be positive, got %d", p.Size)
	}
	crossing := make(map[Square]rune)
	for _, c := range p.Clues {
		if c.Number <= 0 {
			return fmt.Errorf("clue %q: number must be positive, got %d", c.Text, c.Number)
		}
		letters := []rune(c.Answer)
		if len(letters) == 0 {
			return fmt.Errorf("clue %d %s: empty answer", c.Number, c.Dir)
		}
		for _, r := range letters {
			if !unicode.IsLetter(r) {
				return fmt.Errorf("clue %d %s: answer %q contains non-letter %q", c.Number, c.Dir, c.Answer, r)
			}
		}
		if cell, ok := p.Grid[c.Start()]; !ok {
			return fmt.Errorf("clue %d %s: start square %s is not in the grid", c.Number, c.Dir, c.Start().Key())
		} else if cell.Number != c.Number {
			return fmt.Errorf("clue %d %s: grid square %s is numbered %d", c.Number, c.Dir, c.Start().Key(), cell.Number)
		}
		for i, sq := range c.Squares() {
			if sq.Col < 0 || sq.Col >= p.Size || sq.Row < 0 || sq.Row >= p.Size {
				return fmt.Errorf("clue %d %s: square %s is outside the %dx%d grid", c.Number, c.Dir, sq.Key(), p.Size, p.Size)
			}
			if !p.Grid.Has(sq) {
				return fmt.Errorf("clue %d %s: square %s is not playable", c.Number, c.Dir, sq.Key())
			}
			letter := unicode.ToLower(letters[i])
			if prev, ok := crossing[sq]; ok && prev != letter {
				return fmt.Errorf("clue %d %s: square %s needs %q but a crossing word needs %q", c.Number, c.Dir, sq.Key(), letter, prev)
			}
			crossing[sq] = letter
		}
	}
	return nil
}
