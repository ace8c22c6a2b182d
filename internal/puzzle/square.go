package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// Square identifies one grid cell by column and row. It is a value type:
// two squares are equal iff both coordinates match, so it can key maps
// directly.
type Square struct {
	Col int
	Row int
}

// Key returns the canonical string key for the square, "col,row". The same
// key addresses cursor lookups, the shared fill state, and persisted rows.
func (s Square) Key() string {
	return strconv.Itoa(s.Col) + "," + strconv.Itoa(s.Row)
}

// MarshalText encodes the square as its canonical key, so map[Square]T
// values and Square fields serialize as "col,row" in JSON.
func (s Square) MarshalText() ([]byte, error) {
	return []byte(s.Key()), nil
}

// UnmarshalText parses the canonical "col,row" form.
func (s *Square) UnmarshalText(text []byte) error {
	colPart, rowPart, ok := strings.Cut(string(text), ",")
	if !ok {
		return fmt.Errorf("square key %q: want \"col,row\"", text)
	}
	col, err := strconv.Atoi(colPart)
	if err != nil {
		return fmt.Errorf("square key %q: bad column: %w", text, err)
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil {
		return fmt.Errorf("square key %q: bad row: %w", text, err)
	}
	s.Col, s.Row = col, row
	return nil
}

// step returns the square one cell away along the orientation's axis.
// delta is +1 toward the end of a word and -1 toward its start.
func (s Square) step(dir Orientation, delta int) Square {
	if dir == Across {
		return Square{Col: s.Col + delta, Row: s.Row}
	}
	return Square{Col: s.Col, Row: s.Row + delta}
}
