package puzzle

import "strings"

// Fill is one filled-in square of the shared game state: the letter and the
// player who last wrote it. An empty Letter means the square is blank.
type Fill struct {
	Letter string `json:"letter,omitempty"`
	Player string `json:"player,omitempty"`
}

// State is a snapshot of the shared game state, keyed by square. The core
// only ever reads it; changes flow back to the owning store as Effects.
type State map[Square]Fill

// Effect is the single letter change a reduced input event asks the store
// to apply. An empty Value clears the square.
type Effect struct {
	Square Square `json:"square"`
	Value  string `json:"value"`
}

// WordString renders the letters currently filled along the clue's word, in
// footprint order. Blank squares contribute nothing, which matches what the
// input widget shows for a partially solved word.
func WordString(c Clue, st State) string {
	var b strings.Builder
	for _, sq := range c.Squares() {
		b.WriteString(st[sq].Letter)
	}
	return b.String()
}
