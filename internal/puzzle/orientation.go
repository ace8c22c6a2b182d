package puzzle

// Orientation is the axis a word runs along. Modelling it as its own type
// keeps navigation code in terms of Other() instead of raw boolean flips.
type Orientation string

const (
	Across Orientation = "across"
	Down   Orientation = "down"
)

// Other returns the flipped orientation.
func (o Orientation) Other() Orientation {
	if o == Across {
		return Down
	}
	return Across
}

// Valid reports whether o is one of the two known orientations.
func (o Orientation) Valid() bool {
	return o == Across || o == Down
}
