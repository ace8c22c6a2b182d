package puzzle

// Cursor is one player's position in the grid: the square they are on and
// the direction they are typing in. The zero value points at the origin
// going across; handlers pass an off-grid square for "no selection yet".
type Cursor struct {
	Square Square      `json:"square"`
	Dir    Orientation `json:"dir"`
}

// Click moves the cursor in response to a pointer event on sq. Clicking the
// square the cursor already occupies flips the typing direction; clicking
// anywhere else keeps it. Either way the direction is then normalized so it
// follows a word that actually runs through sq. Clicks on black or off-grid
// squares leave the cursor where it was.
func (i *Index) Click(prev Cursor, sq Square) Cursor {
	if i == nil || len(i.at[sq]) == 0 {
		return prev
	}
	dir := prev.Dir
	if !dir.Valid() {
		dir = Across
	}
	if sq == prev.Square {
		dir = dir.Other()
	}
	if !i.DirectionAllowed(sq, dir) {
		dir = dir.Other()
	}
	return Cursor{Square: sq, Dir: dir}
}

// Advance moves the cursor one square forward along its direction, as after
// typing a letter. At the end of a word's run it stays put rather than
// wrapping to another clue.
func (i *Index) Advance(cur Cursor) Cursor {
	return i.shift(cur, 1)
}

// Retreat moves the cursor one square backward along its direction, as
// after deleting a letter. At the start of a word's run it stays put.
func (i *Index) Retreat(cur Cursor) Cursor {
	return i.shift(cur, -1)
}

func (i *Index) shift(cur Cursor, delta int) Cursor {
	if i == nil {
		return cur
	}
	sq := cur.Square.step(cur.Dir, delta)
	if len(i.at[sq]) == 0 {
		return cur
	}
	dir := cur.Dir
	if !i.DirectionAllowed(sq, dir) {
		dir = dir.Other()
	}
	return Cursor{Square: sq, Dir: dir}
}
