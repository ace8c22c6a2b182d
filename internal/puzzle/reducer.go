package puzzle

import "unicode"

// Reduce turns a text-edit event into its next cursor and, when warranted,
// a single-square Effect. prev and next are the input widget's value before
// and after the edit.
//
// Growing the value by exactly one letter writes that letter at the cursor
// and advances; any other edit (backspace, cut, typing over a selection)
// clears the cursor's square and retreats. Multi-rune growth, such as a
// paste, and non-letter input move nothing and write nothing. A square
// whose crossing words are already correct still moves the cursor but is
// never overwritten or cleared.
func (i *Index) Reduce(cur Cursor, prev, next string, st State) (Cursor, *Effect) {
	if i == nil {
		return cur, nil
	}
	before, after := []rune(prev), []rune(next)
	if len(after) > len(before) {
		if len(after) != len(before)+1 {
			return cur, nil
		}
		r := after[len(after)-1]
		if !unicode.IsLetter(r) {
			return cur, nil
		}
		moved := i.Advance(cur)
		if i.SquareCorrect(cur.Square, st) {
			return moved, nil
		}
		return moved, &Effect{Square: cur.Square, Value: string(r)}
	}
	moved := i.Retreat(cur)
	if i.SquareCorrect(cur.Square, st) {
		return moved, nil
	}
	return moved, &Effect{Square: cur.Square}
}
