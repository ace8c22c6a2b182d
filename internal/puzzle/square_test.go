package puzzle

import (
	"encoding/json"
	"testing"
)

func TestSquareKey(t *testing.T) {
	if got := (Square{Col: 4, Row: 11}).Key(); got != "4,11" {
		t.Fatalf("expected key 4,11, got %q", got)
	}
}

func TestSquareTextRoundTrip(t *testing.T) {
	var sq Square
	if err := sq.UnmarshalText([]byte("3,7")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq != (Square{Col: 3, Row: 7}) {
		t.Fatalf("unexpected square: %+v", sq)
	}
	for _, bad := range []string{"", "3", "3;7", "a,7", "3,b"} {
		if err := sq.UnmarshalText([]byte(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSquareKeysJSONMaps(t *testing.T) {
	fills := State{Square{Col: 1, Row: 2}: {Letter: "A", Player: "ada"}}
	data, err := json.Marshal(fills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"1,2":{"letter":"A","player":"ada"}}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back[Square{Col: 1, Row: 2}].Letter != "A" {
		t.Fatal("expected the decoded state to keep the fill")
	}
}
