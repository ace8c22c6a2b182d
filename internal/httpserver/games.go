package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"crosspad/internal/puzzle"
	"crosspad/internal/realtime"
	"crosspad/internal/store"
)

// gameView is the full session view sent on GET and on SSE connect.
type gameView struct {
	store.Snapshot
	Puzzle *store.Record `json:"puzzle"`
}

// cellUpdate is broadcast after every applied effect.
type cellUpdate struct {
	Square puzzle.Square `json:"square"`
	Value  string        `json:"value"`
	Player string        `json:"player"`
	Color  string        `json:"color,omitempty"`
}

// offGrid is where a cursor points before the player's first click.
var offGrid = puzzle.Square{Col: -1, Row: -1}

func cursorOrDefault(c *puzzle.Cursor) puzzle.Cursor {
	if c != nil {
		return *c
	}
	return puzzle.Cursor{Square: offGrid, Dir: puzzle.Across}
}

// POST /api/games — start a session on a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "a 'puzzle_id' field is required", http.StatusBadRequest)
		return
	}

	sess, err := s.store.CreateSession(r.Context(), req.PuzzleID, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "puzzle not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("create session")
		jsonError(w, "could not create the game", http.StatusInternalServerError)
		return
	}

	log.Info().Str("session", sess.ID).Str("puzzle", sess.PuzzleID).Msg("game created")
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// GET /api/games/{id} — session state plus its puzzle.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, gameView{
		Snapshot: sess.Snapshot(),
		Puzzle:   s.store.GetPuzzle(sess.PuzzleID),
	})
}

// POST /api/games/{id}/join — claim a seat and receive a player token.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "a 'name' field is required", http.StatusBadRequest)
		return
	}
	name := sanitizeName(req.Name)
	if name == "" {
		jsonError(w, "a 'name' field is required", http.StatusBadRequest)
		return
	}

	player, err := s.store.JoinSession(r.Context(), sess.ID, name, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrBadPassword) {
			jsonError(w, "wrong password", http.StatusForbidden)
			return
		}
		log.Error().Err(err).Msg("join session")
		jsonError(w, "could not join the game", http.StatusInternalServerError)
		return
	}

	token, err := s.signToken(sess.ID, player.Name)
	if err != nil {
		log.Error().Err(err).Msg("sign player token")
		jsonError(w, "could not join the game", http.StatusInternalServerError)
		return
	}

	s.rt.Publish(sess.ID, realtime.Event{Type: "player_joined", Data: player})

	writeJSON(w, http.StatusOK, struct {
		Player *store.Player `json:"player"`
		Token  string        `json:"token"`
	}{player, token})
}

// POST /api/games/{id}/click — resolve a pointer event to the next cursor.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Cursor *puzzle.Cursor `json:"cursor"`
		Square puzzle.Square  `json:"square"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid click payload", http.StatusBadRequest)
		return
	}

	idx := sess.Index()
	next := idx.Click(cursorOrDefault(req.Cursor), req.Square)

	resp := struct {
		Cursor puzzle.Cursor `json:"cursor"`
		Word   *puzzle.Clue  `json:"word,omitempty"`
	}{Cursor: next}
	if word, ok := idx.Selected(next); ok {
		resp.Word = &word
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/games/{id}/input — reduce a text-edit event, apply its effect.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	if !s.inputRL.allow(r.RemoteAddr) {
		jsonError(w, "too many requests, slow down", http.StatusTooManyRequests)
		return
	}

	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Cursor *puzzle.Cursor `json:"cursor"`
		Before string         `json:"before"`
		After  string         `json:"after"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid input payload", http.StatusBadRequest)
		return
	}

	moved, eff := sess.Reduce(cursorOrDefault(req.Cursor), req.Before, req.After)
	if eff != nil {
		if err := s.applyAndPublish(r.Context(), sess, *eff, playerFrom(r.Context())); err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("apply input effect")
			jsonError(w, "could not apply the edit", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Cursor puzzle.Cursor  `json:"cursor"`
		Effect *puzzle.Effect `json:"effect,omitempty"`
	}{moved, eff})
}

// POST /api/games/{id}/move — set or clear one square directly, no cursor
// logic. The grid view uses it for explicit erases.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.inputRL.allow(r.RemoteAddr) {
		jsonError(w, "too many requests, slow down", http.StatusTooManyRequests)
		return
	}

	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Square puzzle.Square `json:"square"`
		Value  string        `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid move payload", http.StatusBadRequest)
		return
	}

	// Empty erases; anything else must be a single letter A-Z.
	value := strings.ToUpper(strings.TrimSpace(req.Value))
	if value != "" && (utf8.RuneCountInString(value) != 1 || value < "A" || value > "Z") {
		jsonError(w, "value must be a single letter A-Z or empty", http.StatusBadRequest)
		return
	}
	if len(sess.Index().WordsAt(req.Square)) == 0 {
		jsonError(w, "square is not playable", http.StatusBadRequest)
		return
	}

	eff := puzzle.Effect{Square: req.Square, Value: value}
	if err := s.applyAndPublish(r.Context(), sess, eff, playerFrom(r.Context())); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("apply move")
		jsonError(w, "could not apply the move", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/games/{id}/events — the session's event stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.store.GetSession(chi.URLParam(r, "id"))
	if sess == nil {
		jsonError(w, "game not found", http.StatusNotFound)
		return
	}
	player := playerFrom(r.Context())

	s.rt.ServeSSE(w, r, sess.ID, func(c *realtime.Client) {
		// The fresh subscriber starts from a full view of the game.
		c.Send(realtime.Event{Type: "snapshot", Data: gameView{
			Snapshot: sess.Snapshot(),
			Puzzle:   s.store.GetPuzzle(sess.PuzzleID),
		}})
		s.rt.Publish(sess.ID, realtime.Event{Type: "player_online", Data: map[string]string{"name": player}})
	}, func() {
		s.rt.Publish(sess.ID, realtime.Event{Type: "player_offline", Data: map[string]string{"name": player}})
	})
}

// applyAndPublish writes one effect through the store and tells the
// session's subscribers about it, plus a solved event the first time the
// grid completes.
func (s *Server) applyAndPublish(ctx context.Context, sess *store.Session, eff puzzle.Effect, player string) error {
	changed, solvedNow, err := s.store.ApplyEffect(ctx, sess.ID, eff, player)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	var color string
	if p := sess.Player(player); p != nil {
		color = p.Color
	}
	s.rt.Publish(sess.ID, realtime.Event{Type: "cell_update", Data: cellUpdate{
		Square: eff.Square,
		Value:  strings.ToUpper(eff.Value),
		Player: player,
		Color:  color,
	}})

	if solvedNow {
		log.Info().Str("session", sess.ID).Str("player", player).Msg("puzzle solved")
		s.rt.Publish(sess.ID, realtime.Event{Type: "solved", Data: map[string]string{"by": player}})
	}
	return nil
}
