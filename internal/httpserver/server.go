// Package httpserver exposes the puzzle and session APIs and serves the
// embedded frontend. Handlers stay thin: navigation and correctness
// decisions live in the puzzle core, shared state in the store, and fan-out
// in the realtime broadcaster.
package httpserver

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"crosspad/internal/realtime"
	"crosspad/internal/store"
	"crosspad/internal/vision"
)

//go:embed frontend
var frontendFS embed.FS

const maxUploadSize = 10 << 20 // 10 MB

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Server is the HTTP face of the service.
type Server struct {
	r      *chi.Mux
	store  *store.Store
	vision *vision.Client
	rt     *realtime.Broadcaster
	secret []byte

	extractRL *rateLimiter
	inputRL   *rateLimiter
}

// New wires middleware and routes. vc may be nil when photo extraction is
// not configured; secret signs player tokens and falls back to a dev value.
func New(st *store.Store, vc *vision.Client, secret []byte) *Server {
	if len(secret) == 0 {
		secret = []byte("dev_secret_change_me")
	}
	s := &Server{
		r:         chi.NewRouter(),
		store:     st,
		vision:    vc,
		rt:        realtime.NewBroadcaster(),
		secret:    secret,
		extractRL: newRateLimiter(5, time.Minute),  // 5 photo uploads/min per IP
		inputRL:   newRateLimiter(60, time.Second), // 60 edits/sec per IP
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(securityHeaders)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			g.Use(chimw.Timeout(60 * time.Second))

			g.Post("/puzzles", s.handleCreatePuzzle)
			g.Post("/puzzles/photo", s.handleExtractPuzzle)
			g.Get("/puzzles", s.handleListPuzzles)
			g.Get("/puzzles/{id}", s.handleGetPuzzle)

			g.Post("/games", s.handleCreateGame)
			g.Get("/games/{id}", s.handleGetGame)
			g.Post("/games/{id}/join", s.handleJoinGame)

			g.Group(func(p chi.Router) {
				p.Use(s.requirePlayer)
				p.Post("/games/{id}/click", s.handleClick)
				p.Post("/games/{id}/input", s.handleInput)
				p.Post("/games/{id}/move", s.handleMove)
			})
		})

		// The event stream outlives any request timeout.
		api.With(s.requirePlayer).Get("/games/{id}/events", s.handleEvents)
	})

	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.r.Get("/game/{id}", s.handleGamePage)
	s.r.Handle("/*", fileServer)
}

// ServeHTTP makes the server usable directly in tests and handlers.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// securityHeaders hardens every response against sniffing and framing.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// GET /game/{id} serves the solving page; the script fetches the session.
func (s *Server) handleGamePage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/game.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
