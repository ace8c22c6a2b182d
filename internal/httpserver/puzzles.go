package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"crosspad/internal/puzzle"
)

// POST /api/puzzles — store a puzzle supplied as JSON.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var p puzzle.Puzzle
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		jsonError(w, "invalid puzzle JSON", http.StatusBadRequest)
		return
	}

	rec, err := s.store.SavePuzzle(r.Context(), &p)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("puzzle", rec.ID).Int("clues", len(rec.Clues)).Msg("puzzle created")
	writeJSON(w, http.StatusCreated, rec)
}

// POST /api/puzzles/photo — upload a photo, extract a puzzle, store it.
func (s *Server) handleExtractPuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.extractRL.allow(r.RemoteAddr) {
		jsonError(w, "too many uploads, try again later", http.StatusTooManyRequests)
		return
	}
	if s.vision == nil {
		jsonError(w, "photo extraction is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "image too large (max 10 MB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "an 'image' form field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "JPEG or PNG only", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "could not read the image", http.StatusInternalServerError)
		return
	}

	p, err := s.vision.Extract(r.Context(), imageData, mimeType)
	if err != nil {
		log.Error().Err(err).Msg("photo extraction failed")
		jsonError(w, "could not read a puzzle from the photo", http.StatusInternalServerError)
		return
	}

	rec, err := s.store.SavePuzzle(r.Context(), p)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("puzzle", rec.ID).Int("clues", len(rec.Clues)).Msg("puzzle extracted from photo")
	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/puzzles — list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPuzzles())
}

// GET /api/puzzles/{id} — get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	rec := s.store.GetPuzzle(chi.URLParam(r, "id"))
	if rec == nil {
		jsonError(w, "puzzle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
