package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
)

// handleGetStyle returns the preview style.
func (s *Server) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Style())
}

// handleSetStyle changes the accent color and/or font. Omitted fields keep
// their value. The body is checked against the style schema first, so
// unknown keys and values are rejected with their field paths.
func (s *Server) handleSetStyle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := schemas.ValidateStyle(body); err != nil {
		s.writeError(w, err)
		return
	}

	var req types.StyleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, sess.SetStyle(req.Style()))
}
