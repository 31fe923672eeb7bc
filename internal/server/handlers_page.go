package server

import (
	"log"
	"net/http"
)

// handlePage renders the full page: form and preview side by side.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.startSession(w, r)
	doc, version := sess.Store.Snapshot()

	page, err := s.renderer.Page(doc, sess.Style(), version)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.htmlResponse(w, page)
}

// handlePreview renders the preview fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.renderer.Preview(sess.Store.Document(), sess.Style())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.htmlResponse(w, out)
}

// handleForm renders the form fragment. The page swaps it in after an entry
// is added or removed.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.renderer.Form(sess.Store.Document())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.htmlResponse(w, out)
}

// htmlResponse writes rendered HTML
func (s *Server) htmlResponse(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
