package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
)

// handleExport renders the current preview to PDF and sends it as a download.
// The document is whatever the store holds when the request arrives.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, version := sess.Store.Snapshot()

	page, err := s.renderer.Page(doc, sess.Style(), version)
	if err != nil {
		s.writeError(w, err)
		return
	}
	markup, err := s.renderer.ExportMarkup(page)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.exporter.Export(r.Context(), markup)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		log.Printf("[EXPORT] Failed to send %s: %v", result.Filename, err)
	}
}
