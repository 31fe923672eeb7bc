package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/session"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// maxBodyBytes caps request bodies; a whole document is far smaller.
const maxBodyBytes = 1 << 20

// handleGetDocument returns the document and its version.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, version := sess.Store.Snapshot()
	s.jsonResponse(w, http.StatusOK, types.DocumentResponse{Version: version, Document: doc})
}

// handleReplaceDocument imports a whole document after schema validation.
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
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
	if err := schemas.ValidateDocument(body); err != nil {
		s.writeError(w, err)
		return
	}

	var doc types.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	s.applyUpdate(w, sess, http.StatusOK, store.OpReplace, store.Replace(doc))
}

// handleUpdateScalar sets one top-level field.
func (s *Server) handleUpdateScalar(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	field, err := types.ParseScalarField(r.PathValue("field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.applyUpdate(w, sess, http.StatusOK, store.OpUpdateScalar, store.UpdateScalar(field, value))
}

// handleAppendEntry adds an empty entry to a collection.
func (s *Server) handleAppendEntry(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, err := types.ParseCollection(r.PathValue("collection"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.applyUpdate(w, sess, http.StatusCreated, store.OpAppend, store.Append(c))
}

// handleRemoveEntry deletes one entry of a collection.
func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, err := types.ParseCollection(r.PathValue("collection"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.applyUpdate(w, sess, http.StatusOK, store.OpRemove, store.Remove(c, index))
}

// handleUpdateEntry sets one field of one entry.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	c, err := types.ParseCollection(r.PathValue("collection"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := parseIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	field, err := c.ParseField(r.PathValue("field"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.applyUpdate(w, sess, http.StatusOK, store.OpUpdateEntry, store.UpdateEntry(c, index, field, value))
}

// applyUpdate runs one transform and answers with the resulting document.
// A failed transform leaves the document unchanged.
func (s *Server) applyUpdate(w http.ResponseWriter, sess *session.Session, status int, op store.Op, fn store.Transform) {
	if _, err := sess.Store.Update(op, fn); err != nil {
		s.writeError(w, err)
		return
	}
	doc, version := sess.Store.Snapshot()
	s.jsonResponse(w, status, types.DocumentResponse{Version: version, Document: doc})
}

// decodeValue reads a {"value": "..."} body.
func decodeValue(w http.ResponseWriter, r *http.Request) (string, error) {
	var req types.ValueRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return "", &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return "", &ErrValidation{Field: "value", Message: "value is required"}
	}
	return *req.Value, nil
}

// parseIndex reads the {index} path segment. Negative indices parse and are
// rejected by the store as out of range.
func parseIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: "index", Message: "invalid index " + strconv.Quote(raw)}
	}
	return index, nil
}
