package server

import (
	"log"
	"net/http"
	"time"

	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

// heartbeatInterval is how often an idle event stream sends a comment.
const heartbeatInterval = 25 * time.Second

// heartbeatFor returns the heartbeat period for a session TTL. Every
// heartbeat keeps the session alive, so an open page never expires.
func heartbeatFor(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl/2 < heartbeatInterval {
		return ttl / 2
	}
	return heartbeatInterval
}

// DocumentEvent is the payload of a "document" event: the freshly rendered
// preview and the form shape, so the page knows whether to reload the form.
type DocumentEvent struct {
	Version uint64 `json:"version"`
	Preview string `json:"preview"`
	Shape   string `json:"shape"`
}

// handleEvents streams a "document" event after every document or style
// change of the session, starting with the current state. Bursts of changes
// coalesce into one event carrying the latest state. An "expired" event ends
// the stream if the session was dropped anyway.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The stream outlives the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Printf("[SERVER] Cannot clear write deadline for event stream: %v", err)
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubscribeDoc := sess.Store.Subscribe(func(types.Document, uint64) { notify() })
	defer unsubscribeDoc()
	unsubscribeStyle := sess.SubscribeStyle(func(types.Style) { notify() })
	defer unsubscribeStyle()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	notify()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if !s.sessions.Touch(sess.ID) {
				sse.WriteEvent("expired", map[string]string{"error": ErrSessionExpired.Error()})
				return
			}
			if err := sse.WriteComment("ping"); err != nil {
				return
			}
		case <-changed:
			doc, version := sess.Store.Snapshot()
			event, err := s.documentEvent(doc, version, sess.Style())
			if err != nil {
				log.Printf("[SERVER] Failed to render preview for event stream: %v", err)
				sse.WriteError("failed to render preview")
				continue
			}
			if err := sse.WriteEvent("document", event); err != nil {
				return
			}
		}
	}
}

func (s *Server) documentEvent(doc types.Document, version uint64, style types.Style) (DocumentEvent, error) {
	preview, err := s.renderer.Preview(doc, style)
	if err != nil {
		return DocumentEvent{}, err
	}
	return DocumentEvent{
		Version: version,
		Preview: string(preview),
		Shape:   rendering.Shape(doc),
	}, nil
}
