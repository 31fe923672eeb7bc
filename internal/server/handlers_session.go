package server

import (
	"log"
	"net/http"

	"github.com/jonathan/cv-builder/internal/session"
)

// session resolves the caller's session from its cookie. A missing or
// invalid cookie starts a new session. A validly signed cookie whose session
// is gone yields ErrSessionExpired, so a page holding stale form state
// reloads instead of editing a fresh, empty document.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	return s.resolveSession(w, r, false)
}

// startSession is session for the page itself, which always starts over
// when its session has expired.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess, _ := s.resolveSession(w, r, true)
	return sess
}

func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request, restart bool) (*session.Session, error) {
	var sess *session.Session
	if c, err := r.Cookie(session.CookieName); err == nil {
		id, err := s.tokens.Parse(c.Value)
		switch {
		case err != nil:
			log.Printf("[SESSION] Ignoring cookie: %v", err)
		default:
			found, ok := s.sessions.Get(id)
			if ok {
				sess = found
			} else if !restart {
				if s.cfg.Verbose {
					log.Printf("[SESSION] Session %s expired", id)
				}
				return nil, ErrSessionExpired
			}
		}
	}
	if sess == nil {
		sess = s.sessions.Create()
		if s.cfg.Verbose {
			log.Printf("[SESSION] Started session %s", sess.ID)
		}
	}

	// A browser-session cookie; the registry alone decides expiry.
	token, err := s.tokens.Issue(sess.ID)
	if err != nil {
		log.Printf("[SESSION] Failed to issue cookie for %s: %v", sess.ID, err)
		return sess, nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return sess, nil
}
