package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// CookieName is the name of the session cookie.
const CookieName = "cv_session"

const keyInfo = "cv-builder session cookie v1"

// Claims identifies a session.
type Claims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session cookies. Tokens carry no expiry: the
// registry drops idle sessions, and an open page keeps its session alive
// for longer than any fixed token lifetime would allow.
type Tokens struct {
	key []byte
}

// NewTokens derives the HMAC key from secret. An empty secret yields a random
// key, which invalidates every cookie on restart; sessions are in-memory
// anyway.
func NewTokens(secret string) (*Tokens, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return &Tokens{key: key}, nil
}

// Issue returns a signed token for id.
func (t *Tokens) Issue(id uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the session id it carries.
func (t *Tokens) Parse(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, fmt.Errorf("session token is empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, fmt.Errorf("session token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return uuid.Nil, fmt.Errorf("malformed session token: %w", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, fmt.Errorf("invalid session token signature: %w", err)
		}
		return uuid.Nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !parsed.Valid || claims.SessionID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("session token is not valid")
	}
	return claims.SessionID, nil
}
