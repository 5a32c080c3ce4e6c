// Package session keeps server-side login state keyed by an opaque id that the
// client carries in a signed cookie.
//
// A Store only persists sessions; the Manager owns the lifecycle: it loads the
// session for each request, establishes one on login and destroys it on logout.
// Sessions expire after the configured TTL and never outlive their store.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Store when the id is unknown or expired. It is
// not a failure; callers treat it as "no session".
var ErrNotFound = errors.New("session not found")

// idBytes is 256 bits of entropy.
const idBytes = 32

// Session is the state bound to one client.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session carries a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	// Save writes s, replacing any session with the same id. The store must
	// drop it once s.ExpiresAt passes.
	Save(ctx context.Context, s *Session) error
	// Destroy removes id. Destroying an unknown id is not an error.
	Destroy(ctx context.Context, id string) error
}

// NewID returns a random url-safe session id.
func NewID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
