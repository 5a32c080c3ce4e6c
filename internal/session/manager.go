package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"userauth/internal/logging"
)

// CookieName is the cookie carrying the signed session id.
const CookieName = "sid"

const contextKey = "session"

// Options configures a Manager.
type Options struct {
	TTL    time.Duration
	Secret string
	Secure bool
}

// Manager drives the session lifecycle on top of a Store.
type Manager struct {
	store  Store
	ttl    time.Duration
	secret []byte
	secure bool
	log    logging.Logger
	now    func() time.Time
}

func NewManager(store Store, opts Options, log logging.Logger) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:  store,
		ttl:    ttl,
		secret: []byte(opts.Secret),
		secure: opts.Secure,
		log:    log,
		now:    time.Now,
	}
}

// Middleware loads the client's session, if any, into the request context.
// It never rejects a request; gates decide what a missing session means.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s := m.load(c); s != nil {
				c.Set(contextKey, s)
			}
			return next(c)
		}
	}
}

func (m *Manager) load(c echo.Context) *Session {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, ok := m.unsign(cookie.Value)
	if !ok {
		return nil
	}
	s, err := m.store.Get(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn(c.Request().Context(), "load session", "error", err)
		}
		return nil
	}
	return s
}

// FromContext returns the session loaded for this request.
func FromContext(c echo.Context) (*Session, bool) {
	s, ok := c.Get(contextKey).(*Session)
	return s, ok && s != nil
}

// UserID returns the authenticated user of the request's session.
func UserID(c echo.Context) (uuid.UUID, bool) {
	s, ok := FromContext(c)
	if !ok || !s.Authenticated() {
		return uuid.Nil, false
	}
	return s.UserID, true
}

// Establish writes userID into the client's session, creating the session and
// its cookie when the client has none.
func (m *Manager) Establish(c echo.Context, userID uuid.UUID) (*Session, error) {
	now := m.now()

	var s Session
	if current, ok := FromContext(c); ok {
		s = *current
	} else {
		id, err := NewID()
		if err != nil {
			return nil, err
		}
		s = Session{ID: id, CreatedAt: now}
	}
	s.UserID = userID
	s.ExpiresAt = now.Add(m.ttl)

	if err := m.store.Save(c.Request().Context(), &s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    m.sign(s.ID),
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(contextKey, &s)
	return &s, nil
}

// Destroy removes the client's session from the store and clears its cookie.
// A store failure leaves the cookie untouched and is returned.
func (m *Manager) Destroy(c echo.Context) error {
	if s, ok := FromContext(c); ok {
		if err := m.store.Destroy(c.Request().Context(), s.ID); err != nil {
			return err
		}
	}
	c.Set(contextKey, nil)
	ClearCookie(c, CookieName, m.secure)
	return nil
}

// ClearCookie expires the named cookie on the client.
func ClearCookie(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) sign(id string) string {
	return id + "." + m.mac(id)
}

func (m *Manager) unsign(value string) (string, bool) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 {
		return "", false
	}
	id, sig := value[:i], value[i+1:]
	if !hmac.Equal([]byte(sig), []byte(m.mac(id))) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
