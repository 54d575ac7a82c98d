// Package session carries a one-shot flash message across a redirect in a
// signed cookie. Nothing is stored on the server.
//
// The cookie value is an HS256 JWT. The signature makes the payload tamper
// evident but it is not encrypted: clients can read their own flash. A
// cookie that fails verification is treated as an empty session.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/todo-app/internal/platform/logger"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

const issuer = "todo-app"

// ErrInvalidSession is returned by Decode for tokens that are malformed,
// unsigned, signed with another key, or carry an unknown flash kind.
var ErrInvalidSession = errors.New("invalid session token")

// Kind classifies a flash message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSuccess || k == KindError
}

// Flash is a notification shown once on the next page render.
type Flash struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Session is the decoded cookie payload. It holds at most one flash. The
// zero value is an empty session.
type Session struct {
	flash *Flash
}

// WithFlash returns a session whose flash is replaced by kind and message.
func (s Session) WithFlash(kind Kind, message string) Session {
	return Session{flash: &Flash{Kind: kind, Message: message}}
}

// TakeFlash returns a session without a flash along with the flash that was
// removed, or nil if there was none.
func (s Session) TakeFlash() (Session, *Flash) {
	return Session{}, s.flash
}

// Flash returns the pending flash without removing it.
func (s Session) Flash() *Flash {
	return s.flash
}

// IsEmpty reports whether the session carries nothing.
func (s Session) IsEmpty() bool {
	return s.flash == nil
}

// Config configures a Manager.
type Config struct {
	Secret     string
	CookieName string
	Secure     bool
}

// Manager encodes sessions into cookies and back.
type Manager struct {
	signingKey []byte
	cookieName string
	secure     bool
	timeFunc   func() time.Time
}

type sessionClaims struct {
	Flash *Flash `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", MinSecretLength)
	}
	if cfg.CookieName == "" {
		return nil, errors.New("session cookie name must not be empty")
	}
	return &Manager{
		signingKey: []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		timeFunc:   time.Now,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Encode signs s into a token.
func (m *Manager) Encode(s Session) (string, error) {
	claims := sessionClaims{
		Flash: s.flash,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(m.timeFunc()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns the session it carries.
func (m *Manager) Decode(token string) (Session, error) {
	now := m.timeFunc()
	parsed, err := jwt.ParseWithClaims(
		token,
		&sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Session{}, ErrInvalidSession
	}
	if claims.Flash != nil && !claims.Flash.Kind.Valid() {
		return Session{}, fmt.Errorf("%w: unknown flash kind %q", ErrInvalidSession, claims.Flash.Kind)
	}
	return Session{flash: claims.Flash}, nil
}

// Load reads the session from r. A missing or invalid cookie yields an
// empty session.
func (m *Manager) Load(r *http.Request) Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return Session{}
	}

	s, err := m.Decode(cookie.Value)
	if err != nil {
		logger.FromContext(r.Context()).Debug("discarding session cookie", "error", err)
		return Session{}
	}
	return s
}

// Save writes s as the session cookie. An empty session expires the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s Session) error {
	cookie := &http.Cookie{
		Name:     m.cookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}

	if s.IsEmpty() {
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
		return nil
	}

	value, err := m.Encode(s)
	if err != nil {
		logger.FromContext(ctx).Error("failed to encode session", "error", err)
		return err
	}
	cookie.Value = value
	http.SetCookie(w, cookie)
	return nil
}
