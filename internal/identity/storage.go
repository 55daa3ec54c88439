package identity

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie that carries (or points at) a browser's markers.
const SessionName = "almost-archive"

// NewSessionStore builds the gorilla session store. "filesystem" keeps the
// markers in dir and only the session id travels. "cookie" keeps every
// marker in the signed cookie itself; it stops saving once the encoded
// markers pass the 4096 byte cookie limit, so it only suits short-lived
// or test deployments.
func NewSessionStore(kind, secret, dir string) (sessions.Store, error) {
	opts := &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	switch kind {
	case "cookie":
		store := sessions.NewCookieStore([]byte(secret))
		store.Options = opts
		return store, nil
	case "filesystem":
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session dir: %w", err)
		}
		store := sessions.NewFilesystemStore(dir, []byte(secret))
		store.MaxLength(0)
		store.Options = opts
		return store, nil
	}
	return nil, fmt.Errorf("unknown session store %q", kind)
}

// SessionStorage adapts one request's session to Storage. Save writes the
// Set-Cookie header, so it must run before the response is written.
type SessionStorage struct {
	session *sessions.Session
	r       *http.Request
	w       http.ResponseWriter
}

func NewSessionStorage(session *sessions.Session, r *http.Request, w http.ResponseWriter) *SessionStorage {
	return &SessionStorage{session: session, r: r, w: w}
}

func (s *SessionStorage) Load(key string) (string, error) {
	v, ok := s.session.Values[key]
	if !ok {
		return "", nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("session value %s has type %T", key, v)
	}
	return str, nil
}

func (s *SessionStorage) Save(key, value string) error {
	s.session.Values[key] = value
	return s.session.Save(s.r, s.w)
}

// MemoryStorage is an in-process Storage, used by tests and tools.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	// FailSaves makes every Save return an error.
	FailSaves bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Load(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryStorage) Save(key, value string) error {
	if m.FailSaves {
		return fmt.Errorf("storage unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Put seeds a raw value, bypassing FailSaves.
func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}
