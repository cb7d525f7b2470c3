package api

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore keeps the optional session token handed out at login. Tokens
// that parse as JWTs are dropped once their exp claim has passed; opaque
// tokens are kept as is. The signature is the server's business.
type TokenStore struct {
	mu    sync.Mutex
	path  string
	token string
	now   func() time.Time
}

// NewTokenStore loads a persisted token from path. An empty path keeps the
// token in memory only.
func NewTokenStore(path string) *TokenStore {
	ts := &TokenStore{path: path, now: time.Now}
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			ts.token = strings.TrimSpace(string(b))
		}
	}
	return ts
}

func (ts *TokenStore) Set(token string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = token
	if ts.path == "" {
		return nil
	}
	if token == "" {
		if err := os.Remove(ts.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(ts.path, []byte(token), 0o600)
}

// Get returns the token or "" when none is held or it expired.
func (ts *TokenStore) Get() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.token == "" {
		return ""
	}
	if exp, ok := expiry(ts.token); ok && !ts.now().Before(exp) {
		ts.token = ""
		if ts.path != "" {
			_ = os.Remove(ts.path)
		}
		return ""
	}
	return ts.token
}

func expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
