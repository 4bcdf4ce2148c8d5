package identity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type tokenMeta struct {
	DeviceID  string
	ExpiresAt time.Time
}

// TokenManager issues and validates opaque session tokens. A token is bound to
// a device ID, which keys the device-local cart snapshot across sign-in and
// sign-out within the same session.
type TokenManager struct {
	mu     sync.RWMutex
	tokens map[string]tokenMeta
	ttl    time.Duration
}

func NewTokenManager(ttl time.Duration) *TokenManager {
	return &TokenManager{
		tokens: make(map[string]tokenMeta),
		ttl:    ttl,
	}
}

// Issue creates a token for a fresh device ID.
func (m *TokenManager) Issue() (token, deviceID string) {
	token = uuid.NewString()
	deviceID = uuid.NewString()
	m.mu.Lock()
	m.tokens[token] = tokenMeta{
		DeviceID:  deviceID,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
	return token, deviceID
}

// Validate resolves the device ID behind a token. Expired tokens are dropped.
func (m *TokenManager) Validate(token string) (string, bool) {
	m.mu.RLock()
	meta, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(meta.ExpiresAt) {
		m.mu.Lock()
		delete(m.tokens, token)
		m.mu.Unlock()
		return "", false
	}
	return meta.DeviceID, true
}
