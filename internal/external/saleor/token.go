package saleor

import "sync"

// TokenStore holds the API token used for authenticated calls. Saleor
// delivers a fresh app token through the register endpoint at install time,
// so the token can change while the process is running.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore creates a store seeded with the configured token, which may
// be empty until Saleor registers the app.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

func (s *TokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
