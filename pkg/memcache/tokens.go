// pkg/memcache/tokens.go
package mem

import (
	"context"
	"sync"
	"time"
)

// TokenStore keeps short-lived single-use tokens, such as OAuth state.
type TokenStore interface {
	Set(ctx context.Context, token, value string, ttl time.Duration) error

	// Consume returns the value for token if not expired and removes the
	// token. Returns "" if missing or expired.
	Consume(ctx context.Context, token string) (string, error)
}

type entry struct {
	value     string
	expiresAt time.Time
}

type MemoryTokens struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *MemoryTokens) Set(_ context.Context, token, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.data[token] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryTokens) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok {
		return "", nil
	}
	delete(s.data, token) // single-use
	if s.now().After(e.expiresAt) {
		return "", nil
	}
	return e.value, nil
}

// sweep drops expired entries; caller holds mu.
func (s *MemoryTokens) sweep() {
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}
