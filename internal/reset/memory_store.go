package reset

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

// MemoryStore es un TokenStore de proceso único. Cada operación es una sola
// sección crítica y no hace I/O bajo el lock.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]*domain.ResetToken
	opts   options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]*domain.ResetToken),
		opts:   buildOptions(opts),
	}
}

func (s *MemoryStore) Issue(_ context.Context, in IssueInput) (string, error) {
	id, err := s.opts.newID()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.tokens[id]; dup {
		return "", fmt.Errorf("generate reset token: duplicate id")
	}
	s.tokens[id] = &domain.ResetToken{
		ID:          id,
		Email:       in.Email,
		Username:    in.Username,
		TenantClass: in.TenantClass,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.opts.ttl),
	}
	return id, nil
}

// lookup requiere s.mu tomado.
func (s *MemoryStore) lookup(id string) (*domain.ResetToken, error) {
	t, ok := s.tokens[id]
	if !ok {
		return nil, domain.TokenError(domain.TokenInvalid)
	}
	if err := t.Check(s.opts.now()); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *MemoryStore) Peek(_ context.Context, id string) (domain.ResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(id)
	if err != nil {
		return domain.ResetToken{}, err
	}
	return *t, nil
}

func (s *MemoryStore) BeginRedeem(_ context.Context, id string) (domain.ResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(id)
	if err != nil {
		return domain.ResetToken{}, err
	}
	t.Used = true
	return *t, nil
}

func (s *MemoryStore) Revert(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[id]; ok {
		t.Used = false
	}
	return nil
}

func (s *MemoryStore) Finalize(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.tokens, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SweepExpired(_ context.Context) (int, error) {
	now := s.opts.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.tokens {
		if t.ExpiresAt.Before(now) {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	all := make([]domain.ResetToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		all = append(all, *t)
	}
	s.mu.Unlock()
	return countStats(s.opts.now(), all), nil
}
