package store

import (
	"sync"

	"github.com/johanforsgren/forgereview/internal/domain"
)

// Memory is a map-backed domain.MetadataStore. It backs ephemeral sessions
// and tests where nothing should touch the filesystem.
type Memory struct {
	mu           sync.RWMutex
	pullRequests map[string]*domain.PullRequest
}

func NewMemory() *Memory {
	return &Memory{
		pullRequests: map[string]*domain.PullRequest{},
	}
}

func (s *Memory) Load(id domain.PRIdentity) (*domain.PullRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.pullRequests[id.String()]
	if !ok {
		return nil, nil
	}

	copied := *stored
	return &copied, nil
}

func (s *Memory) Save(id domain.PRIdentity, pr *domain.PullRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *pr
	s.pullRequests[id.String()] = &copied
	return nil
}
