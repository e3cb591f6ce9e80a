// Package store persists the per-PR metadata cache that providers write
// through to. The file variant keeps one JSON document per user holding the
// last fetched graph for every PR identity.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/logger"
)

const (
	cacheDir  = ".forgereview"
	cacheFile = "metadata.json"
)

type cacheModel struct {
	PullRequests map[string]*domain.PullRequest `json:"pull_requests"`
}

// Local is a file-backed domain.MetadataStore keyed by PR identity.
type Local struct {
	path  string
	cache *cacheModel
	mu    sync.RWMutex
}

// NewLocal opens the default per-user cache under the home directory.
func NewLocal() (*Local, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewLocalAt(filepath.Join(homeDir, cacheDir, cacheFile))
}

// NewLocalAt opens a cache at an explicit path, creating the parent
// directory when missing. A missing file is an empty cache, not an error.
func NewLocalAt(path string) (*Local, error) {
	s := &Local{
		path:  path,
		cache: &cacheModel{PullRequests: map[string]*domain.PullRequest{}},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return s, nil
}

func (s *Local) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.LogFileOpen(s.path)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.LogError("CACHE_LOAD", s.path, err)
		}
		return err
	}

	if err := json.Unmarshal(data, s.cache); err != nil {
		logger.LogError("CACHE_UNMARSHAL", s.path, err)
		return err
	}
	if s.cache.PullRequests == nil {
		s.cache.PullRequests = map[string]*domain.PullRequest{}
	}

	logger.Log("Metadata cache loaded from %s (%d entries)", s.path, len(s.cache.PullRequests))
	return nil
}

func (s *Local) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		logger.LogError("CACHE_MARSHAL", s.path, err)
		return fmt.Errorf("failed to marshal metadata cache: %w", err)
	}

	logger.LogFileWrite(s.path)
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		logger.LogError("CACHE_SAVE", s.path, err)
		return err
	}

	return nil
}

// Load returns the cached graph for id, or (nil, nil) when none is stored.
func (s *Local) Load(id domain.PRIdentity) (*domain.PullRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.cache.PullRequests[id.String()]
	if !ok {
		return nil, nil
	}

	copied := *stored
	return &copied, nil
}

// Save stores the graph for id and persists the whole cache to disk.
func (s *Local) Save(id domain.PRIdentity, pr *domain.PullRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *pr
	s.cache.PullRequests[id.String()] = &copied
	logger.Log("Caching metadata for %s", id)
	return s.save()
}
