package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/johanforsgren/forgereview/internal/domain"
)

func testIdentity() domain.PRIdentity {
	return domain.PRIdentity{Owner: "johanforsgren", Repo: "forgereview", Number: 42}
}

func TestLocal_LoadMissingIsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	s, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	pr, err := s.Load(testIdentity())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if pr != nil {
		t.Errorf("Load() = %+v, want nil for missing entry", pr)
	}
}

func TestLocal_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	s, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	id := testIdentity()
	pr := &domain.PullRequest{
		Number: id.Number,
		Title:  "Add batch reply support",
		Labels: []domain.Label{{Name: "enhancement", Color: "a2eeef"}},
		AssignableUsers: []domain.User{
			{ID: "U_1", Login: "alice"},
			{ID: "U_2", Login: "bob"},
		},
	}

	if err := s.Save(id, pr); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() = nil, want saved entry")
	}
	if loaded.Title != pr.Title {
		t.Errorf("Title = %q, want %q", loaded.Title, pr.Title)
	}
	if len(loaded.AssignableUsers) != 2 {
		t.Errorf("AssignableUsers count = %d, want 2", len(loaded.AssignableUsers))
	}
}

func TestLocal_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	id := testIdentity()

	first, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := first.Save(id, &domain.PullRequest{Number: id.Number, Title: "persisted"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	loaded, err := second.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || loaded.Title != "persisted" {
		t.Errorf("Load() after reopen = %+v, want title %q", loaded, "persisted")
	}
}

func TestLocal_KeysByIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	s, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	first := domain.PRIdentity{Owner: "o", Repo: "r", Number: 1}
	second := domain.PRIdentity{Owner: "o", Repo: "r", Number: 2}

	if err := s.Save(first, &domain.PullRequest{Number: 1, Title: "one"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(second, &domain.PullRequest{Number: 2, Title: "two"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(first)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Title != "one" {
		t.Errorf("Load(first).Title = %q, want %q", loaded.Title, "one")
	}
}

func TestLocal_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	s, err := NewLocalAt(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := s.Save(testIdentity(), &domain.PullRequest{Number: 42}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("cache file permissions = %o, want 0600", perm)
	}
}

func TestMemory_SaveAndLoad(t *testing.T) {
	s := NewMemory()
	id := testIdentity()

	pr, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if pr != nil {
		t.Errorf("Load() = %+v, want nil for missing entry", pr)
	}

	if err := s.Save(id, &domain.PullRequest{Number: id.Number, Title: "in memory"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || loaded.Title != "in memory" {
		t.Errorf("Load() = %+v, want title %q", loaded, "in memory")
	}
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	s := NewMemory()
	id := testIdentity()

	if err := s.Save(id, &domain.PullRequest{Number: id.Number, Title: "original"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, _ := s.Load(id)
	first.Title = "mutated"

	second, _ := s.Load(id)
	if second.Title != "original" {
		t.Errorf("stored entry changed through loaded copy: Title = %q", second.Title)
	}
}
