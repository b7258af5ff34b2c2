package buildctx

import (
	"testing"
)

func TestStoreAccessors(t *testing.T) {
	s := NewStore()
	s.Set(KeyCI, "Jenkins")
	s.Set(KeyBranch, "develop")
	s.Set(KeyCommit, "f9d1")
	s.Set(KeyProjectURL, "http://ci/job/app/")
	s.Set(KeyChangelog, "[]")

	if s.CI() != "Jenkins" || s.Branch() != "develop" || s.Commit() != "f9d1" {
		t.Errorf("Unexpected values: %v", s.Snapshot())
	}
	if s.ProjectURL() != "http://ci/job/app/" {
		t.Errorf("Expected project URL, got %q", s.ProjectURL())
	}
	if s.Changelog() != "[]" {
		t.Errorf("Expected empty changelog, got %q", s.Changelog())
	}
}

func TestStoreMissingKey(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get(KeyCI); ok {
		t.Error("Expected missing key")
	}
	if s.Branch() != "" {
		t.Error("Expected empty branch")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.Set(KeyCommit, "a")

	snap := s.Snapshot()
	snap[KeyCommit] = "b"

	if s.Commit() != "a" {
		t.Errorf("Snapshot modified the store")
	}
	if keys := s.SortedKeys(); len(keys) != 1 || keys[0] != KeyCommit {
		t.Errorf("Unexpected keys: %v", keys)
	}
}
