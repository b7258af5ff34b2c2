// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package buildctx holds the values a run shares with later pipeline steps.
package buildctx

import (
	"sort"
	"sync"
)

// Keys published by a run.
const (
	KeyCI         = "CICL_CI"
	KeyBranch     = "CICL_BRANCH"
	KeyCommit     = "CICL_COMMIT"
	KeyProjectURL = "CICL_PROJECT_URL"
	KeyChangelog  = "CICL_CHANGELOG"
)

// Keys lists the published keys in display order.
var Keys = []string{KeyCI, KeyBranch, KeyCommit, KeyProjectURL, KeyChangelog}

// Store is the shared-value store of one run.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// CI returns the published CI kind.
func (s *Store) CI() string { return s.lookup(KeyCI) }

// Branch returns the published branch.
func (s *Store) Branch() string { return s.lookup(KeyBranch) }

// Commit returns the published commit.
func (s *Store) Commit() string { return s.lookup(KeyCommit) }

// ProjectURL returns the published project URL.
func (s *Store) ProjectURL() string { return s.lookup(KeyProjectURL) }

// Changelog returns the published changelog JSON.
func (s *Store) Changelog() string { return s.lookup(KeyChangelog) }

func (s *Store) lookup(key string) string {
	v, _ := s.Get(key)
	return v
}

// Snapshot returns a copy of all values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SortedKeys returns the stored keys in lexical order.
func (s *Store) SortedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
