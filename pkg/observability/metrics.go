// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package observability

import (
	"sort"
	"sync"
)

// Poll outcome labels recorded by the walker.
const (
	PollSuccess        = "success"
	PollFailure        = "failure"
	PollInProgress     = "in_progress"
	PollBranchMismatch = "branch_mismatch"
	PollStatusError    = "status_error"
	PollDecodeError    = "decode_error"
	PollTransportError = "transport_error"
)

// Metrics counts build polls by outcome for one invocation.
type Metrics struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[string]int)}
}

// RecordPoll records one poll with the given outcome label.
func (m *Metrics) RecordPoll(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[outcome]++
}

// Count returns the number of polls recorded for outcome.
func (m *Metrics) Count(outcome string) int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[outcome]
}

// Total returns the number of polls recorded.
func (m *Metrics) Total() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// Fields returns the counters as log fields, sorted by label.
func (m *Metrics) Fields() []Field {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.counts))
	for k := range m.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Int("polls_"+k, m.counts[k]))
	}
	return fields
}
