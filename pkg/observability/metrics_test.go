// Package observability tests
package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMetricsRecordPoll(t *testing.T) {
	m := NewMetrics()

	m.RecordPoll(PollFailure)
	m.RecordPoll(PollFailure)
	m.RecordPoll(PollSuccess)

	if got := m.Count(PollFailure); got != 2 {
		t.Errorf("Expected 2 failure polls, got %d", got)
	}
	if got := m.Total(); got != 3 {
		t.Errorf("Expected 3 polls in total, got %d", got)
	}

	fields := m.Fields()
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "polls_failure" || fields[1].Key != "polls_success" {
		t.Errorf("Expected sorted field keys, got %s, %s", fields[0].Key, fields[1].Key)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordPoll(PollSuccess)
	if m.Total() != 0 {
		t.Error("Expected nil metrics to report zero")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "debug").With(String("run_id", "abc"))

	log.Info("walk finished", Int("polls", 3), Bool("partial", false))
	log.Error("request failed", Err(errors.New("connection refused")))

	out := buf.String()
	for _, want := range []string{"walk finished", `"run_id": "abc"`, `"polls": 3`, "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "warn")

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Expected debug/info to be filtered, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected warn line, got:\n%s", buf.String())
	}
}
