// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package changelog

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
)

// BuildSource polls one build record by number.
type BuildSource interface {
	Poll(ctx context.Context, number int) (Outcome, error)
}

// JenkinsBuilds fetches raw Jenkins build documents.
type JenkinsBuilds interface {
	GetBuild(ctx context.Context, number int) ([]byte, error)
}

// JenkinsSource polls Jenkins builds, filtered by branch.
type JenkinsSource struct {
	Builds JenkinsBuilds
	Branch string
}

// Poll implements BuildSource.
func (s *JenkinsSource) Poll(ctx context.Context, number int) (Outcome, error) {
	body, err := s.Builds.GetBuild(ctx, number)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeJenkins(body, s.Branch)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GitLabJobs fetches raw GitLab job documents.
type GitLabJobs interface {
	GetJob(ctx context.Context, jobID int) ([]byte, error)
}

// GitLabJobSource polls GitLab jobs by id.
type GitLabJobSource struct {
	Jobs GitLabJobs
}

// Poll implements BuildSource.
func (s *GitLabJobSource) Poll(ctx context.Context, number int) (Outcome, error) {
	body, err := s.Jobs.GetJob(ctx, number)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeGitLabJob(body)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// State is the walker state.
type State int

const (
	StatePolling State = iota
	StateSuccess
	StateExhausted
	StateTransportFailure
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted"
	case StateTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// WalkResult is the outcome of one backward walk.
type WalkResult struct {
	// Commits holds failing builds newest first, then the commits of the
	// last successful build if nothing else was collected.
	Commits []Commit
	State   State
	Polls   int
	// Skipped aggregates the per-build errors the walk moved past.
	Skipped error
	// Cause is the error that stopped the walk early, if any.
	Cause error
}

// accumulator is the mutable walk state.
type accumulator struct {
	collected []Commit
	cursor    int
	state     State
}

// Walker walks build numbers backward until it reaches a successful build.
type Walker struct {
	source  BuildSource
	logger  observability.Logger
	metrics *observability.Metrics
}

// NewWalker creates a walker over source. logger and metrics may be nil.
func NewWalker(source BuildSource, logger observability.Logger, metrics *observability.Metrics) *Walker {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Walker{source: source, logger: logger, metrics: metrics}
}

// Walk polls start, start-1, ... down to 1. It stops at the first successful
// build on the tracked branch, when the numbers run out, or on a transport
// failure or cancellation. Commits collected before an early stop are kept.
func (w *Walker) Walk(ctx context.Context, start int) *WalkResult {
	acc := &accumulator{cursor: start, state: StatePolling}
	res := &WalkResult{}

	for acc.state == StatePolling {
		if acc.cursor <= 0 {
			acc.state = StateExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			res.Cause = err
			acc.state = StateTransportFailure
			break
		}

		number := acc.cursor
		outcome, err := w.source.Poll(ctx, number)
		res.Polls++

		if err != nil {
			if cicderrors.IsRecoverable(err) {
				w.recordError(err)
				w.logger.Warn("skipping build",
					observability.Int("build", number), observability.Err(err))
				res.Skipped = multierr.Append(res.Skipped, errors.Wrapf(err, "build %d", number))
				acc.cursor--
				continue
			}
			w.metrics.RecordPoll(observability.PollTransportError)
			w.logger.Error("stopping walk",
				observability.Int("build", number), observability.Err(err))
			res.Cause = errors.Wrapf(err, "build %d", number)
			acc.state = StateTransportFailure
			break
		}

		w.step(acc, number, outcome)
	}

	res.Commits = acc.collected
	res.State = acc.state

	fields := append([]observability.Field{
		observability.String("state", res.State.String()),
		observability.Int("polls", res.Polls),
		observability.Int("commits", len(res.Commits)),
	}, w.metrics.Fields()...)
	w.logger.Info("walk finished", fields...)
	return res
}

func (w *Walker) step(acc *accumulator, number int, outcome Outcome) {
	status := outcome.Status()
	log := w.logger.With(observability.Int("build", number), observability.String("status", status.String()))

	switch {
	case status == StatusInProgress:
		w.metrics.RecordPoll(observability.PollInProgress)
		log.Debug("build still running")
		acc.cursor--

	case !outcome.BranchMatched():
		w.metrics.RecordPoll(observability.PollBranchMismatch)
		log.Debug("build belongs to another branch")
		acc.cursor--

	case status == StatusFailure:
		w.metrics.RecordPoll(observability.PollFailure)
		commits := outcome.Commits()
		log.Debug("collecting failed build", observability.Int("commits", len(commits)))
		acc.collected = append(acc.collected, commits...)
		acc.cursor--

	default:
		w.metrics.RecordPoll(observability.PollSuccess)
		if len(acc.collected) == 0 {
			acc.collected = append(acc.collected, outcome.Commits()...)
		}
		log.Debug("reached successful build")
		acc.state = StateSuccess
	}
}

func (w *Walker) recordError(err error) {
	if cicderrors.IsType(err, cicderrors.ErrDecode) {
		w.metrics.RecordPoll(observability.PollDecodeError)
		return
	}
	w.metrics.RecordPoll(observability.PollStatusError)
}
