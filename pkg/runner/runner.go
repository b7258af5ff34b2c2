// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package runner wires CI detection, the changelog walk and publishing
// into one run.
package runner

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/buildctx"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/changelog"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/config"
	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/metadata"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/output"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
)

// Options holds the runtime dependencies of a run. Zero values use the
// process environment, stdout and a no-op logger.
type Options struct {
	// Env is read for CI detection and metadata.
	Env platform.Env
	// EnvWriter receives the published values.
	EnvWriter output.EnvWriter
	// Out receives the summary.
	Out io.Writer
	// Color enables ANSI colors in the summary.
	Color bool
	// Logger is the base logger; each run adds its run_id.
	Logger observability.Logger
	// HTTPClient replaces the default HTTP client.
	HTTPClient platform.HTTPClient
}

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Meta     metadata.RunMetadata
	Commits  []changelog.Commit
	Walk     *changelog.WalkResult // nil unless builds were walked
	Store    *buildctx.Store
	Metrics  *observability.Metrics
	Duration time.Duration
}

// Runner executes the changelog action.
type Runner struct {
	cfg  *config.Config
	opts Options
}

// New creates a runner.
func New(cfg *config.Config, opts Options) *Runner {
	if opts.Env == nil {
		opts.Env = platform.OSEnv{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	return &Runner{cfg: cfg, opts: opts}
}

// run is the state of one invocation.
type run struct {
	*Runner
	logger  observability.Logger
	client  *platform.Client
	metrics *observability.Metrics
	result  *Result
}

// Run detects the CI, collects the changelog and publishes it.
//
// Only configuration errors are returned. Upstream failures degrade to a
// partial or empty changelog, which is still published.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.opts.Logger.With(observability.String("run_id", runID))

	rn := &run{
		Runner:  r,
		logger:  logger,
		metrics: observability.NewMetrics(),
		result:  &Result{RunID: runID, Store: buildctx.NewStore()},
	}
	rn.result.Metrics = rn.metrics
	if r.opts.HTTPClient != nil {
		rn.client = platform.NewClientWithHTTP(r.opts.HTTPClient, logger)
	} else {
		rn.client = platform.NewClient(r.cfg.Timeout, logger)
	}

	kind := platform.Detect(r.opts.Env)
	rn.result.Meta = metadata.Resolve(kind, r.opts.Env)
	logger.Debug("detected ci", observability.String("ci", kind.String()))

	var (
		commits []changelog.Commit
		err     error
	)
	switch kind {
	case platform.KindJenkins:
		commits, err = rn.jenkins(ctx)
	case platform.KindGitLab:
		commits, err = rn.gitlab(ctx)
	default:
		logger.Info("no supported CI detected, publishing an empty changelog",
			observability.Err(cicderrors.UnsupportedError("neither Jenkins nor GitLab CI")))
	}
	if err != nil {
		return nil, err
	}

	rn.result.Commits = commits
	rn.publish()
	rn.result.Duration = time.Since(start)
	return rn.result, nil
}

func (rn *run) jenkins(ctx context.Context) ([]changelog.Commit, error) {
	env := rn.opts.Env
	client := platform.NewJenkinsClientFromEnv(env, rn.client, rn.logger)

	authRequired := client.RequiresAuth(ctx)
	if err := rn.cfg.ValidateJenkins(authRequired); err != nil {
		return nil, err
	}
	if rn.cfg.Jenkins.User != "" {
		client.SetBasicAuth(rn.cfg.Jenkins.User, rn.cfg.Jenkins.Token)
	}

	start := platform.GetInt(env, platform.EnvJenkinsBuildNumber)
	rn.logger.Info("collecting changelog",
		observability.String("platform", client.Name()),
		observability.Bool("auth", authRequired),
		observability.Int("build", start))

	source := &changelog.JenkinsSource{Builds: client, Branch: rn.result.Meta.Branch}
	return rn.walk(ctx, source, start), nil
}

func (rn *run) gitlab(ctx context.Context) ([]changelog.Commit, error) {
	env := rn.opts.Env
	rn.cfg.ApplyCIDefaults(env)
	if err := rn.cfg.ValidateGitLab(); err != nil {
		return nil, err
	}

	client := platform.NewGitLabClient(rn.cfg.GitLab.URL,
		platform.Get(env, platform.EnvGitLabProjectID), rn.cfg.GitLab.PrivateToken, rn.client)
	jobID := platform.GetInt(env, platform.EnvGitLabJobID, platform.EnvGitLabBuildID)
	rn.logger.Info("collecting changelog",
		observability.String("platform", client.Name()),
		observability.String("mode", rn.cfg.GitLab.Mode),
		observability.Int("job", jobID))

	if rn.cfg.GitLab.Mode == config.GitLabModeJobs {
		return rn.walk(ctx, &changelog.GitLabJobSource{Jobs: client}, jobID), nil
	}

	jobName := platform.Get(env, platform.EnvGitLabJobName, platform.EnvGitLabBuildName)
	commits, err := changelog.NewCompareCollector(client, rn.logger).Collect(ctx, jobName, jobID)
	if err != nil {
		rn.logger.Warn("gitlab compare failed, publishing an empty changelog", observability.Err(err))
		return []changelog.Commit{}, nil
	}
	return commits, nil
}

func (rn *run) walk(ctx context.Context, source changelog.BuildSource, start int) []changelog.Commit {
	res := changelog.NewWalker(source, rn.logger, rn.metrics).Walk(ctx, start)
	rn.result.Walk = res
	if res.Cause != nil {
		rn.logger.Warn("walk stopped early, publishing a partial changelog", observability.Err(res.Cause))
	}
	return res.Commits
}

func (rn *run) publish() {
	publisher := output.NewPublisher(rn.result.Store, rn.opts.EnvWriter, rn.logger).WithEnvFile(rn.cfg.EnvFile)
	if err := publisher.Publish(rn.result.Meta, rn.result.Commits); err != nil {
		rn.logger.Error("failed to publish some values", observability.Err(err))
	}

	if rn.cfg.Silent {
		return
	}
	report := &output.Report{Store: rn.result.Store, Commits: rn.result.Commits, Polls: rn.metrics.Total()}
	if err := output.NewFormatter(rn.cfg.Format).WithColor(rn.opts.Color).Format(rn.opts.Out, report); err != nil {
		rn.logger.Error("failed to render summary", observability.Err(err))
	}
}
