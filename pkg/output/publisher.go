// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/buildctx"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/changelog"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/metadata"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
)

// EnvWriter sets process environment variables.
type EnvWriter interface {
	Setenv(key, value string) error
}

// OSEnvWriter writes to the real process environment.
type OSEnvWriter struct{}

// Setenv implements EnvWriter.
func (OSEnvWriter) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// Publisher writes run results to the store, the environment and
// optionally a dotenv file.
type Publisher struct {
	store   *buildctx.Store
	env     EnvWriter
	envFile string
	logger  observability.Logger
}

// NewPublisher creates a publisher. env and logger may be nil.
func NewPublisher(store *buildctx.Store, env EnvWriter, logger observability.Logger) *Publisher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Publisher{store: store, env: env, logger: logger}
}

// WithEnvFile makes Publish also export the values to a dotenv file.
func (p *Publisher) WithEnvFile(path string) *Publisher {
	p.envFile = path
	return p
}

// Publish stores the metadata and the changelog under the CICL_* keys.
// The store is always written; environment and file failures are returned
// together after every destination was tried.
func (p *Publisher) Publish(meta metadata.RunMetadata, commits []changelog.Commit) error {
	data, err := changelog.MarshalCommits(commits)
	if err != nil {
		return errors.Wrap(err, "encode changelog")
	}

	values := map[string]string{
		buildctx.KeyCI:         meta.CIKind,
		buildctx.KeyBranch:     meta.Branch,
		buildctx.KeyCommit:     meta.Commit,
		buildctx.KeyProjectURL: meta.ProjectURL,
		buildctx.KeyChangelog:  data,
	}

	var errs error
	for _, key := range buildctx.Keys {
		p.store.Set(key, values[key])
		if p.env != nil {
			if err := p.env.Setenv(key, values[key]); err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "set %s", key))
			}
		}
	}

	if p.envFile != "" {
		if err := godotenv.Write(values, p.envFile); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "write %s", p.envFile))
		} else {
			p.logger.Debug("exported results", observability.String("file", p.envFile))
		}
	}

	p.logger.Info("published changelog",
		observability.String("ci", meta.CIKind),
		observability.String("branch", meta.Branch),
		observability.Int("commits", len(commits)))
	return errs
}
