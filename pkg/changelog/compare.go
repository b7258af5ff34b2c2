// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package changelog

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
)

// CompareSource lists GitLab jobs and compares revisions.
type CompareSource interface {
	ListJobs(ctx context.Context) ([]byte, error)
	Compare(ctx context.Context, from, to string) ([]byte, error)
}

// ResolveComparePair picks the revision range of the current pipeline.
//
// to is the pipeline sha of the job currentJobID, or of the newest running
// job named jobName when that job is not listed. from is the pipeline sha of
// the newest successful job with the same name that is older than it.
// The GitLab API does not promise an order, so jobs are sorted by id first.
func ResolveComparePair(jobs []GitLabJob, jobName string, currentJobID int) (from, to string, ok bool) {
	sorted := make([]GitLabJob, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	current := -1
	if currentJobID > 0 {
		for i, job := range sorted {
			if job.ID == currentJobID {
				current = i
				break
			}
		}
	}
	if current < 0 {
		for i, job := range sorted {
			if job.Status == "running" && (jobName == "" || job.Name == jobName) {
				current = i
				break
			}
		}
	}
	if current < 0 {
		return "", "", false
	}

	name := sorted[current].Name
	to = strings.TrimSpace(sorted[current].Pipeline.SHA)
	if to == "" {
		return "", "", false
	}

	for _, job := range sorted[current+1:] {
		if job.Status != "success" || job.Name != name {
			continue
		}
		if from = strings.TrimSpace(job.Pipeline.SHA); from != "" {
			return from, to, true
		}
	}
	return "", "", false
}

// CompareCollector builds a changelog from the GitLab compare API.
type CompareCollector struct {
	source CompareSource
	logger observability.Logger
}

// NewCompareCollector creates a collector. logger may be nil.
func NewCompareCollector(source CompareSource, logger observability.Logger) *CompareCollector {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &CompareCollector{source: source, logger: logger}
}

// Collect returns the commits between the last successful job named jobName
// and the current job. When no such pair exists the result is empty, not nil.
func (c *CompareCollector) Collect(ctx context.Context, jobName string, currentJobID int) ([]Commit, error) {
	body, err := c.source.ListJobs(ctx)
	if err != nil {
		return []Commit{}, errors.Wrap(err, "list jobs")
	}
	jobs, err := DecodeGitLabJobs(body)
	if err != nil {
		return []Commit{}, err
	}

	from, to, ok := ResolveComparePair(jobs, jobName, currentJobID)
	if !ok {
		c.logger.Info("no previous successful job to compare with",
			observability.String("job", jobName),
			observability.Int("job_id", currentJobID))
		return []Commit{}, nil
	}

	c.logger.Debug("comparing revisions", observability.String("from", from), observability.String("to", to))
	body, err = c.source.Compare(ctx, from, to)
	if err != nil {
		return []Commit{}, errors.Wrapf(err, "compare %s...%s", from, to)
	}
	return NormalizeGitLabCompare(body)
}
