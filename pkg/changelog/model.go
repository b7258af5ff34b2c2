// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package changelog reconstructs the commits introduced since the last
// successful CI build by walking build records backward.
package changelog

import "encoding/json"

// Commit is one normalized commit record.
type Commit struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"date"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Author    string `json:"author,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Status is the result of a single build.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusInProgress
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// Outcome is the normalized view of one polled build.
type Outcome interface {
	Status() Status
	Commits() []Commit
	BranchMatched() bool
}

// JenkinsOutcome is a Jenkins build document after normalization.
type JenkinsOutcome struct {
	Result   string
	Building bool
	Branches []string
	Matched  bool
	Items    []Commit
}

// Status implements Outcome.
func (o *JenkinsOutcome) Status() Status {
	switch {
	case o.Building:
		return StatusInProgress
	case o.Result == "SUCCESS":
		return StatusSuccess
	default:
		return StatusFailure
	}
}

// Commits implements Outcome. Running builds and builds of other branches
// carry no commits.
func (o *JenkinsOutcome) Commits() []Commit {
	if o.Building || !o.Matched {
		return nil
	}
	return o.Items
}

// BranchMatched implements Outcome.
func (o *JenkinsOutcome) BranchMatched() bool {
	return o.Matched
}

// GitLabOutcome is a GitLab job document after normalization.
type GitLabOutcome struct {
	State  string
	Commit *Commit
}

// Status implements Outcome. GitLab jobs are never reported as in progress.
func (o *GitLabOutcome) Status() Status {
	if o.State == "success" {
		return StatusSuccess
	}
	return StatusFailure
}

// Commits implements Outcome.
func (o *GitLabOutcome) Commits() []Commit {
	if o.Commit == nil {
		return nil
	}
	return []Commit{*o.Commit}
}

// BranchMatched implements Outcome.
func (o *GitLabOutcome) BranchMatched() bool {
	return true
}

// MarshalCommits renders commits as a JSON array. An empty list becomes "[]".
func MarshalCommits(commits []Commit) (string, error) {
	if commits == nil {
		commits = []Commit{}
	}
	data, err := json.Marshal(commits)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
