// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package changelog

import (
	"encoding/json"
	"strings"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
)

type jenkinsBuild struct {
	Result     *string            `json:"result"`
	Building   bool               `json:"building"`
	ChangeSet  *jenkinsChangeSet  `json:"changeSet"`
	ChangeSets []jenkinsChangeSet `json:"changeSets"`
	Actions    []jenkinsAction    `json:"actions"`
}

type jenkinsChangeSet struct {
	Items []jenkinsItem `json:"items"`
}

type jenkinsItem struct {
	CommitID  string      `json:"commitId"`
	Date      string      `json:"date"`
	Timestamp json.Number `json:"timestamp"`
	Msg       string      `json:"msg"`
	Comment   *string     `json:"comment"`
	Author    *struct {
		FullName string `json:"fullName"`
	} `json:"author"`
	AuthorEmail string `json:"authorEmail"`
}

type jenkinsAction struct {
	LastBuiltRevision *struct {
		Branch []struct {
			Name string `json:"name"`
		} `json:"branch"`
	} `json:"lastBuiltRevision"`
}

// NormalizeJenkins parses a Jenkins build document.
//
// With a non-empty branchFilter the build only counts when one of its built
// branches ends with the filter; otherwise it is reported unmatched and
// carries no commits. Items keep the order Jenkins lists them in.
func NormalizeJenkins(body []byte, branchFilter string) (*JenkinsOutcome, error) {
	var doc jenkinsBuild
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, cicderrors.DecodeError("invalid jenkins build document", err)
	}

	out := &JenkinsOutcome{Building: doc.Building}
	if doc.Result != nil {
		out.Result = strings.TrimSpace(*doc.Result)
	}
	for _, action := range doc.Actions {
		if action.LastBuiltRevision == nil {
			continue
		}
		for _, b := range action.LastBuiltRevision.Branch {
			if name := strings.TrimSpace(b.Name); name != "" {
				out.Branches = append(out.Branches, name)
			}
		}
	}

	out.Matched = matchBranch(out.Branches, strings.TrimSpace(branchFilter))
	if out.Building || !out.Matched {
		return out, nil
	}

	var sets []jenkinsChangeSet
	if doc.ChangeSet != nil {
		sets = append(sets, *doc.ChangeSet)
	}
	sets = append(sets, doc.ChangeSets...)

	for _, set := range sets {
		for _, item := range set.Items {
			if c, ok := item.commit(); ok {
				out.Items = append(out.Items, c)
			}
		}
	}
	return out, nil
}

func matchBranch(branches []string, filter string) bool {
	if filter == "" {
		return true
	}
	for _, name := range branches {
		if strings.HasSuffix(name, filter) {
			return true
		}
	}
	return false
}

func (i jenkinsItem) commit() (Commit, bool) {
	title := strings.TrimSpace(i.Msg)
	if title == "" {
		return Commit{}, false
	}

	c := Commit{
		ID:        strings.TrimSpace(i.CommitID),
		Timestamp: strings.TrimSpace(i.Date),
		Title:     title,
		Message:   title,
		Email:     strings.TrimSpace(i.AuthorEmail),
	}
	if c.Timestamp == "" {
		c.Timestamp = i.Timestamp.String()
	}
	if i.Comment != nil {
		if msg := strings.TrimSpace(*i.Comment); msg != "" {
			c.Message = msg
		}
	}
	if i.Author != nil {
		c.Author = strings.TrimSpace(i.Author.FullName)
	}
	return c, true
}

type gitlabCommit struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

func (g gitlabCommit) commit() (Commit, bool) {
	title := strings.TrimSpace(g.Title)
	message := strings.TrimSpace(g.Message)
	if title == "" {
		// Some GitLab versions only send the full message.
		title, _, _ = strings.Cut(message, "\n")
		title = strings.TrimSpace(title)
	}
	if title == "" {
		return Commit{}, false
	}
	if message == "" {
		message = title
	}
	return Commit{
		ID:        strings.TrimSpace(g.ID),
		Timestamp: strings.TrimSpace(g.CreatedAt),
		Title:     title,
		Message:   message,
		Author:    strings.TrimSpace(g.AuthorName),
		Email:     strings.TrimSpace(g.AuthorEmail),
	}, true
}

// GitLabJob is the subset of a GitLab job document the changelog needs.
type GitLabJob struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Commit   *gitlabCommit `json:"commit"`
	Pipeline struct {
		ID  int    `json:"id"`
		SHA string `json:"sha"`
	} `json:"pipeline"`
}

// NormalizeGitLabJob parses a single GitLab job document.
func NormalizeGitLabJob(body []byte) (*GitLabOutcome, error) {
	var job GitLabJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, cicderrors.DecodeError("invalid gitlab job document", err)
	}

	out := &GitLabOutcome{State: strings.TrimSpace(job.Status)}
	if job.Commit != nil {
		if c, ok := job.Commit.commit(); ok {
			out.Commit = &c
		}
	}
	return out, nil
}

// DecodeGitLabJobs parses a GitLab job listing.
func DecodeGitLabJobs(body []byte) ([]GitLabJob, error) {
	var jobs []GitLabJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, cicderrors.DecodeError("invalid gitlab job list", err)
	}
	return jobs, nil
}

// NormalizeGitLabCompare flattens the commits of a GitLab compare document.
func NormalizeGitLabCompare(body []byte) ([]Commit, error) {
	var doc struct {
		Commits []gitlabCommit `json:"commits"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, cicderrors.DecodeError("invalid gitlab compare document", err)
	}

	commits := make([]Commit, 0, len(doc.Commits))
	for _, gc := range doc.Commits {
		if c, ok := gc.commit(); ok {
			commits = append(commits, c)
		}
	}
	return commits, nil
}
