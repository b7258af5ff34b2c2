// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package metadata resolves branch, commit and project URL of the current
// CI run from its environment.
package metadata

import (
	"net"
	"net/url"
	"strings"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
)

// RunMetadata describes the current CI run.
type RunMetadata struct {
	CIKind     string
	Branch     string
	Commit     string
	ProjectURL string
}

// Resolve reads the metadata of the current run for the given CI kind.
// It makes no network calls.
func Resolve(kind platform.Kind, env platform.Env) RunMetadata {
	meta := RunMetadata{CIKind: kind.String()}

	switch kind {
	case platform.KindJenkins:
		meta.Branch = jenkinsBranch(env)
		meta.Commit = platform.Get(env, "GIT_COMMIT", "SVN_REVISION")
		meta.ProjectURL = platform.Get(env, platform.EnvJenkinsJobURL)
	case platform.KindGitLab:
		meta.Branch = platform.Get(env, "CI_COMMIT_REF_NAME", "CI_BUILD_REF_NAME")
		meta.Commit = platform.Get(env, "CI_COMMIT_SHA", "CI_BUILD_REF")
		meta.ProjectURL = gitlabJobURL(env)
	}
	return meta
}

// jenkinsBranch strips the remote name, so origin/feature/x becomes feature/x.
func jenkinsBranch(env platform.Env) string {
	branch := platform.Get(env, "GIT_BRANCH", "SVN_BRANCH")
	if _, rest, found := strings.Cut(branch, "/"); found {
		return rest
	}
	return branch
}

func gitlabJobURL(env platform.Env) string {
	if jobURL := platform.Get(env, "CI_JOB_URL"); jobURL != "" {
		return jobURL
	}

	suffix := gitlabJobPath(env)

	if projectURL := platform.Get(env, "CI_PROJECT_URL"); projectURL != "" {
		return strings.TrimSuffix(projectURL, "/") + suffix
	}

	base := repositoryBase(platform.Get(env, "CI_REPOSITORY_URL", "CI_BUILD_REPO"))
	namespace := projectNamespace(platform.Get(env, "CI_PROJECT_DIR"))
	if base == "" || namespace == "" {
		return ""
	}
	return base + "/" + namespace + suffix
}

// gitlabJobPath returns the job page path. CI_JOB_ID only exists on
// GitLab 9 and later, which moved builds under /-/jobs.
func gitlabJobPath(env platform.Env) string {
	if id := platform.Get(env, platform.EnvGitLabJobID); id != "" {
		return "/-/jobs/" + id
	}
	if id := platform.Get(env, platform.EnvGitLabBuildID); id != "" {
		return "/builds/" + id
	}
	return ""
}

// repositoryBase keeps scheme, host and a non-default port of a clone URL.
// Credentials and path are dropped.
func repositoryBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return ""
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" || port == "80" || port == defaultPort(u.Scheme) {
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		return u.Scheme + "://" + host
	}
	return u.Scheme + "://" + net.JoinHostPort(host, port)
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

// projectNamespace returns group/project from the last two segments of
// the checkout directory.
func projectNamespace(dir string) string {
	parts := strings.FieldsFunc(dir, func(r rune) bool { return r == '/' })
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
