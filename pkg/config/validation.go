// Package config handles configuration loading and validation
package config

import (
	"fmt"
	"strings"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
)

// missingParam is the message for a required parameter that is unset.
func missingParam(name string) error {
	return errors.ConfigError(fmt.Sprintf("Missing %s param or empty value.", name), nil)
}

// Validate validates the static configuration values
func (c *Config) Validate() error {
	if c == nil {
		return errors.ConfigError("config is nil", nil)
	}

	switch strings.ToLower(c.Format) {
	case "table", "json":
	default:
		return errors.ConfigError(fmt.Sprintf("invalid format: %s (must be 'table' or 'json')", c.Format), nil)
	}

	switch strings.ToLower(c.GitLab.Mode) {
	case GitLabModeCompare, GitLabModeJobs:
		c.GitLab.Mode = strings.ToLower(c.GitLab.Mode)
	default:
		return errors.ConfigError(fmt.Sprintf("invalid gitlab mode: %s (must be 'compare' or 'jobs')", c.GitLab.Mode), nil)
	}

	if c.Timeout < 0 {
		return errors.ConfigError("timeout must be non-negative", nil)
	}

	return nil
}

// ValidateJenkins checks the Jenkins credentials. They are only required
// when the server rejects anonymous access.
func (c *Config) ValidateJenkins(authRequired bool) error {
	if !authRequired {
		return nil
	}
	if strings.TrimSpace(c.Jenkins.User) == "" {
		return missingParam("jenkins_user")
	}
	if strings.TrimSpace(c.Jenkins.Token) == "" {
		return missingParam("jenkins_token")
	}
	return nil
}

// ValidateGitLab checks the GitLab API URL, then the private token.
func (c *Config) ValidateGitLab() error {
	if strings.TrimSpace(c.GitLab.URL) == "" {
		return missingParam("gitlab_url")
	}
	if strings.TrimSpace(c.GitLab.PrivateToken) == "" {
		return missingParam("gitlab_private_token")
	}
	return nil
}
