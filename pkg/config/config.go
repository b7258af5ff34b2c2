// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config provides configuration management for ci-changelog.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Project Config: ./.ci-changelog.yaml
// 3. Environment Variables: CICL_*
// 4. Command-line flags
package config

import (
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Silent   bool          `yaml:"silent"`
	Format   string        `yaml:"format"`    // table, json
	EnvFile  string        `yaml:"env_file"`  // dotenv export path
	LogLevel string        `yaml:"log_level"` // debug, info, warn, error
	Timeout  time.Duration `yaml:"timeout"`
	Jenkins  JenkinsConfig `yaml:"jenkins"`
	GitLab   GitLabConfig  `yaml:"gitlab"`
}

// JenkinsConfig contains Jenkins credentials.
type JenkinsConfig struct {
	User  string `yaml:"user"`
	Token string `yaml:"token"` // API token or password
}

// GitLabConfig contains GitLab API settings.
type GitLabConfig struct {
	URL          string `yaml:"url"`
	PrivateToken string `yaml:"private_token"`
	Mode         string `yaml:"mode"` // compare, jobs
}

// GitLab changelog modes.
const (
	GitLabModeCompare = "compare"
	GitLabModeJobs    = "jobs"
)
