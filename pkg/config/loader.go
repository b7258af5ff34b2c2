// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "CICL"
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".ci-changelog.yaml"
)

// binding ties a config key to its environment variable and flag.
type binding struct {
	key  string
	env  string
	flag string
}

var bindings = []binding{
	{"silent", EnvPrefix + "_SILENT", "silent"},
	{"format", EnvPrefix + "_FORMAT", "format"},
	{"env_file", EnvPrefix + "_ENV_FILE", "env-file"},
	{"log_level", EnvPrefix + "_LOG_LEVEL", "log-level"},
	{"timeout", EnvPrefix + "_TIMEOUT", "timeout"},
	{"jenkins.user", EnvPrefix + "_JENKINS_USER", "jenkins-user"},
	{"jenkins.token", EnvPrefix + "_JENKINS_TOKEN", "jenkins-token"},
	{"gitlab.url", EnvPrefix + "_GITLAB_URL", "gitlab-url"},
	{"gitlab.private_token", EnvPrefix + "_GITLAB_PRIVATE_TOKEN", "gitlab-private-token"},
	{"gitlab.mode", EnvPrefix + "_GITLAB_MODE", "gitlab-mode"},
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.Bool("silent", false, "suppress the summary output")
	fs.String("format", def.Format, "summary format: table or json")
	fs.String("env-file", "", "also export the results to this dotenv file")
	fs.String("log-level", def.LogLevel, "log level: debug, info, warn or error")
	fs.Duration("timeout", def.Timeout, "timeout of a single CI API request")
	fs.String("jenkins-user", "", "Jenkins user, required when the server needs authentication")
	fs.String("jenkins-token", "", "Jenkins API token or password")
	fs.String("gitlab-url", "", "GitLab API v4 URL, defaults to CI_API_V4_URL")
	fs.String("gitlab-private-token", "", "GitLab private token")
	fs.String("gitlab-mode", def.GitLab.Mode, "GitLab changelog mode: compare or jobs")
}

// Loader loads configuration from a file, the environment and flags.
type Loader struct {
	projectRoot string
	configPath  string
	flags       *pflag.FlagSet
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithProjectRoot sets the directory searched for the project config.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithConfigFile loads path instead of the project config. A missing
// explicit file is an error.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configPath = path
	return l
}

// WithFlags overlays the flags that were set on the command line.
func (l *Loader) WithFlags(fs *pflag.FlagSet) *Loader {
	l.flags = fs
	return l
}

// Load resolves the configuration and checks its static values.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	path, required := l.configPath, true
	if path == "" {
		path, required = GetProjectConfigPath(l.projectRoot), false
	}
	if err := loadFile(cfg, path, required); err != nil {
		return nil, err
	}

	if err := l.applyOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.ConfigError(fmt.Sprintf("failed to read config file: %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to parse config file: %s", path), err)
	}
	return nil
}

// applyOverrides applies CICL_* variables, then changed flags.
func (l *Loader) applyOverrides(cfg *Config) error {
	v := viper.New()
	for _, b := range bindings {
		_ = v.BindEnv(b.key, b.env)
		if l.flags != nil {
			if f := l.flags.Lookup(b.flag); f != nil {
				_ = v.BindPFlag(b.key, f)
			}
		}
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("format", &cfg.Format)
	setString("env_file", &cfg.EnvFile)
	setString("log_level", &cfg.LogLevel)
	setString("jenkins.user", &cfg.Jenkins.User)
	setString("jenkins.token", &cfg.Jenkins.Token)
	setString("gitlab.url", &cfg.GitLab.URL)
	setString("gitlab.private_token", &cfg.GitLab.PrivateToken)
	setString("gitlab.mode", &cfg.GitLab.Mode)

	if v.IsSet("silent") {
		cfg.Silent = v.GetBool("silent")
	}
	if v.IsSet("timeout") {
		d, err := cast.ToDurationE(v.Get("timeout"))
		if err != nil {
			return errors.ConfigError("invalid timeout", err)
		}
		cfg.Timeout = d
	}
	return nil
}

// ApplyCIDefaults fills values the CI runner provides when they are not
// configured.
func (c *Config) ApplyCIDefaults(env platform.Env) {
	if c.GitLab.URL == "" {
		c.GitLab.URL = platform.Get(env, platform.EnvGitLabAPIURL)
	}
}
