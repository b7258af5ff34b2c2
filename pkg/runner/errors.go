// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package runner

import (
	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
)

// Exit codes of the CLI.
const (
	ExitSuccess     = 0 // Changelog published, possibly partial or empty
	ExitConfigError = 1 // Missing or invalid configuration
	ExitInternal    = 2 // Anything else that aborted the run
)

// ExitCode maps a run error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case cicderrors.ShouldBlockCI(err):
		return ExitConfigError
	default:
		return ExitInternal
	}
}
