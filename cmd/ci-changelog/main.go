// Package main is the entry point for the ci-changelog CLI.
package main

import (
	"os"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/runner"
)

func main() {
	os.Exit(runner.ExitCode(Execute()))
}
