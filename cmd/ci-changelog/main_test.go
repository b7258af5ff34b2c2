package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(buf.String(), "ci-changelog version:") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestRunFlags(t *testing.T) {
	for _, name := range []string{
		"config", "silent", "format", "env-file", "log-level", "timeout",
		"jenkins-user", "jenkins-token", "gitlab-url", "gitlab-private-token", "gitlab-mode",
	} {
		if runCmd.Flags().Lookup(name) == nil {
			t.Errorf("Missing flag --%s", name)
		}
	}
}
