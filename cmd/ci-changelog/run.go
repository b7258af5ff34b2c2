// Package main provides the ci-changelog CLI application.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/config"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/output"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect and publish the changelog",
	Long: `Detect the CI server, walk back to the last successful build and publish
CICL_CI, CICL_BRANCH, CICL_COMMIT, CICL_PROJECT_URL and CICL_CHANGELOG.

Outside Jenkins and GitLab CI the values are published with CICL_CI=Unknown
and an empty changelog.`,
	RunE: runChangelog,
}

var configFile string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default ./"+config.ProjectConfigFile+")")
	config.RegisterFlags(runCmd.Flags())
}

func runChangelog(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().WithConfigFile(configFile).WithFlags(cmd.Flags()).Load()
	if err != nil {
		cmd.PrintErrln(err)
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = runner.New(cfg, runner.Options{
		Env:       platform.OSEnv{},
		EnvWriter: output.OSEnvWriter{},
		Out:       cmd.OutOrStdout(),
		Color:     isTerminal(os.Stdout),
		Logger:    logger,
	}).Run(ctx)
	if err != nil {
		logger.Error("ci_changelog failed", observability.Err(err))
	}
	return err
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
