// Package main provides the ci-changelog CLI application.
package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ci-changelog",
	Short: "Changelog since the last successful CI build",
	Long: `ci-changelog collects the commits added since the last successful build
of the current Jenkins job or GitLab CI pipeline and publishes them, together
with the branch, commit and project URL, as CICL_* variables for later steps.`,
	Version:       version.FullString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A local .env is optional.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
