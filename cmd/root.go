/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/logger"
)

// RootCmd is the base command for hermes.
var RootCmd = &cobra.Command{
	Use:   "hermes",
	Short: "Hermes builds, publishes and promotes container images onto ECS services",
	Long: `Hermes automates container image promotion to Amazon ECS: build a versioned
image from the current checkout, publish it to ECR, derive an updated task
definition, and roll it onto a running service, with rollback to any
previously published version.

All target parameters come from flags or HERMES_* environment variables;
hermes keeps no local state between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// RegisterCommands adds all subcommands and shared flags to the root command.
func RegisterCommands() {
	flags := RootCmd.PersistentFlags()
	flags.String("region", "us-east-1", "AWS region of the cluster and registry")
	flags.String("cluster", "", "ECS cluster name")
	flags.String("service", "", "ECS service name")
	flags.String("ecr", "", "ECR repository name")
	flags.String("family", "", "task definition family (defaults to <service>-tf)")
	flags.String("tag", "", "explicit version override instead of the git revision")
	flags.Bool("dry-run", false, "log every step without performing irreversible actions")

	for _, subCmd := range []*cobra.Command{
		deployCmd,
		buildCmd,
		pushCmd,
		updateServiceCmd,
		rollbackCmd,
		listVersionsCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute initializes and runs the root command, mapping classified errors
// onto process exit codes.
func Execute() {
	defer func() {
		_ = logger.Sync()
	}()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if hermes_err.IsWarning(err) {
			logger.GetLogger().Warn("Completed with warning", zap.Error(err))
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(hermes_err.GetExitCode(err))
	}
}
