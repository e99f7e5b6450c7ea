/* cmd/rollback.go */

package cmd

import (
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecs"
	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/pipeline"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Redeploy a previously published version",
	Long: `Roll the service back to a version that is already published in ECR.

Rollback is symmetric with a forward deploy except build and publish are
skipped: the target image must exist in the registry. A target that is not
present fails with a listing of the most recent available versions.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return hermes_err.NewValidationError(
				"rollback requires exactly one target version argument",
				"Usage: hermes rollback <version>",
				"Run 'hermes list-versions' to see what is available",
			)
		}
		return nil
	},
	RunE: hermes.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "region", "cluster", "service", "ecr")
		if err != nil {
			return err
		}

		sess, err := cfg.NewSession()
		if err != nil {
			return err
		}
		registry, err := newRegistry(rc, cfg, sess)
		if err != nil {
			return err
		}

		orch := pipeline.NewOrchestrator(
			cfg,
			resolveVersion,
			nil, // rollback never builds or pushes
			registry,
			ecs.NewClient(awsecs.New(sess)),
		)

		release, err := orch.Rollback(rc, args[0])
		if release != nil && release.TaskDefinition != "" {
			otelzap.Ctx(rc.Ctx).Info("Rollback summary",
				zap.String("version", release.Version),
				zap.String("task_definition", release.TaskDefinition),
			)
		}
		return err
	}),
}
