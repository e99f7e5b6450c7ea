/* cmd/deploy.go */

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the full release pipeline: build, publish, register, deploy",
	Long: `Run a full forward release against the target service.

The pipeline resolves the version from the current git revision (or --tag),
builds and tags the image, pushes it to ECR, registers a new task definition
revision with the image swapped in, and updates the service, waiting for the
platform to report it stable.

Each stage's failure is fatal and halts the pipeline. A stabilization
timeout is reported as a warning, not a failure: the update was accepted and
the deployment may still converge.

Examples:
  # Release the current checkout
  hermes deploy --cluster cluster-bia --service bia --ecr bia-app

  # Release an explicit version without consulting git
  hermes deploy --cluster cluster-bia --service bia --ecr bia-app --tag v42

  # See what would happen
  hermes deploy --cluster cluster-bia --service bia --ecr bia-app --dry-run`,
	Args: cobra.NoArgs,
	RunE: hermes.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "region", "cluster", "service", "ecr")
		if err != nil {
			return err
		}

		orch, err := newOrchestrator(rc, cfg)
		if err != nil {
			return err
		}

		release, err := orch.Run(rc)
		if release != nil && release.TaskDefinition != "" {
			otelzap.Ctx(rc.Ctx).Info("Release summary",
				zap.String("version", release.Version),
				zap.String("image_ref", release.ImageRef),
				zap.String("task_definition", release.TaskDefinition),
			)
		}
		return err
	}),
}
