/* cmd/update_service.go */

package cmd

import (
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecs"
	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var updateServiceCmd = &cobra.Command{
	Use:   "update-service",
	Short: "Register a task definition revision for the resolved version and redeploy the service",
	Long: `Enter the pipeline at the registration stage: derive a new task definition
revision pointing at the resolved version's image (which must already be
published), update the service, and wait for stabilization.

The version is re-derived from git (or --tag); nothing is shared with prior
build or push runs.`,
	Args: cobra.NoArgs,
	RunE: hermes.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "region", "cluster", "service", "ecr")
		if err != nil {
			return err
		}

		version, err := resolveVersion(rc, cfg.TagOverride)
		if err != nil {
			return err
		}

		sess, err := cfg.NewSession()
		if err != nil {
			return err
		}
		if err := cfg.ResolveRegistry(rc, sts.New(sess)); err != nil {
			return err
		}

		platform := ecs.NewClient(awsecs.New(sess))
		imageRef := cfg.ImageReference(version)

		taskDef, err := platform.RegisterRevision(rc, cfg, imageRef)
		if err != nil {
			return err
		}

		otelzap.Ctx(rc.Ctx).Info("Task definition registered",
			zap.String("task_definition", taskDef),
			zap.String("image_ref", imageRef),
		)

		return platform.Deploy(rc, cfg, taskDef)
	}),
}
