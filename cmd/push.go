/* cmd/push.go */

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/docker"
	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish the already-built versioned image to ECR",
	Long: `Authenticate to ECR and upload the image for the resolved version.

The image must already carry the registry-qualified tag, normally from a
prior 'hermes build'. Re-pushing an existing version overwrites the tag;
the registry makes this safe.`,
	Args: cobra.NoArgs,
	RunE: hermes.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "region", "ecr")
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
		registry, err := newRegistry(rc, cfg, sess)
		if err != nil {
			return err
		}
		imageRef := cfg.ImageReference(version)

		if cfg.DryRun {
			rc.Log.Info("Dry run: would push image", zap.String("image_ref", imageRef))
			return nil
		}

		cred, err := registry.AuthCredential(rc)
		if err != nil {
			return err
		}

		dockerCli, err := docker.New(rc.Ctx)
		if err != nil {
			return err
		}
		if err := docker.NewBuilder(dockerCli).Push(rc, imageRef, cred); err != nil {
			return err
		}

		otelzap.Ctx(rc.Ctx).Info("Push complete", zap.String("image_ref", imageRef))
		return nil
	}),
}
