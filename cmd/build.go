/* cmd/build.go */

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/docker"
	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and tag the versioned image without publishing it",
	Long: `Build a container image from the current working tree, applying both the
local short tag and the fully qualified registry tag.

The version comes from the current git revision unless --tag overrides it.
Nothing is pushed; use 'hermes push' or 'hermes deploy' for that.`,
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
		if _, err := newRegistry(rc, cfg, sess); err != nil {
			return err
		}

		dockerCli, err := docker.New(rc.Ctx)
		if err != nil {
			return err
		}

		imageRef, err := docker.NewBuilder(dockerCli).Build(rc, cfg, version)
		if err != nil {
			return err
		}

		otelzap.Ctx(rc.Ctx).Info("Build complete", zap.String("image_ref", imageRef))
		return nil
	}),
}
