/* cmd/list_versions.go */

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	hermes "github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var listVersionsCmd = &cobra.Command{
	Use:   "list-versions",
	Short: "List the versions published in the ECR repository, newest first",
	Args:  cobra.NoArgs,
	RunE: hermes.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "region", "ecr")
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

		versions, err := registry.ListVersions(rc, cfg.Repository, 0)
		if err != nil {
			return err
		}

		if len(versions) == 0 {
			fmt.Printf("No versions published in %s\n", cfg.Repository)
			return nil
		}

		for _, v := range versions {
			digest := v.Digest
			if len(digest) > 19 {
				digest = digest[:19]
			}
			fmt.Printf("%-30s %-20s %s\n", v.Tag, digest, v.PushedAt.Format(time.RFC3339))
		}
		return nil
	}),
}
