// pkg/hermes_cli/wrap.go

package hermes_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/spf13/cobra"
)

// Wrap adapts a RuntimeContext handler to a cobra RunE, adding panic
// recovery and end-of-command accounting.
func Wrap(fn func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := hermes_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		return fn(rc, cmd, args)
	}
}
