// pkg/config/config.go

package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RunConfiguration is the resolved set of target parameters for one
// invocation. It is built once from flag values merged with HERMES_*
// environment defaults, and read-only thereafter.
type RunConfiguration struct {
	Region      string
	Cluster     string
	Service     string
	Repository  string
	TaskFamily  string
	TagOverride string
	DryRun      bool

	// AccountID and RegistryHost are filled in lazily by ResolveRegistry;
	// commands that never touch the registry leave them empty.
	AccountID    string
	RegistryHost string
}

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// FromCommand merges flag values with environment defaults into a
// RunConfiguration. Environment variables use the HERMES_ prefix
// (HERMES_REGION, HERMES_CLUSTER, ...); explicit flags win.
func FromCommand(cmd *cobra.Command) (*RunConfiguration, error) {
	v := viper.New()
	v.SetEnvPrefix("HERMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"region", "cluster", "service", "ecr", "family", "tag", "dry-run"} {
		if err := bindFlag(v, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}

	cfg := &RunConfiguration{
		Region:      v.GetString("region"),
		Cluster:     v.GetString("cluster"),
		Service:     v.GetString("service"),
		Repository:  v.GetString("ecr"),
		TaskFamily:  v.GetString("family"),
		TagOverride: v.GetString("tag"),
		DryRun:      v.GetBool("dry-run"),
	}

	if cfg.TaskFamily == "" && cfg.Service != "" {
		cfg.TaskFamily = cfg.Service + "-tf"
	}

	if cfg.TagOverride != "" && !tagPattern.MatchString(cfg.TagOverride) {
		return nil, hermes_err.NewValidationError(
			fmt.Sprintf("invalid image tag %q", cfg.TagOverride),
			"Tags may contain letters, digits, '.', '_' and '-', up to 128 characters",
		)
	}

	return cfg, nil
}

// bindFlag registers one flag as the override for its viper key. Commands
// that do not define a flag simply fall through to the environment.
func bindFlag(v *viper.Viper, f *pflag.Flag) error {
	if f == nil {
		return nil
	}
	return v.BindPFlag(f.Name, f)
}

// Require validates that the named parameters are present, returning a usage
// error before any external call is made.
func (c *RunConfiguration) Require(params ...string) error {
	var missing []string
	for _, p := range params {
		switch p {
		case "region":
			if c.Region == "" {
				missing = append(missing, "--region")
			}
		case "cluster":
			if c.Cluster == "" {
				missing = append(missing, "--cluster")
			}
		case "service":
			if c.Service == "" {
				missing = append(missing, "--service")
			}
		case "ecr":
			if c.Repository == "" {
				missing = append(missing, "--ecr")
			}
		}
	}
	if len(missing) > 0 {
		return hermes_err.NewValidationError(
			fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")),
			"Pass the flags listed above, or set the matching HERMES_* environment variables",
		)
	}
	return nil
}

// LocalImage returns the short local tag for a version, e.g. bia-app:abc123f.
func (c *RunConfiguration) LocalImage(version string) string {
	return fmt.Sprintf("%s:%s", c.Repository, version)
}

// ImageReference returns the fully qualified registry reference for a
// version. ResolveRegistry must have run first.
func (c *RunConfiguration) ImageReference(version string) string {
	return fmt.Sprintf("%s/%s:%s", c.RegistryHost, c.Repository, version)
}
