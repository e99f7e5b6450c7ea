/* cmd/clients.go */

package cmd

import (
	"github.com/aws/aws-sdk-go/aws/session"
	awsecr "github.com/aws/aws-sdk-go/service/ecr"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/docker"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecr"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecs"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/gitrev"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/pipeline"
)

// resolveVersion adapts gitrev to the pipeline's VersionFunc, anchored at
// the current working directory.
func resolveVersion(rc *hermes_io.RuntimeContext, override string) (string, error) {
	return gitrev.Resolve(rc, ".", override)
}

// loadConfig builds the RunConfiguration and validates the parameters the
// command needs, before any external client is constructed.
func loadConfig(cmd *cobra.Command, required ...string) (*config.RunConfiguration, error) {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Require(required...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRegistry resolves the registry host and returns the ECR client.
func newRegistry(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, sess *session.Session) (*ecr.Client, error) {
	if err := cfg.ResolveRegistry(rc, sts.New(sess)); err != nil {
		return nil, err
	}
	return ecr.NewClient(awsecr.New(sess)), nil
}

// newOrchestrator wires the full pipeline: git revision resolution, Docker
// build/push, ECR and ECS clients.
func newOrchestrator(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration) (*pipeline.Orchestrator, error) {
	sess, err := cfg.NewSession()
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveRegistry(rc, sts.New(sess)); err != nil {
		return nil, err
	}

	dockerCli, err := docker.New(rc.Ctx)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(
		cfg,
		resolveVersion,
		docker.NewBuilder(dockerCli),
		ecr.NewClient(awsecr.New(sess)),
		ecs.NewClient(awsecs.New(sess)),
	), nil
}
