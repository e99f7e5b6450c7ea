// pkg/ecs/service.go

package ecs

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Deploy points the service at the given task definition revision and waits
// for the platform to report it stable. A waiter timeout is returned as a
// non-fatal warning: the update call itself succeeded and the deployment may
// still converge. Callers log it and stay on the success path.
func (c *Client) Deploy(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, taskDefID string) error {
	if cfg.DryRun {
		rc.Log.Info("Dry run: would update service",
			zap.String("cluster", cfg.Cluster),
			zap.String("service", cfg.Service),
			zap.String("task_definition", taskDefID),
		)
		return nil
	}

	_, err := c.api.UpdateServiceWithContext(rc.Ctx, &ecs.UpdateServiceInput{
		Cluster:        aws.String(cfg.Cluster),
		Service:        aws.String(cfg.Service),
		TaskDefinition: aws.String(taskDefID),
	})
	if err != nil {
		return hermes_err.NewPlatformError(
			fmt.Sprintf("service update for %s/%s was rejected", cfg.Cluster, cfg.Service), err)
	}

	rc.Log.Info("Service update accepted, waiting for stabilization",
		zap.String("cluster", cfg.Cluster),
		zap.String("service", cfg.Service),
		zap.String("task_definition", taskDefID),
	)

	err = c.api.WaitUntilServicesStableWithContext(rc.Ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cfg.Cluster),
		Services: []*string{aws.String(cfg.Service)},
	})
	if err != nil {
		// Not rolled back: convergence is unconfirmed, not failed.
		return hermes_err.NewWarning(
			fmt.Sprintf("service %s did not stabilize within the platform wait window", cfg.Service), err)
	}

	rc.Log.Info("Service stable", zap.String("service", cfg.Service))
	return nil
}
