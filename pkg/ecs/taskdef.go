// pkg/ecs/taskdef.go
//
// Task definition derivation: fetch the active revision for a family, carry
// over only the registerable fields, swap the image, and register the result
// as a new immutable revision.

package ecs

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/ecs/ecsiface"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Client wraps the ECS API for task definition and service operations.
type Client struct {
	api ecsiface.ECSAPI
}

func NewClient(api ecsiface.ECSAPI) *Client {
	return &Client{api: api}
}

// DryRunRevision is the placeholder revision suffix returned by dry runs.
const DryRunRevision = "dry-run"

// RegisterRevision derives a new task definition revision from the family's
// current active one, pointing the primary container at imageRef. Returns
// the composite identifier family:revision.
func (c *Client) RegisterRevision(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, imageRef string) (string, error) {
	if cfg.DryRun {
		rc.Log.Info("Dry run: would register new task definition revision",
			zap.String("family", cfg.TaskFamily),
			zap.String("image_ref", imageRef),
		)
		return fmt.Sprintf("%s:%s", cfg.TaskFamily, DryRunRevision), nil
	}

	current, err := c.describeFamily(rc, cfg.TaskFamily)
	if err != nil {
		return "", err
	}

	input := registerInput(current)
	if len(input.ContainerDefinitions) == 0 {
		return "", hermes_err.NewPlatformError(
			fmt.Sprintf("task family %q has no container definitions", cfg.TaskFamily), nil)
	}
	// The first container is the one this tool releases; sidecars keep
	// whatever image they already run.
	input.ContainerDefinitions[0].Image = aws.String(imageRef)

	out, err := c.api.RegisterTaskDefinitionWithContext(rc.Ctx, input)
	if err != nil {
		return "", hermes_err.NewPlatformError(
			fmt.Sprintf("registration of task family %q was rejected", cfg.TaskFamily), err)
	}

	revision := aws.Int64Value(out.TaskDefinition.Revision)
	id := fmt.Sprintf("%s:%d", cfg.TaskFamily, revision)
	rc.Log.Info("Registered task definition revision",
		zap.String("task_definition", id),
		zap.String("image_ref", imageRef),
	)
	return id, nil
}

func (c *Client) describeFamily(rc *hermes_io.RuntimeContext, family string) (*ecs.TaskDefinition, error) {
	out, err := c.api.DescribeTaskDefinitionWithContext(rc.Ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(family),
	})
	if err != nil {
		return nil, hermes_err.NewPlatformError(
			fmt.Sprintf("task family %q was not found", family),
			err,
			"Register the family once through your infrastructure tooling before releasing with hermes",
		)
	}
	if out.TaskDefinition == nil {
		return nil, cerr.Newf("describe returned no task definition for family %q", family)
	}
	return out.TaskDefinition, nil
}

// registerInput copies only the registerable fields of a described task
// definition. Platform-assigned fields (ARN, revision, status,
// compatibilities, requires-attributes, timestamps, authorship) must never
// be sent back on register and are deliberately absent here.
func registerInput(td *ecs.TaskDefinition) *ecs.RegisterTaskDefinitionInput {
	return &ecs.RegisterTaskDefinitionInput{
		ContainerDefinitions:    td.ContainerDefinitions,
		Cpu:                     td.Cpu,
		EphemeralStorage:        td.EphemeralStorage,
		ExecutionRoleArn:        td.ExecutionRoleArn,
		Family:                  td.Family,
		InferenceAccelerators:   td.InferenceAccelerators,
		IpcMode:                 td.IpcMode,
		Memory:                  td.Memory,
		NetworkMode:             td.NetworkMode,
		PidMode:                 td.PidMode,
		PlacementConstraints:    td.PlacementConstraints,
		ProxyConfiguration:      td.ProxyConfiguration,
		RequiresCompatibilities: td.RequiresCompatibilities,
		RuntimePlatform:         td.RuntimePlatform,
		TaskRoleArn:             td.TaskRoleArn,
		Volumes:                 td.Volumes,
	}
}
