package ecs_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecs"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
)

func TestDeploy(t *testing.T) {
	mock := &mockECSClient{}

	err := ecs.NewClient(mock).Deploy(testRC(t), testCfg(), "bia-tf:8")
	require.NoError(t, err)

	require.NotNil(t, mock.updated)
	assert.Equal(t, "cluster-bia", aws.StringValue(mock.updated.Cluster))
	assert.Equal(t, "bia", aws.StringValue(mock.updated.Service))
	assert.Equal(t, "bia-tf:8", aws.StringValue(mock.updated.TaskDefinition))
	assert.True(t, mock.waited)
}

func TestDeploy_UpdateRejectedIsFatal(t *testing.T) {
	mock := &mockECSClient{
		updateErr: awserr.New(awsecs.ErrCodeServiceNotFoundException, "no such service", nil),
	}

	err := ecs.NewClient(mock).Deploy(testRC(t), testCfg(), "bia-tf:8")
	require.Error(t, err)
	assert.False(t, hermes_err.IsWarning(err))
	assert.False(t, mock.waited)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, 1, classified.ExitCode())
}

func TestDeploy_StabilizationTimeoutIsWarning(t *testing.T) {
	mock := &mockECSClient{
		waitErr: awserr.New(request.WaiterResourceNotReadyErrorCode, "exceeded wait attempts", nil),
	}

	err := ecs.NewClient(mock).Deploy(testRC(t), testCfg(), "bia-tf:8")
	require.Error(t, err)
	assert.True(t, hermes_err.IsWarning(err))
	assert.Zero(t, hermes_err.GetExitCode(err))
}

func TestDeploy_DryRunSkipsAllCalls(t *testing.T) {
	mock := &mockECSClient{}
	cfg := testCfg()
	cfg.DryRun = true

	err := ecs.NewClient(mock).Deploy(testRC(t), cfg, "bia-tf:dry-run")
	require.NoError(t, err)
	assert.Nil(t, mock.updated)
	assert.False(t, mock.waited)
}
