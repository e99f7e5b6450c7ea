package ecs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/ecs/ecsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecs"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

func testRC(t *testing.T) *hermes_io.RuntimeContext {
	rc := hermes_io.NewContext(context.Background(), t.Name())
	rc.Log = zaptest.NewLogger(t)
	return rc
}

func testCfg() *config.RunConfiguration {
	return &config.RunConfiguration{
		Region:       "us-east-1",
		Cluster:      "cluster-bia",
		Service:      "bia",
		Repository:   "bia-app",
		TaskFamily:   "bia-tf",
		RegistryHost: "12345.dkr.ecr.us-east-1.amazonaws.com",
	}
}

type mockECSClient struct {
	ecsiface.ECSAPI

	describeOut *awsecs.DescribeTaskDefinitionOutput
	describeErr error

	registered  *awsecs.RegisterTaskDefinitionInput
	registerOut *awsecs.RegisterTaskDefinitionOutput
	registerErr error

	updated   *awsecs.UpdateServiceInput
	updateErr error

	waited  bool
	waitErr error

	calls int
}

func (m *mockECSClient) DescribeTaskDefinitionWithContext(ctx aws.Context, in *awsecs.DescribeTaskDefinitionInput, opts ...request.Option) (*awsecs.DescribeTaskDefinitionOutput, error) {
	m.calls++
	return m.describeOut, m.describeErr
}

func (m *mockECSClient) RegisterTaskDefinitionWithContext(ctx aws.Context, in *awsecs.RegisterTaskDefinitionInput, opts ...request.Option) (*awsecs.RegisterTaskDefinitionOutput, error) {
	m.calls++
	m.registered = in
	return m.registerOut, m.registerErr
}

func (m *mockECSClient) UpdateServiceWithContext(ctx aws.Context, in *awsecs.UpdateServiceInput, opts ...request.Option) (*awsecs.UpdateServiceOutput, error) {
	m.calls++
	m.updated = in
	return &awsecs.UpdateServiceOutput{}, m.updateErr
}

func (m *mockECSClient) WaitUntilServicesStableWithContext(ctx aws.Context, in *awsecs.DescribeServicesInput, opts ...request.WaiterOption) error {
	m.calls++
	m.waited = true
	return m.waitErr
}

// describedTaskDefinition builds a task definition the way the platform
// returns it, with every platform-assigned field populated.
func describedTaskDefinition() *awsecs.TaskDefinition {
	return &awsecs.TaskDefinition{
		Family: aws.String("bia-tf"),
		ContainerDefinitions: []*awsecs.ContainerDefinition{
			{
				Name:  aws.String("bia"),
				Image: aws.String("12345.dkr.ecr.us-east-1.amazonaws.com/bia-app:0000000"),
			},
			{
				Name:  aws.String("sidecar"),
				Image: aws.String("public.ecr.aws/aws-observability/aws-otel-collector:latest"),
			},
		},
		Cpu:                     aws.String("256"),
		Memory:                  aws.String("512"),
		NetworkMode:             aws.String("awsvpc"),
		ExecutionRoleArn:        aws.String("arn:aws:iam::12345:role/exec"),
		TaskRoleArn:             aws.String("arn:aws:iam::12345:role/task"),
		RequiresCompatibilities: []*string{aws.String("FARGATE")},

		// Assigned at registration time; must never be sent back.
		TaskDefinitionArn:  aws.String("arn:aws:ecs:us-east-1:12345:task-definition/bia-tf:7"),
		Revision:           aws.Int64(7),
		Status:             aws.String("ACTIVE"),
		Compatibilities:    []*string{aws.String("EC2"), aws.String("FARGATE")},
		RequiresAttributes: []*awsecs.Attribute{{Name: aws.String("ecs.capability.execution-role-ecr-pull")}},
		RegisteredAt:       aws.Time(time.Now()),
		RegisteredBy:       aws.String("arn:aws:iam::12345:user/someone"),
		DeregisteredAt:     aws.Time(time.Now()),
	}
}

func TestRegisterRevision(t *testing.T) {
	mock := &mockECSClient{
		describeOut: &awsecs.DescribeTaskDefinitionOutput{TaskDefinition: describedTaskDefinition()},
		registerOut: &awsecs.RegisterTaskDefinitionOutput{
			TaskDefinition: &awsecs.TaskDefinition{
				Family:   aws.String("bia-tf"),
				Revision: aws.Int64(8),
			},
		},
	}

	imageRef := "12345.dkr.ecr.us-east-1.amazonaws.com/bia-app:abc123f"
	id, err := ecs.NewClient(mock).RegisterRevision(testRC(t), testCfg(), imageRef)
	require.NoError(t, err)
	assert.Equal(t, "bia-tf:8", id)

	require.NotNil(t, mock.registered)
	assert.Equal(t, imageRef, aws.StringValue(mock.registered.ContainerDefinitions[0].Image))
	// Sidecar containers keep their image.
	assert.Equal(t,
		"public.ecr.aws/aws-observability/aws-otel-collector:latest",
		aws.StringValue(mock.registered.ContainerDefinitions[1].Image))
	assert.Equal(t, "bia-tf", aws.StringValue(mock.registered.Family))
	assert.Equal(t, "256", aws.StringValue(mock.registered.Cpu))
}

func TestRegisterRevision_PlatformAssignedFieldsNeverSent(t *testing.T) {
	mock := &mockECSClient{
		describeOut: &awsecs.DescribeTaskDefinitionOutput{TaskDefinition: describedTaskDefinition()},
		registerOut: &awsecs.RegisterTaskDefinitionOutput{
			TaskDefinition: &awsecs.TaskDefinition{Family: aws.String("bia-tf"), Revision: aws.Int64(8)},
		},
	}

	_, err := ecs.NewClient(mock).RegisterRevision(testRC(t), testCfg(), "x/y:z")
	require.NoError(t, err)

	raw, err := json.Marshal(mock.registered)
	require.NoError(t, err)
	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &sent))

	for _, field := range []string{
		"TaskDefinitionArn",
		"Revision",
		"Status",
		"Compatibilities",
		"RequiresAttributes",
		"RegisteredAt",
		"RegisteredBy",
		"DeregisteredAt",
	} {
		assert.NotContains(t, sent, field)
	}
}

func TestRegisterRevision_FamilyMissing(t *testing.T) {
	mock := &mockECSClient{
		describeErr: awserr.New(awsecs.ErrCodeClientException, "Unable to describe task definition", nil),
	}

	_, err := ecs.NewClient(mock).RegisterRevision(testRC(t), testCfg(), "x/y:z")
	require.Error(t, err)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryPlatform, classified.Category)
	assert.Contains(t, classified.Message, "bia-tf")
}

func TestRegisterRevision_RegistrationRejected(t *testing.T) {
	mock := &mockECSClient{
		describeOut: &awsecs.DescribeTaskDefinitionOutput{TaskDefinition: describedTaskDefinition()},
		registerErr: awserr.New(awsecs.ErrCodeInvalidParameterException, "bad parameter", nil),
	}

	_, err := ecs.NewClient(mock).RegisterRevision(testRC(t), testCfg(), "x/y:z")
	require.Error(t, err)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryPlatform, classified.Category)
	assert.Equal(t, 1, classified.ExitCode())
}

func TestRegisterRevision_DryRunSkipsAllCalls(t *testing.T) {
	mock := &mockECSClient{}
	cfg := testCfg()
	cfg.DryRun = true

	id, err := ecs.NewClient(mock).RegisterRevision(testRC(t), cfg, "x/y:z")
	require.NoError(t, err)
	assert.Equal(t, "bia-tf:dry-run", id)
	assert.Zero(t, mock.calls)
}
