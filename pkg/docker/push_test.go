package docker_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/docker"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecr"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

func testRC(t *testing.T) *hermes_io.RuntimeContext {
	rc := hermes_io.NewContext(context.Background(), t.Name())
	rc.Log = zaptest.NewLogger(t)
	return rc
}

func testCred() *ecr.Credential {
	return &ecr.Credential{
		Host:     "12345.dkr.ecr.us-east-1.amazonaws.com",
		Username: "AWS",
		Password: "pw",
	}
}

type fakeAPI struct {
	tagged   [][2]string
	tagErr   error
	pushed   []string
	pushAuth string
	stream   string
	pushErr  error
}

func (f *fakeAPI) ImageTag(ctx context.Context, source, target string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tagged = append(f.tagged, [2]string{source, target})
	return nil
}

func (f *fakeAPI) ImagePush(ctx context.Context, img string, options image.PushOptions) (io.ReadCloser, error) {
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushed = append(f.pushed, img)
	f.pushAuth = options.RegistryAuth
	return io.NopCloser(strings.NewReader(f.stream)), nil
}

func TestPush(t *testing.T) {
	api := &fakeAPI{stream: `{"status":"Pushing"}` + "\n" + `{"status":"Pushed"}` + "\n"}
	builder := docker.NewBuilder(api)

	err := builder.Push(testRC(t), "12345.dkr.ecr.us-east-1.amazonaws.com/bia-app:abc123f", testCred())
	require.NoError(t, err)
	require.Len(t, api.pushed, 1)
	assert.NotEmpty(t, api.pushAuth, "push must carry the registry credential")
}

func TestPush_StreamErrorIsFatal(t *testing.T) {
	api := &fakeAPI{stream: `{"errorDetail":{"message":"denied: not authorized"},"error":"denied: not authorized"}` + "\n"}
	builder := docker.NewBuilder(api)

	err := builder.Push(testRC(t), "x/y:z", testCred())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryExternal, classified.Category)
}

func TestPush_APIErrorIsFatal(t *testing.T) {
	api := &fakeAPI{pushErr: errors.New("daemon unavailable")}
	builder := docker.NewBuilder(api)

	err := builder.Push(testRC(t), "x/y:z", testCred())
	require.Error(t, err)
}

func TestBuild_DryRunReturnsReferenceWithoutBuilding(t *testing.T) {
	api := &fakeAPI{}
	builder := docker.NewBuilder(api)

	cfg := &config.RunConfiguration{
		Region:       "us-east-1",
		Repository:   "bia-app",
		RegistryHost: "12345.dkr.ecr.us-east-1.amazonaws.com",
		DryRun:       true,
	}

	ref, err := builder.Build(testRC(t), cfg, "abc123f")
	require.NoError(t, err)
	assert.Equal(t, "12345.dkr.ecr.us-east-1.amazonaws.com/bia-app:abc123f", ref)
	assert.Empty(t, api.tagged, "dry run must not tag")
}
