// pkg/docker/build.go

package docker

import (
	"context"
	"io"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types/image"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

const buildTimeout = 30 * time.Minute

// APIClient is the slice of the Docker API the builder needs; *client.Client
// satisfies it.
type APIClient interface {
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, image string, options image.PushOptions) (io.ReadCloser, error)
}

// Builder produces locally tagged, registry-qualified images from the
// current working tree.
type Builder struct {
	api APIClient
	dir string
}

func NewBuilder(api APIClient) *Builder {
	return &Builder{api: api, dir: "."}
}

// Build runs the container build for one version and applies both the local
// short tag and the fully qualified registry tag. Returns the registry
// reference. The build itself goes through the docker CLI; tagging uses the
// API client.
func (b *Builder) Build(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, version string) (string, error) {
	localTag := cfg.LocalImage(version)
	imageRef := cfg.ImageReference(version)

	if cfg.DryRun {
		rc.Log.Info("Dry run: would build image",
			zap.String("local_tag", localTag),
			zap.String("image_ref", imageRef),
		)
		return imageRef, nil
	}

	if err := execute.CommandExists("docker"); err != nil {
		return "", err
	}

	rc.Log.Info("Building image", zap.String("local_tag", localTag))

	output, err := execute.Run(rc.Ctx, execute.Options{
		Command: "docker",
		Args:    []string{"build", "-t", localTag, "."},
		Dir:     b.dir,
		Timeout: buildTimeout,
		Capture: true,
		Logger:  rc.Log,
	})
	if err != nil {
		summary := hermes_err.ExtractSummary(output, 3)
		return "", hermes_err.NewExternalError("image build failed: "+summary, err)
	}

	if err := b.api.ImageTag(rc.Ctx, localTag, imageRef); err != nil {
		return "", cerr.Wrapf(err, "tag %s as %s", localTag, imageRef)
	}

	rc.Log.Info("Image built", zap.String("image_ref", imageRef))
	return imageRef, nil
}
