// pkg/docker/push.go

package docker

import (
	"encoding/base64"
	"encoding/json"
	"io"

	cerr "github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/jsonmessage"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecr"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Push uploads the image to the registry using the given credential.
// Re-pushing an existing tag overwrites it; the registry makes this safe.
func (b *Builder) Push(rc *hermes_io.RuntimeContext, imageRef string, cred *ecr.Credential) error {
	auth, err := encodeAuth(cred)
	if err != nil {
		return err
	}

	rc.Log.Info("Pushing image", zap.String("image_ref", imageRef))

	rd, err := b.api.ImagePush(rc.Ctx, imageRef, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return hermes_err.NewExternalError("image push failed", err)
	}
	defer rd.Close()

	if err := drainPushStream(rc, rd); err != nil {
		return hermes_err.NewExternalError("image push failed", err)
	}

	rc.Log.Info("Image pushed", zap.String("image_ref", imageRef))
	return nil
}

// encodeAuth converts a registry credential into the X-Registry-Auth header
// payload the Docker API expects.
func encodeAuth(cred *ecr.Credential) (string, error) {
	buf, err := json.Marshal(registry.AuthConfig{
		Username:      cred.Username,
		Password:      cred.Password,
		ServerAddress: cred.Host,
	})
	if err != nil {
		return "", cerr.Wrap(err, "encode registry auth")
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// drainPushStream consumes the daemon's progress stream and surfaces any
// embedded error message. Progress lines are logged at debug level only.
func drainPushStream(rc *hermes_io.RuntimeContext, rd io.Reader) error {
	dec := json.NewDecoder(rd)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return cerr.Wrap(err, "read push progress stream")
		}
		if msg.Error != nil {
			return cerr.New(msg.Error.Message)
		}
		if msg.Status != "" {
			rc.Log.Debug("Push progress", zap.String("status", msg.Status), zap.String("id", msg.ID))
		}
	}
}
