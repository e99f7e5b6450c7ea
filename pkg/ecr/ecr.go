// pkg/ecr/ecr.go
//
// Thin typed wrapper over the ECR API: credential exchange for the Docker
// registry, tag existence checks, and version listings.

package ecr

import (
	"encoding/base64"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ecr"
	"github.com/aws/aws-sdk-go/service/ecr/ecriface"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Client wraps the ECR API for one repository's worth of operations.
type Client struct {
	api ecriface.ECRAPI
}

func NewClient(api ecriface.ECRAPI) *Client {
	return &Client{api: api}
}

// Credential is a decoded ECR authorization token: the registry endpoint
// plus the username and password Docker needs to push to it.
type Credential struct {
	Host     string
	Username string
	Password string
}

// AuthCredential exchanges AWS credentials for a short-lived registry
// credential. The token is base64 "user:password".
func (c *Client) AuthCredential(rc *hermes_io.RuntimeContext) (*Credential, error) {
	out, err := c.api.GetAuthorizationTokenWithContext(rc.Ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, hermes_err.NewAuthError("registry credential exchange failed", err)
	}
	if len(out.AuthorizationData) == 0 {
		return nil, hermes_err.NewAuthError("registry returned no authorization data", nil)
	}

	data := out.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(aws.StringValue(data.AuthorizationToken))
	if err != nil {
		return nil, hermes_err.NewAuthError("registry token is not valid base64", err)
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return nil, hermes_err.NewAuthError("registry token has unexpected format", nil)
	}

	host := strings.TrimPrefix(aws.StringValue(data.ProxyEndpoint), "https://")
	rc.Log.Debug("Obtained registry credential", zap.String("registry", host))

	return &Credential{
		Host:     host,
		Username: parts[0],
		Password: parts[1],
	}, nil
}

// ImageExists reports whether an image with the given tag is present in the
// repository. A missing repository is treated the same as a missing tag.
func (c *Client) ImageExists(rc *hermes_io.RuntimeContext, repository, tag string) (bool, error) {
	_, err := c.api.DescribeImagesWithContext(rc.Ctx, &ecr.DescribeImagesInput{
		RepositoryName: aws.String(repository),
		ImageIds:       []*ecr.ImageIdentifier{{ImageTag: aws.String(tag)}},
	})
	if err != nil {
		var aerr awserr.Error
		if cerr.As(err, &aerr) {
			switch aerr.Code() {
			case ecr.ErrCodeImageNotFoundException, ecr.ErrCodeRepositoryNotFoundException:
				return false, nil
			}
		}
		return false, cerr.Wrapf(err, "describe image %s:%s", repository, tag)
	}
	return true, nil
}

// TagInfo is one published version of the repository's image.
type TagInfo struct {
	Tag      string
	Digest   string
	PushedAt time.Time
}

// ListVersions returns the repository's tags sorted newest-first by push
// time, capped at limit (0 means no cap).
func (c *Client) ListVersions(rc *hermes_io.RuntimeContext, repository string, limit int) ([]TagInfo, error) {
	var tags []TagInfo

	input := &ecr.DescribeImagesInput{
		RepositoryName: aws.String(repository),
		Filter:         &ecr.DescribeImagesFilter{TagStatus: aws.String(ecr.TagStatusTagged)},
	}
	err := c.api.DescribeImagesPagesWithContext(rc.Ctx, input,
		func(page *ecr.DescribeImagesOutput, lastPage bool) bool {
			for _, detail := range page.ImageDetails {
				for _, tag := range detail.ImageTags {
					tags = append(tags, TagInfo{
						Tag:      aws.StringValue(tag),
						Digest:   aws.StringValue(detail.ImageDigest),
						PushedAt: aws.TimeValue(detail.ImagePushedAt),
					})
				}
			}
			return true
		})
	if err != nil {
		return nil, cerr.Wrapf(err, "list images in %s", repository)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].PushedAt.After(tags[j].PushedAt)
	})
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}
