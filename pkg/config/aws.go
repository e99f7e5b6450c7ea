// pkg/config/aws.go

package config

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// NewSession builds an AWS session for the configured region. Credentials
// come from the environment or the shared credential chain, never from
// hermes itself.
func (c *RunConfiguration) NewSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(c.Region)})
	if err != nil {
		return nil, cerr.Wrap(err, "create AWS session")
	}
	return sess, nil
}

// ResolveRegistry fills in AccountID and RegistryHost using STS. The
// registry host is {account}.dkr.ecr.{region}.amazonaws.com.
func (c *RunConfiguration) ResolveRegistry(rc *hermes_io.RuntimeContext, svc stsiface.STSAPI) error {
	if c.RegistryHost != "" {
		return nil
	}

	out, err := svc.GetCallerIdentityWithContext(rc.Ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		if c.DryRun {
			// Dry runs still print well-formed references when no AWS
			// credentials are reachable.
			rc.Log.Warn("Could not resolve account ID, using placeholder", zap.Error(err))
			c.AccountID = "000000000000"
			c.RegistryHost = fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", c.AccountID, c.Region)
			return nil
		}
		return cerr.Wrap(err, "resolve AWS account ID")
	}

	c.AccountID = aws.StringValue(out.Account)
	c.RegistryHost = fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", c.AccountID, c.Region)

	rc.Log.Debug("Resolved registry host",
		zap.String("account_id", c.AccountID),
		zap.String("registry_host", c.RegistryHost),
	)
	return nil
}
