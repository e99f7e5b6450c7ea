// pkg/pipeline/rollback.go

package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// recentVersionsShown caps the remediation listing when a rollback target is
// missing from the registry.
const recentVersionsShown = 10

// Rollback redeploys a previously published version. It is symmetric with a
// forward release except Building and Publishing are skipped: the image must
// already exist in the registry.
func (o *Orchestrator) Rollback(rc *hermes_io.RuntimeContext, version string) (*Release, error) {
	if version == "" {
		return nil, hermes_err.NewValidationError(
			"rollback requires a target version",
			"Run 'hermes list-versions' to see what is available",
		)
	}

	release := &Release{
		ID:        uuid.New().String(),
		Version:   version,
		StartTime: time.Now(),
	}

	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Rollback started",
		zap.String("release_id", release.ID),
		zap.String("version", version),
	)

	if !o.cfg.DryRun {
		exists, err := o.registry.ImageExists(rc, o.cfg.Repository, version)
		if err != nil {
			return release, err
		}
		if !exists {
			return release, o.versionNotFound(rc, version)
		}
	}
	release.ImageRef = o.cfg.ImageReference(version)

	err := o.runStage(rc, release, StageRegistering, func() error {
		taskDef, err := o.platform.RegisterRevision(rc, o.cfg, release.ImageRef)
		if err != nil {
			return err
		}
		release.TaskDefinition = taskDef
		return nil
	})
	if err != nil {
		return release, err
	}

	err = o.runStage(rc, release, StageDeploying, func() error {
		return o.platform.Deploy(rc, o.cfg, release.TaskDefinition)
	})
	if err != nil && !hermes_err.IsWarning(err) {
		return release, err
	}

	logger.Info("Rollback complete",
		zap.String("version", version),
		zap.String("task_definition", release.TaskDefinition),
	)
	return release, err
}

// versionNotFound builds the fatal rollback error, listing the most recent
// published versions as remediation.
func (o *Orchestrator) versionNotFound(rc *hermes_io.RuntimeContext, version string) error {
	remediation := []string{"Pick one of the versions below and retry"}

	available, err := o.registry.ListVersions(rc, o.cfg.Repository, recentVersionsShown)
	if err != nil {
		rc.Log.Warn("Could not list available versions", zap.Error(err))
		remediation = []string{"Run 'hermes list-versions' to see what is available"}
	}
	for _, tag := range available {
		remediation = append(remediation,
			fmt.Sprintf("%s  (pushed %s)", tag.Tag, tag.PushedAt.Format(time.RFC3339)))
	}

	return hermes_err.NewPlatformError(
		fmt.Sprintf("version %q is not present in repository %q", version, o.cfg.Repository),
		nil,
		remediation...,
	)
}
