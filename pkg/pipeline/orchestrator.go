// pkg/pipeline/orchestrator.go
//
// The release orchestrator runs the five pipeline stages in order. Each
// stage's failure is fatal and halts the run; there is no resumption from a
// partial failure. A fresh invocation restarts from Resolving.

package pipeline

import (
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Orchestrator composes the release components into the forward pipeline
// and the rollback path.
type Orchestrator struct {
	cfg      *config.RunConfiguration
	resolve  VersionFunc
	builder  ImageBuilder
	registry Registry
	platform Platform
}

func NewOrchestrator(cfg *config.RunConfiguration, resolve VersionFunc, builder ImageBuilder, registry Registry, platform Platform) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		resolve:  resolve,
		builder:  builder,
		registry: registry,
		platform: platform,
	}
}

// Run executes a full forward release: Resolving, Building, Publishing,
// Registering, Deploying. The returned Release records every stage even
// when the run fails partway. A stabilization warning from Deploying is
// returned alongside the completed release; it is not a failure.
func (o *Orchestrator) Run(rc *hermes_io.RuntimeContext) (*Release, error) {
	release := &Release{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
	}

	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Release started",
		zap.String("release_id", release.ID),
		zap.String("repository", o.cfg.Repository),
		zap.Bool("dry_run", o.cfg.DryRun),
	)

	err := o.runStage(rc, release, StageResolving, func() error {
		version, err := o.resolve(rc, o.cfg.TagOverride)
		if err != nil {
			return err
		}
		release.Version = version
		return nil
	})
	if err != nil {
		return release, err
	}

	err = o.runStage(rc, release, StageBuilding, func() error {
		imageRef, err := o.builder.Build(rc, o.cfg, release.Version)
		if err != nil {
			return err
		}
		release.ImageRef = imageRef
		return nil
	})
	if err != nil {
		return release, err
	}

	err = o.runStage(rc, release, StagePublishing, func() error {
		return o.publish(rc, release.ImageRef)
	})
	if err != nil {
		return release, err
	}

	err = o.runStage(rc, release, StageRegistering, func() error {
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

	logger.Info("Release complete",
		zap.String("release_id", release.ID),
		zap.String("version", release.Version),
		zap.String("task_definition", release.TaskDefinition),
	)
	return release, err
}

// publish authenticates to the registry and uploads the image. Dry runs skip
// the credential exchange entirely.
func (o *Orchestrator) publish(rc *hermes_io.RuntimeContext, imageRef string) error {
	if o.cfg.DryRun {
		rc.Log.Info("Dry run: would push image", zap.String("image_ref", imageRef))
		return nil
	}

	cred, err := o.registry.AuthCredential(rc)
	if err != nil {
		return err
	}
	return o.builder.Push(rc, imageRef, cred)
}

// runStage executes one stage, recording timing and status on the release
// record. Failures come back wrapped with the stage name.
func (o *Orchestrator) runStage(rc *hermes_io.RuntimeContext, release *Release, stage Stage, fn func() error) error {
	logger := otelzap.Ctx(rc.Ctx)

	result := StageResult{
		Name:      stage,
		Status:    StatusRunning,
		StartTime: time.Now(),
	}
	logger.Info("Stage started", zap.String("stage", string(stage)))

	err := fn()
	result.EndTime = time.Now()

	switch {
	case err == nil:
		result.Status = StatusSucceeded
		logger.Info("Stage complete",
			zap.String("stage", string(stage)),
			zap.Duration("duration", result.EndTime.Sub(result.StartTime)),
		)
	case hermes_err.IsWarning(err):
		result.Status = StatusWarning
		result.Error = err.Error()
		logger.Warn("Stage completed with warning",
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
	default:
		result.Status = StatusFailed
		result.Error = err.Error()
		logger.Error("Stage failed",
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		err = cerr.Wrapf(err, "stage %s failed", stage)
	}

	release.Stages = append(release.Stages, result)
	return err
}
