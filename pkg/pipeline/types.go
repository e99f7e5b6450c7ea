// pkg/pipeline/types.go

package pipeline

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/ecr"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Stage names one step of the release pipeline.
type Stage string

const (
	StageResolving   Stage = "Resolving"
	StageBuilding    Stage = "Building"
	StagePublishing  Stage = "Publishing"
	StageRegistering Stage = "Registering"
	StageDeploying   Stage = "Deploying"
	StageDone        Stage = "Done"
)

// StageStatus is the terminal state of one executed stage.
type StageStatus string

const (
	StatusRunning   StageStatus = "running"
	StatusSucceeded StageStatus = "succeeded"
	StatusFailed    StageStatus = "failed"
	StatusWarning   StageStatus = "warning"
	StatusSkipped   StageStatus = "skipped"
)

// StageResult records one stage's execution.
type StageResult struct {
	Name      Stage
	Status    StageStatus
	StartTime time.Time
	EndTime   time.Time
	Error     string
}

// Release is the record of one pipeline run. Nothing is persisted between
// invocations; the record exists for logging and tests.
type Release struct {
	ID             string
	Version        string
	ImageRef       string
	TaskDefinition string
	StartTime      time.Time
	Stages         []StageResult
}

// VersionFunc resolves the release version for a run.
type VersionFunc func(rc *hermes_io.RuntimeContext, override string) (string, error)

// ImageBuilder builds, tags and uploads versioned images.
type ImageBuilder interface {
	Build(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, version string) (string, error)
	Push(rc *hermes_io.RuntimeContext, imageRef string, cred *ecr.Credential) error
}

// Registry answers questions about published versions and issues push
// credentials.
type Registry interface {
	AuthCredential(rc *hermes_io.RuntimeContext) (*ecr.Credential, error)
	ImageExists(rc *hermes_io.RuntimeContext, repository, tag string) (bool, error)
	ListVersions(rc *hermes_io.RuntimeContext, repository string, limit int) ([]ecr.TagInfo, error)
}

// Platform registers task definition revisions and redeploys services.
type Platform interface {
	RegisterRevision(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, imageRef string) (string, error)
	Deploy(rc *hermes_io.RuntimeContext, cfg *config.RunConfiguration, taskDefID string) error
}
