// pkg/gitrev/gitrev.go

package gitrev

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// shortLen is the number of hash characters used as a release version.
const shortLen = 7

// Resolve returns the release version for this run: the override verbatim
// when one is configured, otherwise the short form of the current HEAD
// revision. It has no side effects.
func Resolve(rc *hermes_io.RuntimeContext, dir, override string) (string, error) {
	if override != "" {
		rc.Log.Info("Using explicit version override", zap.String("version", override))
		return override, nil
	}

	version, err := headShort(dir)
	if err != nil {
		return "", err
	}

	rc.Log.Info("Resolved version from source control", zap.String("version", version))
	return version, nil
}

func headShort(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if cerr.Is(err, git.ErrRepositoryNotExists) {
			return "", hermes_err.NewGitError(
				"not a versioned checkout: no git repository found",
				err,
				"Run hermes from inside the application's git checkout",
				"Or pass an explicit version with --tag",
			)
		}
		return "", cerr.Wrap(err, "open git repository")
	}

	head, err := repo.Head()
	if err != nil {
		return "", hermes_err.NewGitError(
			"not a versioned checkout: repository has no HEAD commit",
			err,
			"Commit at least once before releasing",
			"Or pass an explicit version with --tag",
		)
	}

	hash := head.Hash().String()
	if len(hash) < shortLen {
		return "", cerr.Newf("unexpectedly short revision %q", hash)
	}
	return hash[:shortLen], nil
}
