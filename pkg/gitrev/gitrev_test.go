package gitrev_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/gitrev"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

func testRC(t *testing.T) *hermes_io.RuntimeContext {
	rc := hermes_io.NewContext(context.Background(), t.Name())
	rc.Log = zaptest.NewLogger(t)
	return rc
}

// initRepo creates a repository with a single commit and returns its path
// and the full commit hash.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("Dockerfile")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestResolve_OverrideWinsRegardlessOfRepoState(t *testing.T) {
	// No repository at all; the override must still come back verbatim.
	version, err := gitrev.Resolve(testRC(t), t.TempDir(), "v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", version)
}

func TestResolve_ShortHashFromHead(t *testing.T) {
	dir, full := initRepo(t)

	version, err := gitrev.Resolve(testRC(t), dir, "")
	require.NoError(t, err)
	assert.Len(t, version, 7)
	assert.Equal(t, full[:7], version)
}

func TestResolve_NotARepository(t *testing.T) {
	_, err := gitrev.Resolve(testRC(t), t.TempDir(), "")
	require.Error(t, err)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryGit, classified.Category)
	assert.NotEmpty(t, classified.Remediation)
}

func TestResolve_EmptyRepositoryHasNoHead(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = gitrev.Resolve(testRC(t), dir, "")
	require.Error(t, err)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryGit, classified.Category)
}
