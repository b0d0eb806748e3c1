package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/shell"
)

func newFakeRepo(files ...string) *shell.Fake {
	listing := ""
	for _, f := range files {
		listing += f + "\n"
	}
	return shell.NewFake().
		On(cmdStagedNames, listing).
		On(cmdInsideWorkTree, "true\n")
}

func TestNewServiceDefaultConcurrency(t *testing.T) {
	service := NewService(shell.NewFake(), nil)

	expected := runtime.NumCPU() * 2
	if expected < 4 {
		expected = 4
	}
	if expected > 32 {
		expected = 32
	}
	assert.Equal(t, expected, service.limit)

	assert.Equal(t, 3, NewService(shell.NewFake(), nil, WithConcurrency(3)).limit)
	assert.Equal(t, expected, NewService(shell.NewFake(), nil, WithConcurrency(0)).limit)
}

func TestStagedFilesPreservesListingOrder(t *testing.T) {
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("pkg/file%02d.go", i)
	}
	runner := newFakeRepo(paths...)
	// Earlier files finish last.
	for i, p := range paths {
		runner.Set("git diff --cached "+p, shell.Response{
			Output: "+diff " + p,
			Delay:  time.Duration(len(paths)-i) * 5 * time.Millisecond,
		})
	}

	service := NewService(runner, zaptest.NewLogger(t), WithConcurrency(len(paths)))
	files, err := service.StagedFiles(context.Background())
	require.NoError(t, err)

	require.Len(t, files, len(paths))
	for i, f := range files {
		assert.Equal(t, paths[i], f.Path)
		assert.Equal(t, "+diff "+paths[i], f.Diff)
	}
}

func TestStagedFilesOrderWithNarrowLimit(t *testing.T) {
	runner := newFakeRepo("c.txt", "a.txt", "b.txt").
		Set("git diff --cached c.txt", shell.Response{Output: "c", Delay: 20 * time.Millisecond}).
		On("git diff --cached a.txt", "a").
		On("git diff --cached b.txt", "b")

	files, err := NewService(runner, nil, WithConcurrency(1)).StagedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt", "a.txt", "b.txt"}, models.StagedPaths(files))
}

func TestStagedFilesFallbackOnDiffFailure(t *testing.T) {
	runner := newFakeRepo("a.txt", "new file.txt").
		On("git diff --cached a.txt", "+hello").
		Fail("git diff --cached 'new file.txt'", 128, "fatal")

	files, err := NewService(runner, zaptest.NewLogger(t)).StagedFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "+hello", files[0].Diff)
	assert.Equal(t, "new file.txt added", files[1].Diff)
}

func TestStagedFilesInvalidRepository(t *testing.T) {
	runner := shell.NewFake().
		Fail(cmdStagedNames, 129, "not a git repository").
		Fail(cmdInsideWorkTree, 128, "fatal: not a git repository")

	_, err := NewService(runner, nil).StagedFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidRepository))
	assert.Equal(t, []string{cmdStagedNames, cmdInsideWorkTree}, runner.Calls())
}

func TestStagedFilesInsideGitDir(t *testing.T) {
	runner := shell.NewFake().On(cmdStagedNames, "").On(cmdInsideWorkTree, "false\n")

	_, err := NewService(runner, nil).StagedFiles(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrInvalidRepository))
}

func TestStagedFilesEmpty(t *testing.T) {
	files, err := NewService(newFakeRepo(), nil).StagedFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStagedFilesCancelled(t *testing.T) {
	runner := newFakeRepo("a.txt").
		Set("git diff --cached a.txt", shell.Response{Output: "a", Delay: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(runner, nil).StagedFiles(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPushSetsUpstreamWhenRemoteBranchMissing(t *testing.T) {
	runner := shell.NewFake().
		On("git ls-remote --heads origin feature-x", "").
		On("git push --set-upstream origin feature-x", "")

	require.NoError(t, NewService(runner, nil).Push(context.Background(), "feature-x"))

	assert.True(t, runner.Called("git push --set-upstream origin feature-x"))
	assert.False(t, runner.Called("git push"))
}

func TestPushPlainWhenRemoteBranchExists(t *testing.T) {
	runner := shell.NewFake().
		On("git ls-remote --heads origin main", "abc123\trefs/heads/main\n").
		On("git push", "")

	require.NoError(t, NewService(runner, nil).Push(context.Background(), "main"))

	assert.Equal(t, []string{"git ls-remote --heads origin main", "git push"}, runner.Calls())
}

func TestPushResolvesCurrentBranch(t *testing.T) {
	runner := shell.NewFake().
		On(cmdCurrentBranch, "topic\n").
		On("git ls-remote --heads origin topic", "").
		On("git push --set-upstream origin topic", "")

	require.NoError(t, NewService(runner, nil).Push(context.Background(), ""))
	assert.True(t, runner.Called("git push --set-upstream origin topic"))
}

func TestPushPropagatesFailure(t *testing.T) {
	runner := shell.NewFake().
		On("git ls-remote --heads origin main", "x\n").
		Fail("git push", 128, "Authentication failed")

	err := NewService(runner, nil).Push(context.Background(), "main")
	var failed *apperr.CommandFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Authentication failed", failed.Stderr)
	assert.Len(t, runner.Calls(), 2)
}

func TestCommitQuotesMessage(t *testing.T) {
	runner := shell.NewFake().On("git commit -m 'feat(parser): add hello constant'", "")

	err := NewService(runner, nil).Commit(context.Background(), "feat(parser): add hello constant")
	require.NoError(t, err)
}

func TestCommitPropagatesCommandFailed(t *testing.T) {
	runner := shell.NewFake().Fail("git commit -m 'fix(): x'", 1, "nothing to commit")

	err := NewService(runner, nil).Commit(context.Background(), "fix(): x")
	var failed *apperr.CommandFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 1, failed.ExitCode)
}

func TestCurrentBranch(t *testing.T) {
	branch, err := NewService(shell.NewFake().On(cmdCurrentBranch, " main \n"), nil).CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	_, err = NewService(shell.NewFake().On(cmdCurrentBranch, "\n"), nil).CurrentBranch(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrBranchResolution))

	_, err = NewService(shell.NewFake().Fail(cmdCurrentBranch, 128, "ambiguous"), nil).CurrentBranch(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrBranchResolution))
}

func TestBranchesTrimsAndFilters(t *testing.T) {
	runner := shell.NewFake().On(cmdBranches, "main\n  feature-x \n\n release\n")

	branches, err := NewService(runner, nil).Branches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "feature-x", "release"}, branches)
}

func TestFakeRepositoryPush(t *testing.T) {
	repo := &Fake{Current: "main", RemoteBranches: map[string]bool{"main": true}}

	require.NoError(t, repo.Push(context.Background(), ""))
	require.NoError(t, repo.Push(context.Background(), "feature-x"))

	assert.Equal(t, []string{"main", "feature-x"}, repo.Pushes)
	assert.Equal(t, []bool{false, true}, repo.Upstream)
}

func initTestRepo(t *testing.T) (string, *Service) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(dir, ".gitconfig-test"))
	runner := shell.NewExecRunner(zaptest.NewLogger(t), shell.WithDir(dir), shell.WithTimeout(30*time.Second))
	ctx := context.Background()
	for _, cmd := range []string{
		"git init -q",
		"git symbolic-ref HEAD refs/heads/trunk",
		"git config user.email test@example.com",
		"git config user.name Test",
		"git config commit.gpgsign false",
	} {
		_, err := runner.Execute(ctx, cmd)
		require.NoError(t, err, cmd)
	}
	return dir, NewService(runner, zaptest.NewLogger(t))
}

func TestServiceAgainstRealRepository(t *testing.T) {
	dir, service := initTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b c.txt"), []byte("spaced\n"), 0o600))
	_, err := service.runner.Execute(ctx, "git add a.txt 'b c.txt'")
	require.NoError(t, err)

	files, err := service.StagedFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Contains(t, files[0].Diff, "+hello")
	assert.Equal(t, "b c.txt", files[1].Path)
	assert.Contains(t, files[1].Diff, "+spaced")

	require.NoError(t, service.Commit(ctx, "feat(): it's a start"))

	branch, err := service.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trunk", branch)

	branches, err := service.Branches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"trunk"}, branches)

	log, err := service.runner.Execute(ctx, "git log -1 --format=%s")
	require.NoError(t, err)
	assert.Equal(t, "feat(): it's a start\n", log)

	gitDir, err := service.GitDir(ctx)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(gitDir))

	files, err = service.StagedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStagedFilesNonASCIIPath(t *testing.T) {
	dir, service := initTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "café.txt"), []byte("crème\n"), 0o600))
	_, err := service.runner.Execute(ctx, "git add café.txt")
	require.NoError(t, err)

	files, err := service.StagedFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "café.txt", files[0].Path)
	assert.Contains(t, files[0].Diff, "+crème")
}

func TestServiceOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	service := NewService(shell.NewExecRunner(nil, shell.WithDir(dir)), nil)

	_, err := service.StagedFiles(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrInvalidRepository))
}
