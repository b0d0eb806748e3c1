// Package git wraps the git commands lazycommit needs: staged diffs, commit,
// branch queries and push.
package git

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/shell"
)

const (
	cmdStagedNames    = "git -c core.quotePath=false diff --cached --name-only"
	cmdInsideWorkTree = "git rev-parse --is-inside-work-tree"
	cmdCurrentBranch  = "git rev-parse --abbrev-ref HEAD"
	cmdBranches       = "git branch --format='%(refname:short)'"
	cmdGitDir         = "git rev-parse --absolute-git-dir"
	cmdPush           = "git push"
)

// Service runs git through a shell.Runner.
type Service struct {
	runner shell.Runner
	logger *zap.Logger
	limit  int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds the number of per-file diff fetches in flight.
// Values below one keep the default.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// DefaultConcurrency returns NumCPU*2 clamped to [4, 32].
func DefaultConcurrency() int {
	limit := runtime.NumCPU() * 2
	if limit < 4 {
		limit = 4
	}
	if limit > 32 {
		limit = 32
	}
	return limit
}

// NewService constructs a Service and sets up concurrency limits.
func NewService(runner shell.Runner, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		runner: runner,
		logger: log.OrNop(logger),
		limit:  DefaultConcurrency(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StagedFiles lists staged paths and fetches each diff concurrently.
// The result keeps git's listing order. A path whose diff cannot be read
// gets a placeholder diff instead of failing the whole collection.
func (s *Service) StagedFiles(ctx context.Context) ([]models.StagedFile, error) {
	listing, listErr := s.runner.Execute(ctx, cmdStagedNames)

	inside, err := s.runner.Execute(ctx, cmdInsideWorkTree)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, errors.WithSecondaryError(apperr.ErrInvalidRepository, err)
	}
	if strings.TrimSpace(inside) != "true" {
		return nil, apperr.ErrInvalidRepository
	}
	if listErr != nil {
		return nil, errors.Wrap(listErr, "list staged files")
	}

	paths := splitLines(listing)
	files := make([]models.StagedFile, len(paths))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i] = s.stagedFile(ctx, path)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("collected staged files", zap.Int("count", len(files)), zap.Int("limit", s.limit))
	return files, nil
}

func (s *Service) stagedFile(ctx context.Context, path string) models.StagedFile {
	file := models.StagedFile{Path: path, Diff: fallbackDiff(path)}

	quoted, err := shell.Quote(path)
	if err != nil {
		s.logger.Debug("cannot quote staged path", zap.String("path", path), zap.Error(err))
		return file
	}
	diff, err := s.runner.Execute(ctx, "git diff --cached "+quoted)
	if err != nil {
		s.logger.Debug("per-file diff failed, using placeholder", zap.String("path", path), zap.Error(err))
		return file
	}
	file.Diff = diff
	return file
}

func fallbackDiff(path string) string {
	return path + " added"
}

// Commit records the staged changes with message.
func (s *Service) Commit(ctx context.Context, message string) error {
	quoted, err := shell.Quote(message)
	if err != nil {
		return errors.Wrap(apperr.ErrInvalidUserInput, err.Error())
	}
	if _, err := s.runner.Execute(ctx, "git commit -m "+quoted); err != nil {
		return err
	}
	s.logger.Info("committed", zap.String("message", message))
	return nil
}

// Push pushes branch, or the current branch when branch is empty. The
// upstream is set only when origin has no branch of that name yet.
func (s *Service) Push(ctx context.Context, branch string) error {
	if branch == "" {
		current, err := s.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		branch = current
	}
	quoted, err := shell.Quote(branch)
	if err != nil {
		return errors.Wrap(apperr.ErrInvalidUserInput, err.Error())
	}

	heads, err := s.runner.Execute(ctx, "git ls-remote --heads origin "+quoted)
	if err != nil {
		return err
	}

	cmd := cmdPush
	if strings.TrimSpace(heads) == "" {
		cmd = fmt.Sprintf("git push --set-upstream origin %s", quoted)
	}
	if _, err := s.runner.Execute(ctx, cmd); err != nil {
		return err
	}
	s.logger.Info("pushed", zap.String("branch", branch), zap.String("cmd", cmd))
	return nil
}

// CurrentBranch returns the checked out branch name.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	out, err := s.runner.Execute(ctx, cmdCurrentBranch)
	if err != nil {
		return "", errors.WithSecondaryError(apperr.ErrBranchResolution, err)
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", apperr.ErrBranchResolution
	}
	return branch, nil
}

// Branches returns local branch names in git's order.
func (s *Service) Branches(ctx context.Context) ([]string, error) {
	out, err := s.runner.Execute(ctx, cmdBranches)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// GitDir returns the absolute path of the repository's git directory.
func (s *Service) GitDir(ctx context.Context) (string, error) {
	out, err := s.runner.Execute(ctx, cmdGitDir)
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(out)
	if dir == "" {
		return "", apperr.ErrInvalidRepository
	}
	return dir, nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
