package git

import (
	"context"
	"sync"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
)

// Fake is an in-memory repository for tests of higher layers.
type Fake struct {
	mu sync.Mutex

	Files          []models.StagedFile
	BranchList     []string
	Current        string
	RemoteBranches map[string]bool

	StagedErr error
	CommitErr error
	PushErr   error

	StagedCalls int
	Commits     []string
	Pushes      []string
	// Upstream records whether each push set the upstream branch.
	Upstream []bool
}

// StagedFiles returns a copy of Files.
func (f *Fake) StagedFiles(context.Context) ([]models.StagedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StagedCalls++
	if f.StagedErr != nil {
		return nil, f.StagedErr
	}
	return append([]models.StagedFile(nil), f.Files...), nil
}

// Commit records message.
func (f *Fake) Commit(_ context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.Commits = append(f.Commits, message)
	return nil
}

// Push records branch and marks it as present on the remote.
func (f *Fake) Push(ctx context.Context, branch string) error {
	if branch == "" {
		current, err := f.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		branch = current
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PushErr != nil {
		return f.PushErr
	}
	if f.RemoteBranches == nil {
		f.RemoteBranches = make(map[string]bool)
	}
	f.Upstream = append(f.Upstream, !f.RemoteBranches[branch])
	f.RemoteBranches[branch] = true
	f.Pushes = append(f.Pushes, branch)
	return nil
}

// CurrentBranch returns Current or ErrBranchResolution when it is empty.
func (f *Fake) CurrentBranch(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Current == "" {
		return "", apperr.ErrBranchResolution
	}
	return f.Current, nil
}

// Branches returns a copy of BranchList.
func (f *Fake) Branches(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.BranchList...), nil
}
