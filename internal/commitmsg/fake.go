package commitmsg

import (
	"context"
	"sync"

	"github.com/chmouel/lazycommit/internal/models"
)

// FakeResult is one queued outcome of Fake.Generate.
type FakeResult struct {
	Message models.CommitMessage
	Err     error
}

// Fake returns queued results in order and repeats the last one when the
// queue runs out.
type Fake struct {
	mu      sync.Mutex
	results []FakeResult
	calls   [][]models.StagedFile
}

// NewFake queues results.
func NewFake(results ...FakeResult) *Fake {
	return &Fake{results: results}
}

// Generate records files and returns the next queued result.
func (f *Fake) Generate(_ context.Context, files []models.StagedFile) (models.CommitMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, files)
	if len(f.results) == 0 {
		return models.CommitMessage{}, nil
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r.Message, r.Err
}

// Calls returns the number of Generate invocations.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// LastFiles returns the files passed to the latest call.
func (f *Fake) LastFiles() []models.StagedFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
