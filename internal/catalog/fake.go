package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
)

// Fake is an in-memory catalog with a fixed model list.
type Fake struct {
	mu       sync.Mutex
	Models   []string
	Selected string
	ListErr  error
}

// ListModels returns a copy of Models.
func (f *Fake) ListModels(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.Models), nil
}

// SetModel selects name when it is one of Models.
func (f *Fake) SetModel(ctx context.Context, name string) error {
	available, err := f.ListModels(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(available, name) {
		return &apperr.InvalidModelError{Name: name, Available: available}
	}
	f.mu.Lock()
	f.Selected = name
	f.mu.Unlock()
	return nil
}

// PromptForSelection delegates to sel over Models.
func (f *Fake) PromptForSelection(ctx context.Context, sel Selector) (string, error) {
	available, err := f.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", apperr.ErrNoModelsAvailable
	}
	items := make([]models.Choice, len(available))
	for i, name := range available {
		items[i] = models.Choice{ID: name, Label: name}
	}
	idx, err := sel.Select(ctx, "Select a model", items)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(items) {
		return "", errors.Wrapf(apperr.ErrInvalidUserInput, "selection out of range: %d", idx+1)
	}
	return available[idx], nil
}

// CurrentModel returns Selected.
func (f *Fake) CurrentModel() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Selected, f.Selected != ""
}
