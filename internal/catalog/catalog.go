// Package catalog caches the models served by the generation service and
// tracks which one the session uses.
package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/ollama"
)

// DefaultTTL is how long a fetched model list stays fresh.
const DefaultTTL = 300 * time.Second

// Lister fetches the model listing from the generation service.
type Lister interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
}

// Selector asks the user to pick one item. It returns apperr.ErrUserCancelled
// when the user aborts.
type Selector interface {
	Select(ctx context.Context, title string, items []models.Choice) (int, error)
}

type entry struct {
	models    []ollama.Model
	fetchedAt time.Time
}

// Catalog is safe for concurrent use.
type Catalog struct {
	lister Lister
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	cache    entry
	selected string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL sets the cache lifetime; non-positive values keep DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithModel preselects name without validating it; SetModel validates.
func WithModel(name string) Option {
	return func(c *Catalog) { c.selected = name }
}

// New builds a catalog backed by lister.
func New(lister Lister, logger *zap.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		lister: lister,
		logger: log.OrNop(logger),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListModels returns model names, refetching when the cache is empty or expired.
func (c *Catalog) ListModels(ctx context.Context) ([]string, error) {
	available, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return names(available), nil
}

func (c *Catalog) snapshot(ctx context.Context) ([]ollama.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache.models) > 0 && c.now().Sub(c.cache.fetchedAt) < c.ttl {
		return slices.Clone(c.cache.models), nil
	}

	fetched, err := c.lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	c.cache = entry{models: slices.Clone(fetched), fetchedAt: c.now()}
	c.logger.Debug("model catalog refreshed", zap.Int("count", len(fetched)))
	return slices.Clone(fetched), nil
}

// Invalidate drops the cached listing.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = entry{}
}

// SetModel selects name after checking the service offers it. A name
// missing from a cached listing is checked once more against a fresh one.
func (c *Catalog) SetModel(ctx context.Context, name string) error {
	available, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(available, name) {
		// the model may have been pulled after the listing was cached
		c.Invalidate()
		if available, err = c.ListModels(ctx); err != nil {
			return err
		}
	}
	if !slices.Contains(available, name) {
		return errors.WithStack(&apperr.InvalidModelError{Name: name, Available: available})
	}

	c.mu.Lock()
	c.selected = name
	c.mu.Unlock()
	c.logger.Debug("model selected", zap.String("model", name))
	return nil
}

// PromptForSelection lets the user pick one of the available models.
func (c *Catalog) PromptForSelection(ctx context.Context, sel Selector) (string, error) {
	available, err := c.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", apperr.ErrNoModelsAvailable
	}

	items := make([]models.Choice, len(available))
	for i, m := range available {
		items[i] = models.Choice{ID: m.Name, Label: m.Name, Description: humanSize(m.Size)}
	}

	idx, err := sel.Select(ctx, "Select a model", items)
	if err != nil {
		if errors.Is(err, apperr.ErrUserCancelled) {
			return "", errors.Wrap(err, "model selection")
		}
		return "", err
	}
	if idx < 0 || idx >= len(items) {
		return "", errors.Wrapf(apperr.ErrInvalidUserInput, "selection out of range: %d", idx+1)
	}
	return items[idx].ID, nil
}

// CurrentModel returns the selected model, if any.
func (c *Catalog) CurrentModel() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

func names(list []ollama.Model) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.Name
	}
	return out
}

func humanSize(b int64) string {
	if b <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(b))
}
