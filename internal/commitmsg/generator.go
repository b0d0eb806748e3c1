package commitmsg

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

// Client sends a prompt to the generation service.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ModelSource reports the model chosen for the session.
type ModelSource interface {
	CurrentModel() (string, bool)
}

// Generator builds prompts, calls the service and parses replies. It keeps
// no state between calls.
type Generator struct {
	client Client
	source ModelSource
	opts   PromptOptions
	logger *zap.Logger
}

// New returns a Generator using the default prompt options.
func New(client Client, source ModelSource, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		source: source,
		opts:   DefaultPromptOptions(),
		logger: log.OrNop(logger),
	}
}

// WithPromptOptions returns a copy of g using opts.
func (g *Generator) WithPromptOptions(opts PromptOptions) *Generator {
	clone := *g
	clone.opts = opts
	return &clone
}

// Generate produces a commit message for files.
func (g *Generator) Generate(ctx context.Context, files []models.StagedFile) (models.CommitMessage, error) {
	model, ok := g.source.CurrentModel()
	if !ok {
		return models.CommitMessage{}, apperr.ErrNoModelSelected
	}

	prompt := BuildPrompt(files, g.opts)
	g.logger.Debug("generating commit message",
		zap.String("model", model),
		zap.Int("files", len(files)),
		zap.Int("prompt_bytes", len(prompt)),
	)

	start := time.Now()
	reply, err := g.client.Generate(ctx, model, prompt)
	if err != nil {
		return models.CommitMessage{}, err
	}

	msg, err := ParseReply(reply)
	if err != nil {
		g.logger.Debug("unparseable reply", zap.String("reply", reply), zap.Error(err))
		return models.CommitMessage{}, err
	}
	g.logger.Debug("commit message generated",
		zap.Stringer("message", msg),
		zap.Duration("elapsed", time.Since(start)),
	)
	return msg, nil
}
