package bootstrap

import (
	"context"

	urfavecli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/catalog"
	"github.com/chmouel/lazycommit/internal/commitmsg"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/ollama"
	"github.com/chmouel/lazycommit/internal/session"
	"github.com/chmouel/lazycommit/internal/shell"
	"github.com/chmouel/lazycommit/internal/ui"
)

// newDeps builds the session collaborators; tests swap it for fakes.
var newDeps = buildDeps

func (a *app) runSession(ctx context.Context, cmd *urfavecli.Command) error {
	env, err := a.setup(cmd)
	if err != nil {
		return err
	}

	deps, cleanup, err := newDeps(ctx, env)
	if err != nil {
		return err
	}
	defer cleanup()

	ctrl := session.New(deps, session.Options{
		DryRun:     cmd.Bool("dry-run"),
		Push:       env.cfg.PushMode(),
		ServiceURL: ollama.BaseURL(env.cfg.OllamaHost, env.cfg.OllamaPort),
	}, env.logger)

	res := ctrl.Run(ctx)
	env.logger.Debug("session finished",
		zap.Stringer("state", res.State),
		zap.Int("steps", len(res.Trace)),
		zap.Error(res.Err),
	)
	return res.Err
}

func newOllamaClient(env *environment) *ollama.Client {
	client := ollama.NewClient(ollama.BaseURL(env.cfg.OllamaHost, env.cfg.OllamaPort), nil, env.logger)
	client.SetTimeouts(env.cfg.ListTimeout, env.cfg.GenerateTimeout)
	return client
}

func newCatalog(env *environment, client catalog.Lister) *catalog.Catalog {
	opts := []catalog.Option{catalog.WithTTL(env.cfg.CatalogTTL)}
	if env.cfg.Model != "" {
		opts = append(opts, catalog.WithModel(env.cfg.Model))
	}
	return catalog.New(client, env.logger, opts...)
}

func newPrompter(env *environment) session.Prompter {
	useTUI := env.cfg.Interface == config.InterfaceTUI ||
		(env.cfg.Interface == config.InterfaceAuto && interactive(env.stdio))
	if useTUI {
		return ui.NewTUI(env.stdio.In, env.stdio.Out, env.thm).
			WithCounter(session.PromptDescription, commitmsg.DescriptionLimit)
	}
	return ui.NewPlain(env.stdio.In, env.stdio.Out, ui.WithFzf(env.cfg.UseFzf))
}

func buildDeps(ctx context.Context, env *environment) (session.Deps, func(), error) {
	runner := shell.NewExecRunner(env.logger, shell.WithTimeout(env.cfg.CommandTimeout))
	repo := git.NewService(runner, env.logger, git.WithConcurrency(env.cfg.DiffConcurrency))

	client := newOllamaClient(env)
	cat := newCatalog(env, client)
	gen := commitmsg.New(client, cat, env.logger).WithPromptOptions(commitmsg.PromptOptions{
		MaxDiffChars: env.cfg.MaxDiffChars,
		ScopeHints:   true,
	})

	deps := session.Deps{
		Repo:      repo,
		Catalog:   cat,
		Generator: gen,
		Prompter:  newPrompter(env),
		Display:   ui.NewView(env.stdio.Out, env.thm, env.cfg.ShowIcons),
		Progress:  ui.NewSpinner(env.stdio.Out, env.thm),
	}

	cleanup := func() {}
	watcher := git.NewIndexWatcher(repo, env.logger)
	if err := watcher.Start(ctx); err != nil {
		// outside a repository; StagedFiles reports that properly
		env.logger.Debug("index watcher disabled", zap.Error(err))
	} else {
		deps.Watcher = watcher
		cleanup = watcher.Stop
	}

	return deps, cleanup, nil
}
