package bootstrap

import (
	"context"
	"fmt"

	urfavecli "github.com/urfave/cli/v3"
)

func (a *app) modelsCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "models",
		Usage:  "List the models available on the Ollama server",
		Action: a.listModels,
	}
}

func (a *app) listModels(ctx context.Context, cmd *urfavecli.Command) error {
	env, err := a.setup(cmd)
	if err != nil {
		return err
	}

	cat := newCatalog(env, newOllamaClient(env))
	names, err := cat.ListModels(ctx)
	if err != nil {
		return err
	}

	current, _ := cat.CurrentModel()
	for _, name := range names {
		marker := "  "
		if name == current {
			marker = "* "
		}
		fmt.Fprintf(env.stdio.Out, "%s%s\n", marker, name)
	}
	return nil
}

func (a *app) configCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as YAML",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			env, err := a.setup(cmd)
			if err != nil {
				return err
			}
			out, err := env.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = env.stdio.Out.Write(out)
			return err
		},
	}
}
