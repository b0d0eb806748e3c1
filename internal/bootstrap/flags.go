package bootstrap

import (
	"strconv"

	"github.com/cockroachdb/errors"
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Ollama model to use (skips the model prompt)",
		},
		&urfavecli.StringFlag{
			Name:  "host",
			Usage: "Ollama host",
		},
		&urfavecli.IntFlag{
			Name:  "port",
			Usage: "Ollama port",
		},
		&urfavecli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the generated message without committing",
		},
		&urfavecli.BoolFlag{
			Name:  "push",
			Usage: "Push after committing without asking",
		},
		&urfavecli.BoolFlag{
			Name:  "no-push",
			Usage: "Never push after committing",
		},
		&urfavecli.BoolFlag{
			Name:  "plain",
			Usage: "Use line-based prompts instead of the TUI",
		},
		&urfavecli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log progress to stderr",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=lc.key=value",
		},
	}
}

// flagOverrides turns dedicated flags into config overrides appended after
// the --config values, so flags take precedence over every other source.
func flagOverrides(cmd *urfavecli.Command) ([]string, error) {
	overrides := cmd.StringSlice("config")
	add := func(key, value string) {
		overrides = append(overrides, "lc."+key+"="+value)
	}

	if cmd.IsSet("model") {
		add("model", cmd.String("model"))
	}
	if cmd.IsSet("host") {
		add("ollama_host", cmd.String("host"))
	}
	if cmd.IsSet("port") {
		add("ollama_port", strconv.Itoa(cmd.Int("port")))
	}
	if cmd.IsSet("theme") {
		add("theme", cmd.String("theme"))
	}
	if cmd.IsSet("debug-log") {
		add("debug_log", cmd.String("debug-log"))
	}
	if cmd.Bool("plain") {
		add("interface", "plain")
	}

	switch push, noPush := cmd.Bool("push"), cmd.Bool("no-push"); {
	case push && noPush:
		return nil, errors.New("--push and --no-push cannot be used together")
	case push:
		add("push", "always")
	case noPush:
		add("push", "never")
	}

	return overrides, nil
}
