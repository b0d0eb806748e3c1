// Package bootstrap wires configuration, logging and the session
// collaborators behind the lazycommit command line.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	urfavecli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/buildinfo"
	"github.com/chmouel/lazycommit/internal/completion"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/theme"
	"github.com/chmouel/lazycommit/internal/ui"
)

// IO holds the streams a run reads from and writes to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// environment is what every command needs once flags and config are resolved.
type environment struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	thm    *theme.Theme
	stdio  IO
}

func init() {
	// -v belongs to --verbose
	urfavecli.VersionFlag = &urfavecli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

type app struct {
	stdio IO
	sink  *log.DebugLogger
}

// Run parses args, runs the matching command and returns the exit code.
func Run(ctx context.Context, args []string, stdio IO) int {
	a := &app{stdio: stdio, sink: log.NewDebugLogger()}
	defer func() { _ = a.sink.Close() }()

	err := a.rootCommand().Run(ctx, args)
	if err == nil {
		return apperr.ExitOK
	}

	errView := ui.NewView(stdio.Err, theme.GetTheme(theme.DefaultDark()), false)
	if apperr.IsCancelled(err) {
		errView.Notice("Cancelled.")
	} else {
		errView.Error(err)
	}
	return apperr.ExitCode(err)
}

func (a *app) rootCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "lazycommit",
		Usage:     "Generate conventional commit messages for staged changes with a local Ollama model",
		Version:   buildinfo.Version(),
		Reader:    a.stdio.In,
		Writer:    a.stdio.Out,
		ErrWriter: a.stdio.Err,
		Flags:     globalFlags(),
		Commands: []*urfavecli.Command{
			a.modelsCommand(),
			a.configCommand(),
		},
		Action:                a.runSession,
		EnableShellCompletion: true,
		ShellComplete: func(_ context.Context, cmd *urfavecli.Command) {
			for _, s := range completeArgs(os.Args) {
				fmt.Fprintln(cmd.Root().Writer, s)
			}
		},
		// errors are reported once by Run
		ExitErrHandler: func(context.Context, *urfavecli.Command, error) {},
	}
}

// setup resolves configuration for cmd and prepares the debug log.
func (a *app) setup(cmd *urfavecli.Command) (*environment, error) {
	logger := log.New(a.sink, log.Options{Verbose: cmd.Bool("verbose"), Stderr: a.stdio.Err})

	overrides, err := flagOverrides(cmd)
	if err != nil {
		_ = a.sink.SetFile("")
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: cmd.String("config-file"),
		Overrides:  overrides,
	})
	if err != nil {
		_ = a.sink.SetFile("")
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if err := a.sink.SetFile(cfg.DebugLog); err != nil {
		fmt.Fprintf(a.stdio.Err, "Error opening debug log file %q: %v\n", cfg.DebugLog, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	thm, _ := theme.Lookup(cfg.Theme)
	logger.Debug("build", buildinfo.Get().Fields()...)
	logger.Debug("configuration loaded",
		zap.String("ollama_host", cfg.OllamaHost),
		zap.Int("ollama_port", cfg.OllamaPort),
		zap.String("model", cfg.Model),
		zap.String("interface", cfg.Interface),
		zap.String("push", cfg.Push),
	)

	return &environment{cfg: cfg, logger: logger, thm: thm, stdio: a.stdio}, nil
}

// completeArgs answers a completion request. The shell passes the words
// typed so far followed by the completion flag; a trailing partial flag is
// passed too.
func completeArgs(args []string) []string {
	if len(args) < 3 {
		return completion.Suggest("", "")
	}
	last := args[len(args)-2]
	if strings.HasPrefix(last, "--") {
		for _, f := range completion.GetFlags() {
			if "--"+f.Name == last {
				if f.HasValue {
					return completion.Suggest(last, "")
				}
				return completion.Suggest("", "")
			}
		}
		return completion.Suggest("", last)
	}
	return completion.Suggest("", "")
}

// interactive reports whether both ends of stdio are terminals.
func interactive(stdio IO) bool {
	return isTerminal(stdio.In) && isTerminal(stdio.Out)
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}
