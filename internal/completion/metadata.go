// Package completion describes lazycommit's flags for shell completion.
package completion

import (
	"strings"

	"github.com/chmouel/lazycommit/internal/theme"
)

// FlagInfo contains metadata about a command-line flag for completion generation.
type FlagInfo struct {
	Name        string   // Flag name without dashes
	Description string   // Human-readable description
	HasValue    bool     // true for string flags, false for bool flags
	ValueHint   string   // Hint for value type (e.g., "PATH", "NAME")
	Values      []string // Enumerated values for completion (e.g., theme names)
}

// Subcommands lists the commands offered at the top level.
var Subcommands = []string{"models", "config", "completion"}

// GetFlags returns metadata for all lazycommit command-line flags.
func GetFlags() []FlagInfo {
	return []FlagInfo{
		{Name: "model", Description: "Ollama model to use", HasValue: true, ValueHint: "NAME"},
		{Name: "host", Description: "Ollama host", HasValue: true, ValueHint: "HOST"},
		{Name: "port", Description: "Ollama port", HasValue: true, ValueHint: "PORT"},
		{Name: "dry-run", Description: "Print the generated message without committing"},
		{Name: "push", Description: "Push after committing without asking"},
		{Name: "no-push", Description: "Never push after committing"},
		{Name: "plain", Description: "Use line-based prompts instead of the TUI"},
		{Name: "verbose", Description: "Log progress to stderr"},
		{Name: "debug-log", Description: "Path to debug log file", HasValue: true, ValueHint: "PATH"},
		{
			Name:        "theme",
			Description: "Override UI theme",
			HasValue:    true,
			ValueHint:   "NAME",
			Values:      append([]string{theme.AutoName}, theme.AvailableThemes()...),
		},
		{Name: "config-file", Description: "Path to configuration file", HasValue: true, ValueHint: "FILE"},
		{
			Name:        "config",
			Description: "Override a config value",
			HasValue:    true,
			ValueHint:   "lc.KEY=VALUE",
			Values: []string{
				"lc.ollama_host=", "lc.ollama_port=", "lc.model=", "lc.catalog_ttl=",
				"lc.list_timeout=", "lc.generate_timeout=", "lc.command_timeout=",
				"lc.diff_concurrency=", "lc.max_diff_chars=", "lc.debug_log=", "lc.theme=",
				"lc.show_icons=", "lc.interface=", "lc.use_fzf=", "lc.push=",
			},
		},
		{Name: "version", Description: "Print version information"},
	}
}

// Suggest returns candidates for the word being completed. prev is the
// word before it and cur the partial word, possibly empty.
func Suggest(prev, cur string) []string {
	flags := GetFlags()

	if name, ok := strings.CutPrefix(prev, "--"); ok {
		for _, f := range flags {
			if f.Name == name && f.HasValue {
				return filterPrefix(f.Values, cur)
			}
		}
	}

	if strings.HasPrefix(cur, "-") {
		names := make([]string, 0, len(flags))
		for _, f := range flags {
			names = append(names, "--"+f.Name)
		}
		return filterPrefix(names, cur)
	}

	return filterPrefix(Subcommands, cur)
}

func filterPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
