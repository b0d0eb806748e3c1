// Package buildinfo holds the version metadata of the lazycommit binary.
// main forwards the linker-injected values with Set; Enrich fills what the
// linker left unset from the Go build info.
package buildinfo

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

const unset = "unknown"

// Info describes one build.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
	// Dirty is set when the binary was built from a modified tree.
	Dirty bool
}

var current = Info{Version: "dev", Commit: "none", Date: unset, BuiltBy: unset}

// Set stores the build metadata received from linker-injected variables.
func Set(version, commit, date, builtBy string) {
	current = Info{Version: version, Commit: commit, Date: date, BuiltBy: builtBy}
}

// Get returns the recorded build metadata.
func Get() Info { return current }

// Version returns the build version string.
func Version() string { return current.Version }

// Enrich completes the commit, date and builder from the VCS stamps Go
// embeds in the binary. Values set by the linker are kept.
func Enrich() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	current = enrich(current, info)
}

func enrich(in Info, info *debug.BuildInfo) Info {
	out := in
	fromVCS := in.Commit == "none"
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if fromVCS {
				out.Commit = s.Value
			}
		case "vcs.time":
			if out.Date == unset {
				out.Date = s.Value
			}
		case "vcs.modified":
			if fromVCS {
				out.Dirty = s.Value == "true"
			}
		}
	}
	if out.BuiltBy == unset && info.GoVersion != "" {
		out.BuiltBy = info.GoVersion
	}
	return out
}

// String formats the build on one line for logs and bug reports.
func (i Info) String() string {
	commit := i.Commit
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit %s, built %s by %s)", i.Version, commit, i.Date, i.BuiltBy)
}

// Fields returns the build as structured log fields.
func (i Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", i.Version),
		zap.String("commit", i.Commit),
		zap.Bool("dirty", i.Dirty),
		zap.String("built", i.Date),
		zap.String("built_by", i.BuiltBy),
	}
}
