// Package models defines the data objects shared across lazycommit packages.
package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StagedFile is one staged path with its cached diff text.
type StagedFile struct {
	Path string
	Diff string
}

// Scope derives a scope hint from the file name without its extension.
func (f StagedFile) Scope() string {
	base := filepath.Base(f.Path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// StagedPaths returns the paths of files in order.
func StagedPaths(files []StagedFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// CommitMessage is a conventional commit header.
type CommitMessage struct {
	Type        CommitType
	Scope       string
	Description string
}

// String renders the message as "type(scope): description".
// An empty scope keeps the parentheses.
func (m CommitMessage) String() string {
	return fmt.Sprintf("%s(%s): %s", m.Type, m.Scope, m.Description)
}
