// Package commitmsg turns staged diffs into a prompt and the model's reply
// into a conventional commit message.
package commitmsg

import (
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/chmouel/lazycommit/internal/models"
)

// DefaultMaxDiffChars caps each file's diff in the prompt.
const DefaultMaxDiffChars = 8000

// DescriptionLimit is the advisory description length given to the model.
const DescriptionLimit = 75

const truncatedMarker = "\n[truncated]"

// PromptOptions shape the generated prompt.
type PromptOptions struct {
	// MaxDiffChars truncates longer diffs; zero or less disables truncation.
	MaxDiffChars int
	// ScopeHints lists file-derived scopes the model may reuse.
	ScopeHints bool
}

// DefaultPromptOptions returns the options used by the CLI.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{MaxDiffChars: DefaultMaxDiffChars, ScopeHints: true}
}

var promptTemplate = template.Must(template.New("prompt").Parse(
	`Generate a concise commit message following the conventional commits format for these changes:
{{ range $i, $f := .Files }}{{ if $i }}

{{ end }}File: {{ $f.Path }}
Changes:
{{ $f.Diff }}{{ end }}

Response format: <type>(<scope>): <description>
Types: {{ range $i, $t := .Types }}{{ if $i }}, {{ end }}{{ $t }}{{ end }}
{{ range .Types }}- {{ . }}: {{ .Description }}
{{ end }}{{ if .Scopes }}Scope suggestions: {{ range $i, $s := .Scopes }}{{ if $i }}, {{ end }}{{ $s }}{{ end }}
{{ end }}Keep description under {{ .Limit }} characters.
Return only the commit message, nothing else.`))

type promptData struct {
	Files  []models.StagedFile
	Types  []models.CommitType
	Scopes []string
	Limit  int
}

// BuildPrompt renders the generation prompt for files.
func BuildPrompt(files []models.StagedFile, opts PromptOptions) string {
	data := promptData{
		Files: make([]models.StagedFile, len(files)),
		Types: models.AllCommitTypes(),
		Limit: DescriptionLimit,
	}
	seen := make(map[string]struct{})
	for i, f := range files {
		data.Files[i] = models.StagedFile{Path: f.Path, Diff: truncate(f.Diff, opts.MaxDiffChars)}
		if !opts.ScopeHints {
			continue
		}
		if scope := f.Scope(); scope != "" {
			if _, ok := seen[scope]; !ok {
				seen[scope] = struct{}{}
				data.Scopes = append(data.Scopes, scope)
			}
		}
	}

	var b strings.Builder
	// The template only ranges over plain data; Execute cannot fail on a strings.Builder.
	_ = promptTemplate.Execute(&b, data)
	return b.String()
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}
