package commitmsg

import (
	"strings"
	"unicode"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
)

const fence = "```"

// ParseReply extracts a commit message from free-form model output.
//
// Only the first fenced block and the first colon are considered; replies
// with several candidates are not disambiguated.
func ParseReply(reply string) (models.CommitMessage, error) {
	text := stripCodeFences(strings.TrimSpace(reply))

	head, tail, ok := strings.Cut(text, ":")
	if !ok {
		return models.CommitMessage{}, apperr.NewMalformedReply(apperr.ReasonMissingDescription, reply)
	}

	var msg models.CommitMessage
	head = sanitizeHead(head)
	if typ, scope, hasScope := strings.Cut(head, "("); hasScope {
		ct, ok := models.ParseCommitType(typ)
		if !ok {
			return models.CommitMessage{}, apperr.NewMalformedReply(apperr.ReasonInvalidTypeOrScope, reply)
		}
		msg.Type = ct
		msg.Scope = strings.TrimSuffix(scope, ")")
	} else {
		ct, ok := models.ParseCommitType(head)
		if !ok {
			return models.CommitMessage{}, apperr.NewMalformedReply(apperr.ReasonInvalidType, reply)
		}
		msg.Type = ct
	}

	msg.Description = strings.TrimSpace(tail)
	if msg.Description == "" {
		return models.CommitMessage{}, apperr.NewMalformedReply(apperr.ReasonMissingDescription, reply)
	}
	return msg, nil
}

// stripCodeFences prefers the body of the first ``` block and drops any
// remaining backticks.
func stripCodeFences(text string) string {
	if !strings.Contains(text, "`") {
		return text
	}
	if _, rest, ok := strings.Cut(text, fence); ok {
		body, _, _ := strings.Cut(rest, fence)
		// An info string such as "text" or "git" sits on the opening line.
		if first, after, multiline := strings.Cut(body, "\n"); multiline && isInfoString(first) {
			body = after
		}
		text = body
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "`", ""))
}

func isInfoString(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	return !strings.ContainsAny(line, ": \t")
}

func sanitizeHead(head string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '(' || r == ')' {
			return r
		}
		return -1
	}, head)
}
