package models

import "strings"

// CommitType is one of the closed set of conventional commit types.
type CommitType string

// Commit types accepted in generated messages.
const (
	CommitFeat     CommitType = "feat"
	CommitFix      CommitType = "fix"
	CommitDocs     CommitType = "docs"
	CommitStyle    CommitType = "style"
	CommitRefactor CommitType = "refactor"
	CommitTest     CommitType = "test"
	CommitChore    CommitType = "chore"
	CommitBuild    CommitType = "build"
)

var commitTypeDescriptions = map[CommitType]string{
	CommitFeat:     "New feature",
	CommitFix:      "Bug fix",
	CommitDocs:     "Documentation",
	CommitStyle:    "Code style",
	CommitRefactor: "Code refactoring",
	CommitTest:     "Testing",
	CommitChore:    "Maintenance",
	CommitBuild:    "Build",
}

// AllCommitTypes returns every commit type in display order.
func AllCommitTypes() []CommitType {
	return []CommitType{
		CommitFeat,
		CommitFix,
		CommitDocs,
		CommitStyle,
		CommitRefactor,
		CommitTest,
		CommitChore,
		CommitBuild,
	}
}

// Description returns the human description of t.
func (t CommitType) Description() string {
	return commitTypeDescriptions[t]
}

// Valid reports whether t belongs to the enumeration.
func (t CommitType) Valid() bool {
	_, ok := commitTypeDescriptions[t]
	return ok
}

// ParseCommitType matches s case-insensitively against the enumeration.
func ParseCommitType(s string) (CommitType, bool) {
	t := CommitType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}
