package session

import (
	"fmt"
	"slices"
)

// State is a step of the commit session.
type State int

// Session states.
const (
	CollectingFiles State = iota
	SelectingModel
	Generating
	Reviewing
	Regenerating
	Editing
	Committing
	ShowingBranches
	Pushing
	Done
	Cancelled
	Failed
)

var stateNames = [...]string{
	CollectingFiles: "collecting-files",
	SelectingModel:  "selecting-model",
	Generating:      "generating",
	Reviewing:       "reviewing",
	Regenerating:    "regenerating",
	Editing:         "editing",
	Committing:      "committing",
	ShowingBranches: "showing-branches",
	Pushing:         "pushing",
	Done:            "done",
	Cancelled:       "cancelled",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the session ends in s.
func (s State) Terminal() bool {
	return s == Done || s == Cancelled || s == Failed
}

// transitions lists every legal edge. Cancelled and Failed are reachable
// from every non-terminal state and are added in init.
var transitions = map[State][]State{
	CollectingFiles: {SelectingModel},
	SelectingModel:  {Generating},
	Generating:      {Reviewing, Done},
	Reviewing:       {Committing, Regenerating, Editing},
	Regenerating:    {Generating},
	Editing:         {Reviewing},
	Committing:      {ShowingBranches},
	ShowingBranches: {Pushing, Done},
	Pushing:         {Done},
}

func init() {
	for from, to := range transitions {
		transitions[from] = append(to, Cancelled, Failed)
	}
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Edges returns the legal successors of s.
func Edges(s State) []State {
	return slices.Clone(transitions[s])
}
