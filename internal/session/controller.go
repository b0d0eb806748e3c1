// Package session drives one commit: collect staged files, pick a model,
// generate a message, let the user review it, commit and optionally push.
//
// The flow is an explicit state machine. Each state handler returns the next
// state and Run refuses any edge missing from the transition table.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/catalog"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

// Prompt titles, exported so prompters can style individual inputs.
const (
	PromptScope       = "Scope"
	PromptDescription = "Description"
)

// StaleIndexNotice warns that the index moved after the files were collected.
const StaleIndexNotice = "Staged changes were modified after collection; this message describes the earlier snapshot."

// Repository is the git surface the session needs.
type Repository interface {
	StagedFiles(ctx context.Context) ([]models.StagedFile, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, branch string) error
	CurrentBranch(ctx context.Context) (string, error)
	Branches(ctx context.Context) ([]string, error)
}

// Prompter asks the user questions.
type Prompter interface {
	catalog.Selector
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
	Input(ctx context.Context, prompt, def string) (string, error)
}

// ModelCatalog tracks the model used for generation.
type ModelCatalog interface {
	CurrentModel() (string, bool)
	SetModel(ctx context.Context, name string) error
	PromptForSelection(ctx context.Context, sel catalog.Selector) (string, error)
}

// MessageGenerator drafts a commit message from staged files.
type MessageGenerator interface {
	Generate(ctx context.Context, files []models.StagedFile) (models.CommitMessage, error)
}

// Display shows session output.
type Display interface {
	StagedFiles(files []models.StagedFile)
	ServiceURL(url string)
	Model(name string)
	Message(msg models.CommitMessage)
	Branches(branches []string, current string)
	Success(text string)
	Notice(text string)
}

// Progress shows activity during a blocking call; the returned func ends it.
type Progress interface {
	Start(label string) func()
}

// IndexWatcher reports whether the git index changed since the last Reset.
type IndexWatcher interface {
	Stale() bool
	Reset()
}

// PushMode decides what happens after a successful commit.
type PushMode string

// Push modes.
const (
	PushAsk    PushMode = "ask"
	PushAlways PushMode = "always"
	PushNever  PushMode = "never"
)

// ParsePushMode validates a configured push mode.
func ParsePushMode(s string) (PushMode, error) {
	switch m := PushMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PushAsk, PushAlways, PushNever:
		return m, nil
	case "":
		return PushAsk, nil
	default:
		return "", errors.Newf("invalid push mode %q (must be ask, always or never)", s)
	}
}

// Deps are the collaborators of a Controller. Watcher is optional.
type Deps struct {
	Repo      Repository
	Catalog   ModelCatalog
	Generator MessageGenerator
	Prompter  Prompter
	Display   Display
	Progress  Progress
	Watcher   IndexWatcher
}

// Options tune a session.
type Options struct {
	// DryRun stops after printing the generated message.
	DryRun bool
	Push   PushMode
	// ServiceURL is printed with the staged files.
	ServiceURL string
}

// Result is the outcome of Run.
type Result struct {
	State   State
	Err     error
	Message models.CommitMessage
	// Trace lists every state entered, starting with CollectingFiles.
	Trace []State
}

// Controller runs one session. It is not safe for concurrent use.
type Controller struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	files   []models.StagedFile
	message models.CommitMessage
	branch  string
}

// New returns a Controller. Missing Progress and Push settings get defaults.
func New(deps Deps, opts Options, logger *zap.Logger) *Controller {
	if deps.Progress == nil {
		deps.Progress = noProgress{}
	}
	if opts.Push == "" {
		opts.Push = PushAsk
	}
	return &Controller{deps: deps, opts: opts, logger: log.OrNop(logger)}
}

type noProgress struct{}

func (noProgress) Start(string) func() { return func() {} }

type handler func(*Controller, context.Context) (State, error)

var handlers = map[State]handler{
	CollectingFiles: (*Controller).collectFiles,
	SelectingModel:  (*Controller).selectModel,
	Generating:      (*Controller).generate,
	Reviewing:       (*Controller).review,
	Regenerating:    (*Controller).regenerate,
	Editing:         (*Controller).edit,
	Committing:      (*Controller).commit,
	ShowingBranches: (*Controller).showBranches,
	Pushing:         (*Controller).push,
}

// Run drives the session until it reaches Done, Cancelled or Failed.
func (c *Controller) Run(ctx context.Context) Result {
	state := CollectingFiles
	trace := []State{state}
	var runErr error

	for !state.Terminal() {
		next, err := handlers[state](c, ctx)
		switch {
		case err != nil && (apperr.IsCancelled(err) || ctx.Err() != nil):
			next, runErr = Cancelled, err
		case err != nil:
			next, runErr = Failed, err
		case !CanTransition(state, next):
			next, runErr = Failed, errors.AssertionFailedf("illegal transition %s -> %s", state, next)
		}
		c.logger.Debug("session transition",
			zap.Stringer("from", state),
			zap.Stringer("to", next),
			zap.Error(err),
		)
		state = next
		trace = append(trace, state)
	}

	return Result{State: state, Err: runErr, Message: c.message, Trace: trace}
}

// collectFiles takes the snapshot every later state works from.
func (c *Controller) collectFiles(ctx context.Context) (State, error) {
	files, err := c.deps.Repo.StagedFiles(ctx)
	if err != nil {
		return Failed, err
	}
	if len(files) == 0 {
		return Failed, apperr.ErrNoStagedFiles
	}
	c.files = files
	if c.deps.Watcher != nil {
		c.deps.Watcher.Reset()
	}
	c.deps.Display.StagedFiles(files)
	if c.opts.ServiceURL != "" {
		c.deps.Display.ServiceURL(c.opts.ServiceURL)
	}
	return SelectingModel, nil
}

func (c *Controller) selectModel(ctx context.Context) (State, error) {
	if name, ok := c.deps.Catalog.CurrentModel(); ok {
		// a configured name still has to be served
		if err := c.deps.Catalog.SetModel(ctx, name); err != nil {
			return Failed, err
		}
		c.deps.Display.Model(name)
		return Generating, nil
	}

	name, err := c.deps.Catalog.PromptForSelection(ctx, c.deps.Prompter)
	if err != nil {
		return Failed, err
	}
	if err := c.deps.Catalog.SetModel(ctx, name); err != nil {
		return Failed, err
	}
	c.deps.Display.Model(name)
	return Generating, nil
}

func (c *Controller) generate(ctx context.Context) (State, error) {
	stop := c.deps.Progress.Start("Generating commit message")
	msg, err := c.deps.Generator.Generate(ctx, c.files)
	stop()
	if err != nil {
		return Failed, err
	}

	c.message = msg
	c.deps.Display.Message(msg)
	if c.opts.DryRun {
		c.deps.Display.Notice("Dry run: nothing was committed.")
		return Done, nil
	}
	return Reviewing, nil
}

type reviewAction struct {
	choice models.Choice
	next   State
}

var reviewActions = []reviewAction{
	{models.Choice{ID: "commit", Label: "Commit", Description: "use this message"}, Committing},
	{models.Choice{ID: "regenerate", Label: "Regenerate", Description: "ask the model again"}, Regenerating},
	{models.Choice{ID: "edit", Label: "Edit", Description: "change type, scope or description"}, Editing},
	{models.Choice{ID: "quit", Label: "Quit", Description: "exit without committing"}, Cancelled},
}

func (c *Controller) review(ctx context.Context) (State, error) {
	if c.deps.Watcher != nil && c.deps.Watcher.Stale() {
		c.deps.Display.Notice(StaleIndexNotice)
		c.deps.Watcher.Reset()
	}

	items := make([]models.Choice, len(reviewActions))
	for i, a := range reviewActions {
		items[i] = a.choice
	}

	idx, err := c.deps.Prompter.Select(ctx, "Confirm the commit message?", items)
	if err != nil {
		return Failed, err
	}
	if idx < 0 || idx >= len(reviewActions) {
		return Failed, errors.Wrapf(apperr.ErrInvalidUserInput, "review choice out of range: %d", idx+1)
	}
	if next := reviewActions[idx].next; next != Cancelled {
		return next, nil
	}
	return Cancelled, apperr.ErrUserCancelled
}

// regenerate retries generation on the files collected at the start.
func (c *Controller) regenerate(context.Context) (State, error) {
	return Generating, nil
}

// edit replaces the message field by field. Backing out of any prompt
// returns to review with the message untouched.
func (c *Controller) edit(ctx context.Context) (State, error) {
	types := models.AllCommitTypes()
	items := make([]models.Choice, 0, len(types)+1)
	for _, t := range types {
		items = append(items, models.Choice{ID: string(t), Label: string(t), Description: t.Description()})
	}
	items = append(items, models.Choice{ID: "cancel", Label: "cancel", Description: "keep the current message"})

	idx, err := c.deps.Prompter.Select(ctx, "Select a commit type", items)
	if err != nil {
		return c.backOut(err)
	}
	if idx < 0 || idx >= len(types) {
		return Reviewing, nil
	}

	scope, err := c.deps.Prompter.Input(ctx, PromptScope, c.message.Scope)
	if err != nil {
		return c.backOut(err)
	}
	description, err := c.deps.Prompter.Input(ctx, PromptDescription, c.message.Description)
	if err != nil {
		return c.backOut(err)
	}

	c.message = models.CommitMessage{
		Type:        types[idx],
		Scope:       orDefault(scope, c.message.Scope),
		Description: orDefault(description, c.message.Description),
	}
	c.deps.Display.Message(c.message)
	return Reviewing, nil
}

// backOut treats a cancelled prompt inside the edit flow as "keep the
// message"; the session itself is only cancelled by its context.
func (c *Controller) backOut(err error) (State, error) {
	if errors.Is(err, apperr.ErrUserCancelled) {
		return Reviewing, nil
	}
	return Failed, err
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func (c *Controller) commit(ctx context.Context) (State, error) {
	if err := c.deps.Repo.Commit(ctx, c.message.String()); err != nil {
		return Failed, err
	}
	c.deps.Display.Success("Successfully committed!")
	return ShowingBranches, nil
}

func (c *Controller) showBranches(ctx context.Context) (State, error) {
	branches, err := c.deps.Repo.Branches(ctx)
	if err != nil {
		return Failed, err
	}
	current, err := c.deps.Repo.CurrentBranch(ctx)
	if err != nil {
		return Failed, err
	}
	c.branch = current
	c.deps.Display.Branches(branches, current)

	switch c.opts.Push {
	case PushNever:
		return Done, nil
	case PushAlways:
		return Pushing, nil
	}

	yes, err := c.deps.Prompter.Confirm(ctx, fmt.Sprintf("Do you want to push to '%s'?", current), true)
	if err != nil {
		if errors.Is(err, apperr.ErrUserCancelled) {
			return Done, nil
		}
		return Failed, err
	}
	if !yes {
		return Done, nil
	}
	return Pushing, nil
}

func (c *Controller) push(ctx context.Context) (State, error) {
	stop := c.deps.Progress.Start(fmt.Sprintf("Pushing to '%s'", c.branch))
	err := c.deps.Repo.Push(ctx, c.branch)
	stop()
	if err != nil {
		return Failed, err
	}
	c.deps.Display.Success("Successfully pushed to remote!")
	return Done, nil
}
