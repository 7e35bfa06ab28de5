package finsight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Stage collaborator interfaces. The controller depends only on these, so
// every collaborator can be swapped independently.
type (
	// PlanStage produces the ordered, non-empty task sequence for a
	// query, or fails with a query-kind error.
	PlanStage interface {
		Plan(ctx context.Context, query string) (Plan, error)
	}

	// ExecuteStage runs one task. It never returns an error and always
	// terminates the task in completed or failed status.
	ExecuteStage interface {
		Execute(ctx context.Context, state *ResearchState, task *Task)
	}

	// ValidateStage computes the validity verdict. It is pure and
	// deterministic given the state contents.
	ValidateStage interface {
		Validate(state *ResearchState) ValidationResult
	}

	// SynthesizeStage produces the narrative answer from validated
	// evidence.
	SynthesizeStage interface {
		Synthesize(ctx context.Context, state *ResearchState) (string, error)
	}
)

// Controller sequences the research stages and owns the run lifecycle. It
// is the single place that decides what is fatal versus recoverable: task
// failures are tolerated and left for validation to judge; stage failures
// end the run. A Controller holds no mutable cross-run state, so
// concurrent Run calls on one instance are safe.
type Controller struct {
	planner     PlanStage
	executor    ExecuteStage
	validator   ValidateStage
	synthesizer SynthesizeStage

	observer Observer
	logger   *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithObserver sets the lifecycle event observer.
func WithObserver(observer Observer) ControllerOption {
	return func(c *Controller) {
		c.observer = observer
	}
}

// WithLogger sets the structured logger. It is also propagated to the
// stages through the context of each run.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller over the four stage collaborators.
// All four are required; missing ones are a configuration error detected
// here, before any run starts.
func NewController(planner PlanStage, executor ExecuteStage, validator ValidateStage, synthesizer SynthesizeStage, options ...ControllerOption) (*Controller, error) {
	if planner == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "planner is required")
	}
	if executor == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "executor is required")
	}
	if validator == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "validator is required")
	}
	if synthesizer == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "synthesizer is required")
	}

	c := &Controller{
		planner:     planner,
		executor:    executor,
		validator:   validator,
		synthesizer: synthesizer,
		observer:    nopObserver{},
		logger:      defaultLogger,
	}
	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Run advances one query through plan → execute → validate → synthesize.
// It always returns a state with status Completed or Failed; it never
// returns mid-stage and never panics. Validation gates synthesis: an
// invalid verdict ends the run before the narrative stage.
func (c *Controller) Run(ctx context.Context, query string) *ResearchState {
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	ctx = ctxWithLogger(ctx, logger)

	state := NewResearchState(query)

	defer func() {
		// Unexpected internal failures are recorded, never crashed on.
		if r := recover(); r != nil {
			logger.Error("unexpected workflow failure", "panic", r)
			c.emit(ctx, EventWorkflowError, map[string]any{"error": fmt.Sprint(r)})
			state.fail(NewError(ErrorKindUnknown, fmt.Sprintf("unexpected internal failure: %v", r)))
		}
	}()

	// Planning
	plan, err := c.planner.Plan(ctx, query)
	if err != nil {
		logger.Error("planning failed", "error", err)
		c.emit(ctx, EventWorkflowError, map[string]any{"error": err.Error()})
		state.fail(c.stageError(err, ErrorKindQuery))
		return state
	}
	state.Plan = plan
	c.emit(ctx, EventPlanCreated, map[string]any{"tasks": len(plan)})

	// Execution: strictly in plan order, one task at a time. A failed
	// task does not abort the loop; evidence is collected
	// opportunistically and judged by validation.
	state.Status = StatusExecuting
	for _, task := range state.Plan {
		c.emit(ctx, EventTaskStarted, map[string]any{"task_id": task.ID, "description": task.Description})
		c.executor.Execute(ctx, state, task)
		c.emit(ctx, EventTaskCompleted, map[string]any{"task_id": task.ID, "status": string(task.Status)})
	}

	// Validation: the hard gate. A panicking validator is a validation
	// failure, not a crash.
	state.Status = StatusValidating
	c.emit(ctx, EventValidationStarted, map[string]any{})

	validation, vErr := c.safeValidate(state)
	if vErr != nil {
		logger.Error("validator failed", "error", vErr)
		c.emit(ctx, EventValidationError, map[string]any{"error": vErr.Error()})
		state.fail(NewError(ErrorKindValidation, fmt.Sprintf("validation error: %v", vErr)).WithCause(vErr))
		return state
	}
	state.Validation = &validation

	if !validation.IsValid {
		logger.Warn("validation rejected evidence", "issues", validation.Issues)
		c.emit(ctx, EventValidationFailed, map[string]any{"issues": validation.Issues})
		state.fail(NewError(ErrorKindValidation,
			fmt.Sprintf("evidence failed validation: %d issue(s) found", len(validation.Issues))).
			WithSuggestion("Inspect the validation issues; the collected data is incomplete or inconsistent."))
		return state
	}

	// Synthesis: reached only with valid evidence. A failure here still
	// ends the run as Failed, so Failed does not imply invalid data;
	// ErrSource distinguishes generation failure from evidentiary
	// failure.
	state.Status = StatusSynthesizing
	c.emit(ctx, EventSynthesisStarted, map[string]any{})

	answer, err := c.synthesizer.Synthesize(ctx, state)
	if err != nil {
		classified := ClassifySynthesisError(err)
		logger.Error("synthesis failed", "error", err, "source", string(classified.Kind))
		c.emit(ctx, EventSynthesisError, map[string]any{"error": classified.Message, "source": string(classified.Kind)})
		state.fail(classified)
		return state
	}

	state.FinalAnswer = answer
	c.emit(ctx, EventFinalAnswer, map[string]any{"answer": answer})

	state.Report = buildFinalReport(state)
	state.Status = StatusCompleted
	c.emit(ctx, EventReportCreated, map[string]any{"report_valid": state.Report.IsValid})

	logger.Info("research completed", "tasks", len(state.Plan), "confidence", validation.Confidence)
	return state
}

// safeValidate invokes the validator, converting a panic into an error so
// the controller can end the run as Failed instead of crashing.
func (c *Controller) safeValidate(state *ResearchState) (result ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("validator panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()

	return c.validator.Validate(state), nil
}

// stageError coerces err into a classified error, defaulting to the given
// kind for unclassified failures.
func (c *Controller) stageError(err error, kind ErrorKind) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	return NewError(kind, err.Error()).WithCause(err)
}

// emit delivers an event to the observer, isolating the run from observer
// failures. Observers are best-effort by contract.
func (c *Controller) emit(ctx context.Context, event EventType, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			LoggerFromContext(ctx).Warn("observer panicked", "event", string(event), "panic", r)
		}
	}()

	c.observer.Log(ctx, event, payload)
}
