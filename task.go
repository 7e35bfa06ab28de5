package finsight

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TaskStatus represents the lifecycle status of a single research task.
// The set is closed; unknown values are rejected at construction.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Validate checks that the status is one of the known values.
func (s TaskStatus) Validate() error {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return nil
	}
	return goerr.Wrap(ErrInvalidTask, "unknown task status", goerr.V("status", string(s)))
}

// Task is one unit of research work tied to a data-fetch operation.
// Tasks are created by the Planner and mutated only by the Executor;
// they are never removed from a plan during a run.
type Task struct {
	// ID is the unique identifier of the task within its plan.
	ID string `json:"id"`

	// Description is a free-text statement of what the task should gather.
	Description string `json:"description"`

	// ToolName identifies which data operation the task requires.
	// It may be empty, in which case the Executor infers the operation
	// from the description.
	ToolName string `json:"tool_name,omitempty"`

	// ToolArgs holds the arguments for the data operation,
	// e.g. {"ticker": "AAPL"}.
	ToolArgs map[string]any `json:"tool_args,omitempty"`

	// Status is the current lifecycle status of the task.
	Status TaskStatus `json:"status"`

	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty"`
}

// Validate checks the structural invariants of a single task.
func (t *Task) Validate() error {
	eb := goerr.NewBuilder(goerr.V("task_id", t.ID))
	if t.ID == "" {
		return eb.Wrap(ErrInvalidTask, "task id is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return eb.Wrap(ErrInvalidTask, "task description is required")
	}
	if err := t.Status.Validate(); err != nil {
		return err
	}
	return nil
}

// Plan is the ordered sequence of tasks produced once per run.
// Order is execution order and is preserved throughout the run.
type Plan []*Task

// Validate checks that the plan is non-empty, every task is valid,
// and task IDs are unique within the plan.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return goerr.Wrap(ErrEmptyPlan, "plan must contain at least one task")
	}

	seen := make(map[string]struct{}, len(p))
	for _, task := range p {
		if err := task.Validate(); err != nil {
			return err
		}
		if _, ok := seen[task.ID]; ok {
			return goerr.Wrap(ErrInvalidTask, "duplicate task id in plan", goerr.V("task_id", task.ID))
		}
		seen[task.ID] = struct{}{}
	}

	return nil
}
