package finsight

import (
	"context"
	"fmt"
	"strings"
)

// incomeStatementTools are the tool name aliases that map to the income
// statement fetch operation.
var incomeStatementTools = map[string]struct{}{
	"income_statement":       {},
	"fetch_income_statement": {},
}

// Executor maps one task to one router call. Its contract with the
// Controller is strict: Execute never returns an error and always leaves
// the task in completed or failed status; mutating the task and
// state.TaskResults is its only side effect.
type Executor struct {
	router *Router
}

// NewExecutor creates the execution stage over the given router.
func NewExecutor(router *Router) *Executor {
	return &Executor{router: router}
}

// Execute runs a single task. Missing required arguments, router
// exhaustion, and unexpected panics all terminate the task as failed with
// the failure message recorded on the task; none of them propagate.
func (x *Executor) Execute(ctx context.Context, state *ResearchState, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			task.Status = TaskStatusFailed
			task.Error = fmt.Sprintf("unexpected failure: %v", r)
		}
	}()

	task.Status = TaskStatusInProgress

	if !x.supports(task) {
		task.Status = TaskStatusFailed
		task.Error = fmt.Sprintf("unsupported task operation: %q", task.ToolName)
		return
	}

	ticker, ok := taskTicker(task)
	if !ok {
		task.Status = TaskStatusFailed
		task.Error = "task has no ticker argument"
		return
	}

	result, err := x.router.Fetch(ctx, ticker)
	if err != nil {
		task.Status = TaskStatusFailed
		task.Error = err.Error()
		return
	}

	state.TaskResults[task.ID] = result
	task.Status = TaskStatusCompleted
}

// supports reports whether the task maps to a known router operation.
// A task with an empty tool name is accepted when its description clearly
// asks for an income statement.
func (x *Executor) supports(task *Task) bool {
	if _, ok := incomeStatementTools[task.ToolName]; ok {
		return true
	}
	if task.ToolName == "" {
		return strings.Contains(strings.ToLower(task.Description), "income statement")
	}
	return false
}
