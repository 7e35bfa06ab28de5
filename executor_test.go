package finsight_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/finsight"
)

func TestExecutorSuccess(t *testing.T) {
	source := &stubCapability{name: "a", payload: map[string]any{"totalRevenue": "100"}}
	executor := finsight.NewExecutor(finsight.NewRouter(source))

	state := finsight.NewResearchState("q")
	task := &finsight.Task{
		ID:          "t1",
		Description: "Fetch income statement for AAPL",
		ToolName:    "income_statement",
		ToolArgs:    map[string]any{"ticker": "AAPL"},
		Status:      finsight.TaskStatusPending,
	}

	executor.Execute(context.Background(), state, task)

	gt.Equal(t, task.Status, finsight.TaskStatusCompleted)
	gt.Equal(t, task.Error, "")
	gt.NotNil(t, state.TaskResults["t1"])
}

func TestExecutorFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ticker argument", func(t *testing.T) {
		executor := finsight.NewExecutor(finsight.NewRouter(&stubCapability{name: "a", payload: map[string]any{"x": 1}}))
		state := finsight.NewResearchState("q")
		task := &finsight.Task{
			ID:          "t1",
			Description: "Fetch income statement",
			ToolName:    "income_statement",
			ToolArgs:    map[string]any{},
			Status:      finsight.TaskStatusPending,
		}

		executor.Execute(ctx, state, task)

		gt.Equal(t, task.Status, finsight.TaskStatusFailed)
		gt.True(t, strings.Contains(task.Error, "no ticker argument"))
		_, stored := state.TaskResults["t1"]
		gt.False(t, stored)
	})

	t.Run("unsupported tool", func(t *testing.T) {
		executor := finsight.NewExecutor(finsight.NewRouter(&stubCapability{name: "a", payload: map[string]any{"x": 1}}))
		state := finsight.NewResearchState("q")
		task := &finsight.Task{
			ID:          "t1",
			Description: "Compute the weather",
			ToolName:    "weather_forecast",
			ToolArgs:    map[string]any{"ticker": "AAPL"},
			Status:      finsight.TaskStatusPending,
		}

		executor.Execute(ctx, state, task)

		gt.Equal(t, task.Status, finsight.TaskStatusFailed)
		gt.True(t, strings.Contains(task.Error, "unsupported"))
	})

	t.Run("router exhaustion recorded on task", func(t *testing.T) {
		executor := finsight.NewExecutor(finsight.NewRouter(
			&stubCapability{name: "a", err: errors.New("down")},
		))
		state := finsight.NewResearchState("q")
		task := &finsight.Task{
			ID:          "t1",
			Description: "Fetch income statement for AAPL",
			ToolName:    "income_statement",
			ToolArgs:    map[string]any{"ticker": "AAPL"},
			Status:      finsight.TaskStatusPending,
		}

		executor.Execute(ctx, state, task)

		gt.Equal(t, task.Status, finsight.TaskStatusFailed)
		gt.True(t, strings.Contains(task.Error, "AAPL"))
	})

	t.Run("panicking capability does not escape", func(t *testing.T) {
		executor := finsight.NewExecutor(finsight.NewRouter(panicCapability{}))
		state := finsight.NewResearchState("q")
		task := &finsight.Task{
			ID:          "t1",
			Description: "Fetch income statement for AAPL",
			ToolName:    "income_statement",
			ToolArgs:    map[string]any{"ticker": "AAPL"},
			Status:      finsight.TaskStatusPending,
		}

		executor.Execute(ctx, state, task)

		gt.Equal(t, task.Status, finsight.TaskStatusFailed)
		gt.True(t, strings.Contains(task.Error, "unexpected failure"))
	})
}

func TestExecutorInfersOperationFromDescription(t *testing.T) {
	source := &stubCapability{name: "a", payload: map[string]any{"totalRevenue": "100"}}
	executor := finsight.NewExecutor(finsight.NewRouter(source))

	state := finsight.NewResearchState("q")
	task := &finsight.Task{
		ID:          "t1",
		Description: "Fetch the latest Income Statement for Reliance",
		ToolArgs:    map[string]any{"symbol": "RELIANCE.NS"},
		Status:      finsight.TaskStatusPending,
	}

	executor.Execute(context.Background(), state, task)
	gt.Equal(t, task.Status, finsight.TaskStatusCompleted)
}

type panicCapability struct{}

func (panicCapability) Name() string { return "panicky" }

func (panicCapability) Fetch(ctx context.Context, ticker string) (any, error) {
	panic("capability exploded")
}
