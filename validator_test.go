package finsight_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/finsight"
)

func completedState() *finsight.ResearchState {
	state := finsight.NewResearchState("What was Apple's revenue?")
	state.Plan = finsight.Plan{
		{ID: "t1", Description: "Fetch income statement for AAPL", ToolName: "income_statement",
			ToolArgs: map[string]any{"ticker": "AAPL"}, Status: finsight.TaskStatusCompleted},
	}
	state.TaskResults["t1"] = map[string]any{"totalRevenue": "394328000000"}
	return state
}

func TestValidatorAllGood(t *testing.T) {
	v := finsight.NewValidator()
	result := v.Validate(completedState())

	gt.True(t, result.IsValid)
	gt.Equal(t, len(result.Issues), 0)
	gt.Equal(t, result.Confidence, finsight.ValidConfidence)
	gt.Equal(t, result.Breakdown.DataCoverage, 1.0)
	gt.Equal(t, result.Breakdown.DataQuality, 1.0)
	gt.Equal(t, result.Breakdown.InferenceStrength, finsight.StrongInference)
}

func TestValidatorChecks(t *testing.T) {
	v := finsight.NewValidator()

	t.Run("incomplete task", func(t *testing.T) {
		state := completedState()
		state.Plan[0].Status = finsight.TaskStatusFailed

		result := v.Validate(state)
		gt.False(t, result.IsValid)
		gt.Equal(t, result.Confidence, finsight.InvalidConfidence)
		gt.True(t, strings.Contains(result.Issues[0], "incomplete task"))
	})

	t.Run("recorded error counts even on completed status", func(t *testing.T) {
		state := completedState()
		state.Plan[0].Error = "transient provider failure"

		result := v.Validate(state)
		gt.False(t, result.IsValid)
		gt.Equal(t, len(result.Issues), 1)
		gt.True(t, strings.Contains(result.Issues[0], "transient provider failure"))
	})

	t.Run("empty result payload", func(t *testing.T) {
		state := completedState()
		state.TaskResults["t1"] = map[string]any{}

		result := v.Validate(state)
		gt.False(t, result.IsValid)
		gt.True(t, strings.Contains(result.Issues[0], "empty data for task t1"))
	})

	t.Run("negative revenue in string payload", func(t *testing.T) {
		state := completedState()
		state.TaskResults["t1"] = map[string]any{"totalRevenue": "-5"}

		result := v.Validate(state)
		gt.False(t, result.IsValid)
		gt.Equal(t, result.Issues[0], "Negative revenue detected")
	})

	t.Run("negative revenue inside sequence payload", func(t *testing.T) {
		state := completedState()
		state.TaskResults["t1"] = []any{
			map[string]any{"totalRevenue": float64(100)},
			map[string]any{"totalRevenue": float64(-1)},
		}

		result := v.Validate(state)
		gt.False(t, result.IsValid)
		gt.Equal(t, result.Issues[0], "Negative revenue detected")
	})

	t.Run("uncoercible revenue is silently ignored", func(t *testing.T) {
		state := completedState()
		state.TaskResults["t1"] = map[string]any{"totalRevenue": "None"}

		result := v.Validate(state)
		gt.True(t, result.IsValid)
	})

	t.Run("absent revenue field is not an issue", func(t *testing.T) {
		state := completedState()
		state.TaskResults["t1"] = map[string]any{"grossProfit": "1000"}

		result := v.Validate(state)
		gt.True(t, result.IsValid)
	})
}

func TestValidatorIdempotent(t *testing.T) {
	v := finsight.NewValidator()
	state := completedState()
	state.Plan = append(state.Plan, &finsight.Task{
		ID: "t2", Description: "Fetch income statement for MSFT", ToolName: "income_statement",
		ToolArgs: map[string]any{"ticker": "MSFT"}, Status: finsight.TaskStatusFailed,
	})
	state.Plan[1].Error = "all data sources failed"

	first := v.Validate(state)
	second := v.Validate(state)
	gt.True(t, reflect.DeepEqual(first, second))
}

func TestValidatorBreakdown(t *testing.T) {
	v := finsight.NewValidator()

	t.Run("empty plan yields all-zero breakdown", func(t *testing.T) {
		state := finsight.NewResearchState("q")

		result := v.Validate(state)
		gt.Equal(t, result.Breakdown, finsight.ConfidenceBreakdown{})
	})

	t.Run("coverage below threshold weakens inference", func(t *testing.T) {
		state := finsight.NewResearchState("q")
		state.Plan = finsight.Plan{
			{ID: "t1", Description: "a", Status: finsight.TaskStatusCompleted},
			{ID: "t2", Description: "b", Status: finsight.TaskStatusFailed},
		}
		state.TaskResults["t1"] = map[string]any{"totalRevenue": "1"}

		result := v.Validate(state)
		gt.Equal(t, result.Breakdown.DataCoverage, 0.5)
		gt.Equal(t, result.Breakdown.InferenceStrength, finsight.WeakInference)
	})

	t.Run("quality penalty per errored task floors at zero", func(t *testing.T) {
		state := finsight.NewResearchState("q")
		state.Plan = finsight.Plan{}
		for _, id := range []string{"t1", "t2", "t3", "t4", "t5", "t6"} {
			state.Plan = append(state.Plan, &finsight.Task{
				ID: id, Description: "task " + id,
				Status: finsight.TaskStatusFailed, Error: "boom",
			})
		}

		result := v.Validate(state)
		gt.Equal(t, result.Breakdown.DataQuality, 0.0)
	})

	t.Run("overall is the rounded mean", func(t *testing.T) {
		state := completedState()

		result := v.Validate(state)
		// (1.0 + 1.0 + 0.9) / 3 = 0.9666... rounds to 0.97
		gt.Equal(t, result.Breakdown.Overall, 0.97)
	})
}

func TestCoerceFloat(t *testing.T) {
	value, ok := finsight.CoerceFloat("-5")
	gt.True(t, ok)
	gt.Equal(t, value, -5.0)

	value, ok = finsight.CoerceFloat(float64(12.5))
	gt.True(t, ok)
	gt.Equal(t, value, 12.5)

	_, ok = finsight.CoerceFloat("not a number")
	gt.False(t, ok)

	_, ok = finsight.CoerceFloat(nil)
	gt.False(t, ok)
}

func TestNormalizeRecords(t *testing.T) {
	single := finsight.NormalizeRecords(map[string]any{"totalRevenue": 1})
	gt.Equal(t, len(single), 1)

	many := finsight.NormalizeRecords([]any{
		map[string]any{"totalRevenue": 1},
		"not a record",
		map[string]any{"totalRevenue": 2},
	})
	gt.Equal(t, len(many), 2)

	gt.Equal(t, len(finsight.NormalizeRecords("scalar")), 0)
}
