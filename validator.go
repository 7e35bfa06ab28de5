package finsight

import (
	"fmt"
	"math"
	"strconv"
)

// Validation constants. The gate confidence is a fixed two-value signal and
// is intentionally separate from the breakdown factors below.
const (
	validConfidence   = 0.9
	invalidConfidence = 0.3

	// qualityPenalty is subtracted from data quality for each task that
	// recorded an error.
	qualityPenalty = 0.2

	// coverageThreshold is the step point of the inference strength
	// function: coverage above it maps to strongInference, everything
	// else to weakInference.
	coverageThreshold = 0.7
	strongInference   = 0.9
	weakInference     = 0.4
)

// revenueFieldKeys are the payload field aliases treated as revenue-like
// for the domain sanity check.
var revenueFieldKeys = []string{"totalRevenue", "revenue"}

// Validator is the pure validation stage. Validate has no side effects and
// is deterministic given the state contents, so repeated calls on an
// unchanged state return identical results.
type Validator struct{}

// NewValidator creates the validation stage.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate computes the validity verdict and confidence breakdown for the
// accumulated run state. All four checks run to completion; issues
// accumulate rather than short-circuiting. The result is valid iff no
// check produced an issue.
func (v *Validator) Validate(state *ResearchState) ValidationResult {
	issues := []string{}

	// 1. Every planned task must have completed.
	for _, task := range state.Plan {
		if task.Status != TaskStatusCompleted {
			issues = append(issues, fmt.Sprintf("incomplete task: %s", task.Description))
		}
	}

	// 2. A recorded task error is an issue regardless of status.
	for _, task := range state.Plan {
		if task.Error != "" {
			issues = append(issues, fmt.Sprintf("task %s reported error: %s", task.ID, task.Error))
		}
	}

	// 3. Every collected result must be non-empty.
	// Iterate in plan order so the issue list is deterministic.
	for _, task := range state.Plan {
		result, ok := state.TaskResults[task.ID]
		if !ok {
			continue
		}
		if _, empty := emptyPayload(result); empty {
			issues = append(issues, fmt.Sprintf("empty data for task %s", task.ID))
		}
	}

	// 4. Domain sanity: revenue-like fields must not be negative.
	for _, task := range state.Plan {
		result, ok := state.TaskResults[task.ID]
		if !ok {
			continue
		}
		for _, record := range normalizeRecords(result) {
			for _, key := range revenueFieldKeys {
				raw, ok := record[key]
				if !ok {
					continue
				}
				// Coercion failures and absent fields are not issues.
				if value, ok := coerceFloat(raw); ok && value < 0 {
					issues = append(issues, "Negative revenue detected")
				}
			}
		}
	}

	isValid := len(issues) == 0

	confidence := invalidConfidence
	if isValid {
		confidence = validConfidence
	}

	return ValidationResult{
		IsValid:    isValid,
		Issues:     issues,
		Confidence: confidence,
		Breakdown:  v.breakdown(state),
	}
}

// breakdown computes the four-factor diagnostic score. It is produced even
// for invalid results. An empty plan yields an all-zero breakdown.
func (v *Validator) breakdown(state *ResearchState) ConfidenceBreakdown {
	if len(state.Plan) == 0 {
		return ConfidenceBreakdown{}
	}

	coverage := float64(len(state.TaskResults)) / float64(len(state.Plan))

	erroredTasks := 0
	for _, task := range state.Plan {
		if task.Error != "" {
			erroredTasks++
		}
	}
	quality := 1.0 - qualityPenalty*float64(erroredTasks)
	if quality < 0 {
		quality = 0
	}

	inference := weakInference
	if coverage > coverageThreshold {
		inference = strongInference
	}

	return ConfidenceBreakdown{
		DataCoverage:      coverage,
		DataQuality:       quality,
		InferenceStrength: inference,
		Overall:           round2((coverage + quality + inference) / 3),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// normalizeRecords flattens a result payload into a uniform sequence of
// mapping records. A single mapping becomes a one-element sequence; scalar
// or unrecognized entries are skipped.
func normalizeRecords(result any) []map[string]any {
	switch v := result.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []map[string]any:
		return v
	case []any:
		var records []map[string]any
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, m)
			}
		}
		return records
	}
	return nil
}

// coerceFloat attempts numeric coercion of a payload value. Providers
// return revenue as JSON numbers or numeric strings depending on vendor.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
