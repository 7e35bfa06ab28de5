package finsight

import "strings"

// RunStatus represents the lifecycle state of one research run.
// Transitions are monotonic along
// Planning → Executing → Validating → (Synthesizing → Completed | Failed)
// and never regress.
type RunStatus string

const (
	StatusPlanning     RunStatus = "planning"
	StatusExecuting    RunStatus = "executing"
	StatusValidating   RunStatus = "validating"
	StatusSynthesizing RunStatus = "synthesizing"
	StatusCompleted    RunStatus = "completed"
	StatusFailed       RunStatus = "failed"
)

// ResearchState is the single mutable object for one run. Each call to
// Controller.Run owns a private instance; no state is shared across runs.
type ResearchState struct {
	// Query is the user's question. Immutable after creation.
	Query string `json:"query"`

	// Plan is the ordered task sequence. Set once by the planning stage.
	Plan Plan `json:"plan,omitempty"`

	// TaskResults maps task IDs to the opaque payload fetched for them.
	// Keys are always a subset of the plan's task IDs.
	TaskResults map[string]any `json:"task_results"`

	// Status is the current lifecycle state of the run.
	Status RunStatus `json:"status"`

	// Validation is the verdict of the validation stage. Set once.
	Validation *ValidationResult `json:"validation,omitempty"`

	// FinalAnswer is the synthesized narrative. Set only on Completed.
	FinalAnswer string `json:"final_answer,omitempty"`

	// Err is the human-readable failure message. Set only on Failed,
	// and every Failed run carries a non-empty Err.
	Err string `json:"error,omitempty"`

	// ErrSource is the machine-checkable classification of the failure.
	// Runs that fail during synthesis carry the taxonomy kind assigned by
	// ClassifySynthesisError; runs that fail earlier carry the kind of the
	// failing stage (query, validation, data_provider, unknown).
	ErrSource ErrorKind `json:"error_source,omitempty"`

	// Report is the export snapshot. Set only on successful Completed.
	Report *FinalReport `json:"report,omitempty"`
}

// NewResearchState creates the state for a fresh run in the Planning stage.
func NewResearchState(query string) *ResearchState {
	return &ResearchState{
		Query:       query,
		TaskResults: make(map[string]any),
		Status:      StatusPlanning,
	}
}

func (s *ResearchState) fail(err *Error) {
	s.Status = StatusFailed
	s.Err = err.Message
	s.ErrSource = err.Kind
}

// ValidationResult is the verdict of the validation stage.
type ValidationResult struct {
	// IsValid reports whether synthesis may proceed. It is true iff
	// Issues is empty.
	IsValid bool `json:"is_valid"`

	// Issues lists every problem found, in check order.
	Issues []string `json:"issues"`

	// Confidence is the pass/fail gating scalar. It takes one of two
	// fixed values depending on IsValid and is intentionally distinct
	// from Breakdown.Overall.
	Confidence float64 `json:"confidence"`

	// Breakdown is the multi-factor diagnostic score. It is computed
	// even for invalid results.
	Breakdown ConfidenceBreakdown `json:"breakdown"`
}

// ConfidenceBreakdown is the four-factor diagnostic confidence score.
// All factors are in [0, 1].
type ConfidenceBreakdown struct {
	DataCoverage      float64 `json:"data_coverage"`
	DataQuality       float64 `json:"data_quality"`
	InferenceStrength float64 `json:"inference_strength"`
	Overall           float64 `json:"overall"`
}

// FinalReport is the immutable export-ready projection of a completed run.
// It is built exactly once, on successful completion, and handed to
// external renderers which must not mutate it.
type FinalReport struct {
	Query            string              `json:"query"`
	Tickers          []string            `json:"tickers"`
	DataSources      []string            `json:"data_sources"`
	SynthesisText    string              `json:"synthesis_text"`
	IsValid          bool                `json:"is_valid"`
	ValidationIssues []string            `json:"validation_issues"`
	Confidence       float64             `json:"confidence"`
	Breakdown        ConfidenceBreakdown `json:"breakdown"`
	TaskCount        int                 `json:"task_count"`
	TaskResults      map[string]any      `json:"task_results"`
}

// tickerArgKeys are the tool argument aliases that may carry a ticker.
var tickerArgKeys = []string{"ticker", "symbol"}

// defaultSourceLabels is used when no task names a data source.
var defaultSourceLabels = []string{"SEC EDGAR", "Financial Data Providers"}

// buildFinalReport constructs the export snapshot from a completed run.
// Tickers are pulled from each task's arguments, upper-cased, and
// deduplicated preserving first-seen order. Source labels come from task
// tool names, humanized; a fixed default set applies when none are found.
func buildFinalReport(state *ResearchState) *FinalReport {
	var tickers []string
	seenTickers := make(map[string]struct{})
	var sources []string
	seenSources := make(map[string]struct{})

	for _, task := range state.Plan {
		if ticker, ok := taskTicker(task); ok {
			upper := toUpper(ticker)
			if _, dup := seenTickers[upper]; !dup {
				seenTickers[upper] = struct{}{}
				tickers = append(tickers, upper)
			}
		}
		if task.ToolName != "" {
			label := humanizeSource(task.ToolName)
			if _, dup := seenSources[label]; !dup {
				seenSources[label] = struct{}{}
				sources = append(sources, label)
			}
		}
	}

	if tickers == nil {
		tickers = []string{}
	}
	if len(sources) == 0 {
		sources = append([]string{}, defaultSourceLabels...)
	}

	report := &FinalReport{
		Query:         state.Query,
		Tickers:       tickers,
		DataSources:   sources,
		SynthesisText: state.FinalAnswer,
		TaskCount:     len(state.Plan),
		TaskResults:   state.TaskResults,
	}

	if state.Validation != nil {
		report.IsValid = state.Validation.IsValid
		report.ValidationIssues = state.Validation.Issues
		report.Confidence = state.Validation.Confidence
		report.Breakdown = state.Validation.Breakdown
	}

	return report
}

// taskTicker extracts a ticker-like string value from the task's arguments,
// checking the fixed alias keys in order.
func taskTicker(task *Task) (string, bool) {
	for _, key := range tickerArgKeys {
		if v, ok := task.ToolArgs[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func toUpper(s string) string {
	return strings.ToUpper(s)
}

// humanizeSource turns a snake_case tool name into a display label,
// e.g. "alpha_vantage" becomes "Alpha Vantage".
func humanizeSource(toolName string) string {
	words := strings.Split(strings.ReplaceAll(toolName, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
