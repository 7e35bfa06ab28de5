package finsight

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// plannerToolInfo describes the data operations a plan may use. It is
// rendered into the planner prompt so the oracle only references operations
// the executor can actually perform.
const plannerToolInfo = `- income_statement: fetch the most recent annual income statements for a ticker (args: "ticker")`

// Planner turns a natural-language question into an ordered, non-empty
// task sequence. It consumes the reasoning oracle and, optionally, an
// entity extractor; both are opaque to the rest of the core.
type Planner struct {
	llm       LLMClient
	extractor *EntityExtractor
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithEntityExtractor enables oracle-backed entity extraction to fill in
// ticker arguments the plan left out. Extraction is best-effort: its
// failure never fails planning.
func WithEntityExtractor(extractor *EntityExtractor) PlannerOption {
	return func(p *Planner) {
		p.extractor = extractor
	}
}

// NewPlanner creates a planning collaborator backed by the given oracle.
func NewPlanner(llm LLMClient, options ...PlannerOption) (*Planner, error) {
	if llm == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "planner requires an LLM client")
	}

	p := &Planner{llm: llm}
	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Plan asks the oracle to decompose the query into research tasks. The
// oracle's output is schema-validated before decoding; anything malformed,
// and an empty task list, fail with a query-kind error.
func (p *Planner) Plan(ctx context.Context, query string) (Plan, error) {
	logger := LoggerFromContext(ctx)

	var promptBuf bytes.Buffer
	data := plannerTemplateData{ToolInfo: plannerToolInfo, Query: query}
	if err := plannerTmpl.Execute(&promptBuf, data); err != nil {
		return nil, goerr.Wrap(err, "failed to render planner prompt")
	}

	raw, err := p.llm.GenerateText(ctx, promptBuf.String(), WithContentType(ContentTypeJSON))
	if err != nil {
		return nil, NewError(ErrorKindQuery, "planning failed: the reasoning service returned an error").
			WithSuggestion("Try again; if the failure persists, verify the LLM configuration.").
			WithCause(err)
	}

	var decoded struct {
		Tasks []struct {
			Description string         `json:"description"`
			ToolName    string         `json:"tool_name"`
			ToolArgs    map[string]any `json:"tool_args"`
		} `json:"tasks"`
	}
	if err := decodeOracleJSON(planSchema, raw, &decoded); err != nil {
		return nil, NewError(ErrorKindQuery, "planner produced an unparseable plan").
			WithSuggestion("Rephrase the question or try again.").
			WithCause(err)
	}

	plan := make(Plan, 0, len(decoded.Tasks))
	for _, t := range decoded.Tasks {
		if strings.TrimSpace(t.Description) == "" {
			continue
		}
		args := t.ToolArgs
		if args == nil {
			args = map[string]any{}
		}
		plan = append(plan, &Task{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(t.Description),
			ToolName:    t.ToolName,
			ToolArgs:    args,
			Status:      TaskStatusPending,
		})
	}

	if len(plan) == 0 {
		return nil, NewError(ErrorKindQuery, "planner produced an empty task list").
			WithSuggestion("Ask a concrete financial research question, e.g. about a company's revenue.")
	}

	p.enrichTickers(ctx, query, plan)

	if err := plan.Validate(); err != nil {
		return nil, NewError(ErrorKindQuery, "planner produced an invalid plan").WithCause(err)
	}

	logger.Info("plan created", "tasks", len(plan))
	return plan, nil
}

// enrichTickers fills in a missing ticker argument from extracted entities.
// Extraction failures are logged and swallowed; a task that still lacks a
// ticker fails later in the execution stage, not here.
func (p *Planner) enrichTickers(ctx context.Context, query string, plan Plan) {
	if p.extractor == nil {
		return
	}

	needsTicker := false
	for _, task := range plan {
		if _, ok := taskTicker(task); !ok {
			needsTicker = true
			break
		}
	}
	if !needsTicker {
		return
	}

	entities, err := p.extractor.Extract(ctx, query)
	if err != nil {
		LoggerFromContext(ctx).Warn("entity extraction failed", "error", err)
		return
	}

	ticker := ""
	for _, entity := range entities {
		if entity.Ticker != "" {
			ticker = entity.Ticker
			break
		}
	}
	if ticker == "" {
		return
	}

	for _, task := range plan {
		if _, ok := taskTicker(task); !ok {
			task.ToolArgs["ticker"] = ticker
		}
	}
}
