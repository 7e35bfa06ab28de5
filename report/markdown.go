package report

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/finsight"
)

// RenderMarkdown renders a completed run's report as a Markdown document.
// The report is read-only input; renderers never mutate it.
func RenderMarkdown(r *finsight.FinalReport) (string, error) {
	if r == nil {
		return "", goerr.New("report is required")
	}

	var sb strings.Builder

	sb.WriteString("# Financial Research Report\n\n")
	sb.WriteString(fmt.Sprintf("**Question:** %s\n\n", r.Query))

	if len(r.Tickers) > 0 {
		sb.WriteString(fmt.Sprintf("**Tickers:** %s\n\n", strings.Join(r.Tickers, ", ")))
	}
	sb.WriteString(fmt.Sprintf("**Data sources:** %s\n\n", strings.Join(r.DataSources, ", ")))

	sb.WriteString("## Answer\n\n")
	sb.WriteString(r.SynthesisText)
	sb.WriteString("\n\n")

	sb.WriteString("## Validation\n\n")
	sb.WriteString(fmt.Sprintf("- Valid: %v\n", r.IsValid))
	sb.WriteString(fmt.Sprintf("- Confidence: %.2f\n", r.Confidence))
	sb.WriteString(fmt.Sprintf("- Data coverage: %.2f\n", r.Breakdown.DataCoverage))
	sb.WriteString(fmt.Sprintf("- Data quality: %.2f\n", r.Breakdown.DataQuality))
	sb.WriteString(fmt.Sprintf("- Inference strength: %.2f\n", r.Breakdown.InferenceStrength))
	sb.WriteString(fmt.Sprintf("- Overall: %.2f\n", r.Breakdown.Overall))

	if len(r.ValidationIssues) > 0 {
		sb.WriteString("\n### Issues\n\n")
		for _, issue := range r.ValidationIssues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
	}

	sb.WriteString(fmt.Sprintf("\n---\n\n%d research task(s) executed.\n", r.TaskCount))

	return sb.String(), nil
}
