package finsight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Synthesizer turns validated evidence into a narrative answer. It runs
// only after the validation gate has passed; the controller never hands it
// an invalid state.
type Synthesizer struct {
	llm LLMClient
}

// NewSynthesizer creates a synthesis collaborator backed by the given
// oracle.
func NewSynthesizer(llm LLMClient) (*Synthesizer, error) {
	if llm == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "synthesizer requires an LLM client")
	}
	return &Synthesizer{llm: llm}, nil
}

// Synthesize generates the narrative answer from the accumulated state.
// Failures propagate to the controller, which classifies them into the
// error taxonomy.
func (s *Synthesizer) Synthesize(ctx context.Context, state *ResearchState) (string, error) {
	results, err := json.MarshalIndent(state.TaskResults, "", "  ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode task results")
	}

	confidence := "N/A"
	if state.Validation != nil {
		confidence = fmt.Sprintf("%.2f", state.Validation.Confidence)
	}

	var promptBuf bytes.Buffer
	data := synthesisTemplateData{
		Query:      state.Query,
		Results:    string(results),
		Confidence: confidence,
	}
	if err := synthesisTmpl.Execute(&promptBuf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render synthesis prompt")
	}

	answer, err := s.llm.GenerateText(ctx, promptBuf.String())
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", goerr.New("synthesizer returned an empty answer")
	}

	return answer, nil
}
