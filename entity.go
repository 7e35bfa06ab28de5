package finsight

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Entity is a financial entity recognized in a user query.
type Entity struct {
	Name string `json:"name"`

	// Type is one of company, index, sector, macro. The set is enforced
	// by the entities schema before decoding.
	Type string `json:"type"`

	// Ticker is set only when the oracle is confident; it is never
	// guessed.
	Ticker string `json:"ticker,omitempty"`
}

// EntityExtractor pulls financial entities out of free text using the
// reasoning oracle. It is an optional planner collaborator.
type EntityExtractor struct {
	llm LLMClient
}

// NewEntityExtractor creates an extractor backed by the given oracle.
func NewEntityExtractor(llm LLMClient) (*EntityExtractor, error) {
	if llm == nil {
		return nil, goerr.Wrap(ErrNoCollaborator, "entity extractor requires an LLM client")
	}
	return &EntityExtractor{llm: llm}, nil
}

// Extract returns the entities recognized in the query. The oracle output
// is schema-validated before decoding.
func (x *EntityExtractor) Extract(ctx context.Context, query string) ([]Entity, error) {
	var promptBuf bytes.Buffer
	if err := entityTmpl.Execute(&promptBuf, entityTemplateData{Query: query}); err != nil {
		return nil, goerr.Wrap(err, "failed to render entity prompt")
	}

	raw, err := x.llm.GenerateText(ctx, promptBuf.String(), WithContentType(ContentTypeJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "entity extraction request failed")
	}

	var decoded struct {
		Entities []Entity `json:"entities"`
	}
	if err := decodeOracleJSON(entitiesSchema, raw, &decoded); err != nil {
		return nil, err
	}

	return decoded.Entities, nil
}
