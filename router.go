package finsight

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Capability is one interchangeable financial data source. Implementations
// live in the datasource packages; the router never depends on a concrete
// vendor type.
type Capability interface {
	// Name identifies the capability in diagnostics.
	Name() string

	// Fetch retrieves the data payload for the given ticker. The payload
	// is opaque to the router; emptiness rejection is the router's job,
	// not the capability's.
	Fetch(ctx context.Context, ticker string) (any, error)
}

// Router tries an ordered list of interchangeable capabilities until one
// yields a non-empty result. It is a pure fallback chain: each capability
// is invoked at most once per call, and results are never merged.
type Router struct {
	capabilities []Capability
}

// NewRouter creates a router over the given capabilities. Order is
// significant: capabilities are tried strictly in the order given.
func NewRouter(capabilities ...Capability) *Router {
	return &Router{capabilities: capabilities}
}

// Fetch tries each capability in order and returns the first valid,
// non-empty payload. A nil payload or a mapping/sequence with zero entries
// is rejected the same way a thrown failure is: recorded as a diagnostic
// and skipped. When every capability is exhausted, Fetch fails with a
// single data_provider error whose debug detail concatenates every
// capability's diagnostic in try order.
func (r *Router) Fetch(ctx context.Context, ticker string) (any, error) {
	logger := LoggerFromContext(ctx)

	var diags []string
	for _, capability := range r.capabilities {
		result, err := capability.Fetch(ctx, ticker)
		if err != nil {
			diags = append(diags, fmt.Sprintf("%s: %v", capability.Name(), err))
			logger.Debug("capability failed", "capability", capability.Name(), "ticker", ticker, "error", err)
			continue
		}

		if reason, empty := emptyPayload(result); empty {
			diags = append(diags, fmt.Sprintf("%s: %s", capability.Name(), reason))
			logger.Debug("capability rejected", "capability", capability.Name(), "ticker", ticker, "reason", reason)
			continue
		}

		logger.Debug("capability succeeded", "capability", capability.Name(), "ticker", ticker)
		return result, nil
	}

	return nil, NewError(ErrorKindDataProvider,
		fmt.Sprintf("all data sources failed to fetch data for %s", ticker)).
		WithSuggestion(fmt.Sprintf("Check that %s is a valid ticker symbol (e.g. AAPL, MSFT).", ticker)).
		WithDebug("capability errors: " + strings.Join(diags, "; "))
}

// emptyPayload reports whether a capability payload must be rejected:
// nil values, and mappings or sequences with zero entries.
func emptyPayload(v any) (string, bool) {
	if v == nil {
		return "returned nil", true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "returned empty data", true
		}
	}

	return "", false
}
