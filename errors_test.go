package finsight_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/finsight"
)

func TestClassifySynthesisError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind finsight.ErrorKind
	}{
		{
			name: "524 maps to service",
			err:  errors.New("upstream returned HTTP 524"),
			kind: finsight.ErrorKindLLMService,
		},
		{
			name: "provider signature maps to service",
			err:  errors.New("Provider Returned Error: try later"),
			kind: finsight.ErrorKindLLMService,
		},
		{
			name: "401 maps to auth",
			err:  errors.New("status 401 from api"),
			kind: finsight.ErrorKindLLMAuth,
		},
		{
			name: "unauthorized maps to auth",
			err:  errors.New("request Unauthorized"),
			kind: finsight.ErrorKindLLMAuth,
		},
		{
			name: "timeout maps to timeout",
			err:  errors.New("context deadline exceeded: request TIMEOUT"),
			kind: finsight.ErrorKindLLMTimeout,
		},
		{
			name: "anything else maps to unknown",
			err:  errors.New("flux capacitor misaligned"),
			kind: finsight.ErrorKindLLMUnknown,
		},
		{
			// Priority order: service signatures win over later rules
			// even when several signatures appear in one message.
			name: "service beats timeout",
			err:  errors.New("524: request timeout at provider"),
			kind: finsight.ErrorKindLLMService,
		},
		{
			name: "auth beats timeout",
			err:  errors.New("401 unauthorized after timeout"),
			kind: finsight.ErrorKindLLMAuth,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := finsight.ClassifySynthesisError(tc.err)
			gt.Equal(t, classified.Kind, tc.kind)
			gt.True(t, classified.Message != "")
			gt.True(t, classified.Debug != "")
		})
	}
}

func TestClassifyPreservesExistingKind(t *testing.T) {
	original := finsight.NewError(finsight.ErrorKindDataProvider, "all data sources failed")
	classified := finsight.ClassifySynthesisError(original)
	gt.Equal(t, classified.Kind, finsight.ErrorKindDataProvider)
}

func TestErrorAccessors(t *testing.T) {
	cause := errors.New("root cause")
	err := finsight.NewError(finsight.ErrorKindConfig, "key missing").
		WithSuggestion("set the key").
		WithCause(cause)

	gt.Equal(t, err.Error(), "key missing")
	gt.Equal(t, err.Suggestion, "set the key")
	gt.Equal(t, err.Debug, "root cause")
	gt.True(t, errors.Is(err, cause))

	extracted, ok := finsight.AsError(err)
	gt.True(t, ok)
	gt.Equal(t, extracted.Kind, finsight.ErrorKindConfig)

	gt.Equal(t, finsight.KindOf(errors.New("plain")), finsight.ErrorKindUnknown)
	gt.Equal(t, finsight.KindOf(err), finsight.ErrorKindConfig)
}
