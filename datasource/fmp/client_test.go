package fmp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/finsight/datasource/fmp"
)

func TestFetchIncomeStatement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/income-statement/MSFT")
		gt.Equal(t, r.URL.Query().Get("apikey"), "test-key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2023-06-30", "symbol": "MSFT", "revenue": 211915000000},
			{"date": "2022-06-30", "symbol": "MSFT", "revenue": 198270000000}
		]`))
	}))
	defer server.Close()

	client, err := fmp.New("test-key", fmp.WithBaseURL(server.URL))
	gt.NoError(t, err)
	gt.Equal(t, client.Name(), "financial_modeling_prep")

	payload, err := client.Fetch(context.Background(), "MSFT")
	gt.NoError(t, err)

	reports := gt.Cast[[]map[string]any](t, payload)
	gt.Equal(t, len(reports), 2)
	gt.Equal(t, reports[0]["symbol"], any("MSFT"))
}

func TestFetchErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"Error Message": "Invalid API KEY."}`))
		}))
		defer server.Close()

		client, err := fmp.New("bad-key", fmp.WithBaseURL(server.URL))
		gt.NoError(t, err)

		_, err = client.Fetch(context.Background(), "MSFT")
		gt.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not": "an array"}`))
		}))
		defer server.Close()

		client, err := fmp.New("test-key", fmp.WithBaseURL(server.URL))
		gt.NoError(t, err)

		_, err = client.Fetch(context.Background(), "MSFT")
		gt.Error(t, err)
	})
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := fmp.New("")
	gt.Error(t, err)
}
