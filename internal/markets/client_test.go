package markets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestFetchMarket(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("condition_ids"); got != "0xcondition" {
			t.Errorf("expected condition_ids=0xcondition, got %q", got)
		}

		fmt.Fprint(w, `[{
			"conditionId": "0xcondition",
			"question": "Highest temperature in London on March 1?",
			"category": "Weather",
			"description": "Resolves according to the official weather station reading.",
			"negRisk": true,
			"orderPriceMinTickSize": 0.01,
			"outcomes": "[\"Yes\", \"No\"]",
			"clobTokenIds": "[\"token-yes\", \"token-no\"]"
		}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))

	mc, err := client.FetchMarket(context.Background(), "0xcondition")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if mc == nil {
		t.Fatal("expected a market, got nil")
	}

	if mc.Category != "Weather" || !mc.NegRisk || mc.TickSize != 0.01 {
		t.Errorf("unexpected market context: %+v", mc)
	}

	token := mc.TokenForOutcome("yes")
	if token == nil || token.TokenID != "token-yes" {
		t.Errorf("expected case-insensitive outcome lookup, got %+v", token)
	}
}

func TestFetchMarket_Absent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))

	mc, err := client.FetchMarket(context.Background(), "0xunknown")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if mc != nil {
		t.Errorf("expected nil for an unknown market, got %+v", mc)
	}
}

func TestFetchMarket_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))

	_, err := client.FetchMarket(context.Background(), "0xcondition")
	if err == nil {
		t.Fatal("expected an error on non-200 status")
	}
}
