package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-trader-screener/internal/domain"
)

func TestResolveName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/token-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[{"baseToken":{"name":"Test Token","symbol":"TEST"}}]}`))
	}))
	defer server.Close()

	r := NewResolver(WithBaseURL(server.URL))
	if got := r.ResolveName(context.Background(), "token-1"); got != "Test Token (TEST)" {
		t.Errorf("name = %q, want %q", got, "Test Token (TEST)")
	}
}

func TestResolveNameWithoutSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"baseToken":{"name":"Test Token"}}]}`))
	}))
	defer server.Close()

	r := NewResolver(WithBaseURL(server.URL))
	if got := r.ResolveName(context.Background(), "token-1"); got != "Test Token" {
		t.Errorf("name = %q, want %q", got, "Test Token")
	}
}

func TestResolveNameFallsBackToUnknown(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no pairs", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pairs":[]}`))
		}},
		{"empty base token name", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pairs":[{"baseToken":{"symbol":"TEST"}}]}`))
		}},
		{"bad status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pairs":`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			r := NewResolver(WithBaseURL(server.URL))
			if got := r.ResolveName(context.Background(), "token-1"); got != domain.UnknownName {
				t.Errorf("name = %q, want %q", got, domain.UnknownName)
			}
		})
	}
}

func TestResolveNameUnreachableUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	r := NewResolver(WithBaseURL(server.URL))
	if got := r.ResolveName(context.Background(), "token-1"); got != domain.UnknownName {
		t.Errorf("name = %q, want %q", got, domain.UnknownName)
	}
}
