package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func quoteServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCurrencyDefaults(t *testing.T) {
	s := NewCurrencyService(0, "")
	if s.Rate() != DefaultKESToUSD {
		t.Fatalf("expected default rate, got %v", s.Rate())
	}
	if got := s.Convert(10000); got != 74 {
		t.Fatalf("Convert(10000) = %v, want 74", got)
	}
	if rate, err := s.Refresh(context.Background()); err != nil || rate != DefaultKESToUSD {
		t.Fatalf("refresh without a quote url is a no-op, got %v %v", rate, err)
	}
}

func TestCurrencyConvertRoundsToCents(t *testing.T) {
	s := NewCurrencyService(0.0074, "")
	if got := s.Convert(12345); got != 91.35 {
		t.Fatalf("Convert(12345) = %v, want 91.35", got)
	}
}

func TestCurrencyRefresh(t *testing.T) {
	srv := quoteServer(t, http.StatusOK, `{"base":"KES","rates":{"USD":0.0078,"EUR":0.0071}}`)
	s := NewCurrencyService(0, srv.URL)

	rate, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rate != 0.0078 || s.Rate() != 0.0078 {
		t.Fatalf("expected 0.0078, got %v / %v", rate, s.Rate())
	}
	if snap := s.Snapshot(); snap.Source != "remote" || snap.Base != "KES" || snap.Quote != "USD" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCurrencyRefreshFailureKeepsRate(t *testing.T) {
	cases := map[string]*httptest.Server{
		"server error":  quoteServer(t, http.StatusInternalServerError, `oops`),
		"bad json":      quoteServer(t, http.StatusOK, `not json`),
		"missing usd":   quoteServer(t, http.StatusOK, `{"rates":{"EUR":0.0071}}`),
		"negative rate": quoteServer(t, http.StatusOK, `{"rates":{"USD":-1}}`),
	}
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewCurrencyService(0.0075, srv.URL)
			rate, err := s.Refresh(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if rate != 0.0075 || s.Rate() != 0.0075 || s.Snapshot().Source != "default" {
				t.Fatalf("rate must be kept, got %v", s.Rate())
			}
		})
	}
}
