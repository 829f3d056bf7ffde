package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCheckFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/fragments/check" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"min_sample_length":2`) || !strings.Contains(string(body), `"strategy":"quick"`) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unexpected body"}`))
			return
		}
		_, _ = w.Write([]byte(`{"similar":true,"strategy":"quick","reason":"edges","sample_length":3}`))
	}))
	defer srv.Close()

	two := 2
	d, err := NewClient(srv.URL).CheckFragments(context.Background(), FragmentCheck{
		ShortText: "a", LongText: "b", Strategy: "quick", MinSampleLength: &two,
	})
	if err != nil {
		t.Fatalf("CheckFragments: %v", err)
	}
	if !d.Similar || d.Reason != "edges" || d.SampleLength != 3 {
		t.Fatalf("decision = %+v", d)
	}
}

func TestErrorBodyIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown fragment strategy"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).CheckFragments(context.Background(), FragmentCheck{Strategy: "nope"})
	if err == nil || !strings.Contains(err.Error(), "unknown fragment strategy") {
		t.Fatalf("expected server error message, got %v", err)
	}
}

func TestHealthAndCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte(`{"status":"healthy","strategy":"quick","uptime":"3s"}`))
		case "/api/deduplication/count":
			_, _ = w.Write([]byte(`{"count":7}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	h, err := c.Health(context.Background())
	if err != nil || h.Status != "healthy" {
		t.Fatalf("health = %+v, %v", h, err)
	}
	n, err := c.Count(context.Background())
	if err != nil || n != 7 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
