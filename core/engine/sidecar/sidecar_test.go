package sidecar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnnotate(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/annotate" {
			http.Error(w, "bad route", http.StatusNotFound)
			return
		}
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Language != "de" {
			http.Error(w, "language", http.StatusBadRequest)
			return
		}
		var resp annotateResponse
		fields := strings.Fields(req.Text)
		for i, f := range fields {
			ws := " "
			if i == len(fields)-1 {
				ws = ""
			}
			resp.Tokens = append(resp.Tokens, engine.Unit{Text: f, Lemma: strings.ToLower(f), POS: "X", Whitespace: ws})
		}
		json.NewEncoder(w).Encode(resp)
	})

	c := New(engine.Config{Kind: "sidecar", URL: srv.URL + "/", Language: "de"})
	defer c.Close()

	units, err := c.Annotate("Die Bank")
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 || units[1].Text != "Bank" || units[1].Lemma != "bank" || units[0].Whitespace != " " {
		t.Errorf("units = %+v", units)
	}
}

func TestAnnotate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			},
			want: "503",
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"text too long"}`))
			},
			want: "text too long",
		},
		{
			name: "garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			want: "decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.handler)
			c := New(engine.Config{Kind: "sidecar", URL: srv.URL})
			_, err := c.Annotate("text")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Annotate() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestAnnotate_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	})
	defer close(done)

	c := New(engine.Config{Kind: "sidecar", URL: srv.URL, Timeout: 50 * time.Millisecond})
	if _, err := c.Annotate("slow"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestAnnotate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(engine.Config{Kind: "sidecar", URL: url, Timeout: time.Second})
	if _, err := c.Annotate("text"); err == nil {
		t.Error("expected error for unreachable sidecar")
	}
}
