package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sableview/uivet/internal/model"
	"github.com/sableview/uivet/internal/testutil"
)

func sampleFindings() []model.Finding {
	return []model.Finding{
		{
			ID: "f1", Code: "layout/horizontal-overflow",
			Severity: model.SeverityMajor,
			Message:  "[desktop] page scrolls horizontally",
			Priority: 50,
		},
	}
}

func llamaReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(reply); err != nil {
			t.Error(err)
		}
	}
}

func TestEnrichRewritesProseOnly(t *testing.T) {
	t.Parallel()

	rewritten := sampleFindings()
	rewritten[0].Message = "The page needs sideways scrolling on desktop"
	rewritten[0].Suggestion = "Keep content inside the window"
	rewritten[0].Severity = model.SeverityCritical // must be ignored
	rewritten[0].Priority = 99                     // must be ignored
	content, _ := json.Marshal(rewritten)

	srv := httptest.NewServer(llamaReply(t, string(content)))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	e := New(cfg, &testutil.DummyLogger{})

	got := e.Enrich(context.Background(), sampleFindings())
	if got[0].Message != "The page needs sideways scrolling on desktop" {
		t.Fatalf("message = %q", got[0].Message)
	}
	if got[0].Suggestion != "Keep content inside the window" {
		t.Fatalf("suggestion = %q", got[0].Suggestion)
	}
	if got[0].Severity != model.SeverityMajor || got[0].Priority != 50 {
		t.Fatalf("non-prose fields changed: %+v", got[0])
	}
}

func TestEnrichDisabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig(), &testutil.DummyLogger{})
	in := sampleFindings()
	got := e.Enrich(context.Background(), in)
	if got[0].Message != in[0].Message {
		t.Fatal("disabled enricher must pass findings through")
	}
}

func TestEnrichFallsBackOnServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	e := New(cfg, &testutil.DummyLogger{})

	got := e.Enrich(context.Background(), sampleFindings())
	if got[0].Message != sampleFindings()[0].Message {
		t.Fatal("server error must pass findings through unchanged")
	}
}

func TestEnrichFallsBackOnMalformedContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(llamaReply(t, "sorry, I cannot help with that"))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	e := New(cfg, &testutil.DummyLogger{})

	got := e.Enrich(context.Background(), sampleFindings())
	if got[0].Message != sampleFindings()[0].Message {
		t.Fatal("malformed model output must pass findings through unchanged")
	}
}

func TestEnrichFallsBackOnCountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(llamaReply(t, "[]"))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	e := New(cfg, &testutil.DummyLogger{})

	got := e.Enrich(context.Background(), sampleFindings())
	if len(got) != 1 || got[0].Message != sampleFindings()[0].Message {
		t.Fatal("count mismatch must pass findings through unchanged")
	}
}

func TestEnrichRateLimited(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		content, _ := json.Marshal(sampleFindings())
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, string(content))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.RateTokens = 2
	cfg.RateRefill = time.Hour
	e := New(cfg, &testutil.DummyLogger{})

	for i := 0; i < 5; i++ {
		e.Enrich(context.Background(), sampleFindings())
	}
	if calls != 2 {
		t.Fatalf("server saw %d calls, want the 2 budgeted tokens", calls)
	}
}
