package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescan/internal/config"
)

// TestRunCheck tests link checking with the simulated prober.
func TestRunCheck(t *testing.T) {
	t.Parallel()

	newConfig := func() *config.Config {
		cfg := config.NewConfig()
		cfg.Simulate = true
		cfg.SimulateLatency = time.Millisecond
		cfg.Seeds = []string{
			"https://example.com/404-test",
			"https://example.com/ok",
			"not a url",
		}
		return cfg
	}

	t.Run("classifies links", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		cfg.JSONReport = true

		var out bytes.Buffer
		if err := runCheck(t.Context(), &out, cfg, false, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var results []struct {
			URL    string `json:"url"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(out.Bytes(), &results); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out.String())
		}

		got := make(map[string]string, len(results))
		for _, r := range results {
			got[r.URL] = r.Status
		}
		want := map[string]string{
			"https://example.com/404-test": "NOT_FOUND",
			"https://example.com/ok":       "OK",
			"not a url":                    "INVALID",
		}
		for u, status := range want {
			if got[u] != status {
				t.Errorf("%s: expected %s, got %s", u, status, got[u])
			}
		}
	})

	t.Run("fail on broken", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		err := runCheck(t.Context(), &out, newConfig(), true, discardLogger())
		if !errors.Is(err, ErrBrokenLinks) {
			t.Errorf("expected ErrBrokenLinks, got %v", err)
		}
		if !strings.Contains(out.String(), "3 link(s) checked, 2 broken") {
			t.Errorf("expected results to be written before failing:\n%s", out.String())
		}
	})

	t.Run("no broken links passes", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		cfg.Seeds = []string{"https://example.com/ok"}

		var out bytes.Buffer
		if err := runCheck(t.Context(), &out, cfg, true, discardLogger()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestCheckCommand tests the check command through cobra.
func TestCheckCommand(t *testing.T) {
	t.Parallel()

	t.Run("requires urls", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "check")
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "check", "--simulate", "-m", "https://example.com/redirect")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Link Check Report") || !strings.Contains(stdout, "REDIRECT") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})
}
