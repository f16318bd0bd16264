package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"at limit", "exact", 5, "exact"},
		{"over limit", "truncate me", 8, "truncate"},
		{"zero limit keeps all", "anything", 0, "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), 3, func() (string, error) {
		calls++
		if calls <= 2 {
			return "", fmt.Errorf("transient error (call %d)", calls)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), 2, func() (string, error) {
		calls++
		return "", fmt.Errorf("persistent failure %d", calls)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// 1 initial + 2 retries = 3 calls; the last error surfaces.
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !strings.Contains(err.Error(), "persistent failure 3") {
		t.Errorf("err = %v", err)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	old := backoffBase
	backoffBase = 500 * time.Millisecond
	defer func() { backoffBase = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := withRetry(ctx, 3, func() (int, error) {
		return 0, fmt.Errorf("always fails")
	})
	if err != context.DeadlineExceeded {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestWithRetry_DefaultRetries(t *testing.T) {
	calls := 0
	_, _ = withRetry(context.Background(), 0, func() (int, error) {
		calls++
		return 0, fmt.Errorf("fail")
	})
	// maxRetries 0 falls back to the default of 3: 4 calls total.
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRenderCleanupPrompt_TruncatesInput(t *testing.T) {
	long := strings.Repeat("x", CleanupInputLimit+100)
	got, err := renderCleanupPrompt(long)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, strings.Repeat("x", CleanupInputLimit+1)) {
		t.Error("cleanup prompt contains untruncated input")
	}
	if !strings.Contains(got, "Return only the cleaned text") {
		t.Errorf("prompt missing instruction: %q", got[:80])
	}
}

func TestRenderSummaryPrompt(t *testing.T) {
	req := SummaryRequest{
		FormName:      "VA21-0781",
		Title:         "Statement in Support",
		URL:           "https://example.com/form.pdf",
		FieldsContext: "Form fields found:\n- Veteran's full name (type: Tx)\n",
		CleanedText:   "Use this form to report details.",
	}
	got, err := renderSummaryPrompt(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Form: VA21-0781 - Statement in Support",
		"PDF URL: https://example.com/form.pdf",
		"Veteran's full name",
		"Use this form to report details.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary prompt missing %q", want)
		}
	}
}

func TestRenderSummaryPrompt_NoFields(t *testing.T) {
	got, err := renderSummaryPrompt(SummaryRequest{FormName: "VA-1", CleanedText: "text"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "Form fields found") {
		t.Error("fields section rendered for a form without fields")
	}
}
