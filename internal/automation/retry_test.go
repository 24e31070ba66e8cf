package automation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptedExec returns canned responses in call order. Safe for the
// single-goroutine retry loops under test.
type scriptedExec struct {
	responses []string // JSON values, one per Execute call
	errs      []error  // parallel to responses; nil means success
	calls     int
	navs      []string
	reloads   int
}

func (s *scriptedExec) Execute(_ context.Context, _ string) (json.RawMessage, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return json.RawMessage(s.responses[i]), nil
}

func (s *scriptedExec) Navigate(_ context.Context, url string) error {
	s.navs = append(s.navs, url)
	return nil
}

func (s *scriptedExec) Reload(_ context.Context) error {
	s.reloads++
	return nil
}

func TestWaitForReadyEventualSuccess(t *testing.T) {
	exec := &scriptedExec{responses: []string{"false", "false", "true"}}

	ok := WaitForReady(context.Background(), exec, "probe", time.Millisecond, 5)
	if !ok {
		t.Fatal("expected ready")
	}
	if exec.calls != 3 {
		t.Fatalf("expected 3 probe attempts, got %d", exec.calls)
	}
}

func TestWaitForReadyGivesUp(t *testing.T) {
	exec := &scriptedExec{responses: []string{"false"}}

	ok := WaitForReady(context.Background(), exec, "probe", time.Millisecond, 4)
	if ok {
		t.Fatal("expected give-up")
	}
	if exec.calls != 4 {
		t.Fatalf("expected 4 probe attempts, got %d", exec.calls)
	}
}

func TestWaitForReadyExecErrorCountsAsNotReady(t *testing.T) {
	exec := &scriptedExec{
		responses: []string{"", "true"},
		errs:      []error{errors.New("mid navigation"), nil},
	}

	if !WaitForReady(context.Background(), exec, "probe", time.Millisecond, 3) {
		t.Fatal("expected ready after transient error")
	}
}

func TestWaitForReadyContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &scriptedExec{responses: []string{"false"}}

	if WaitForReady(ctx, exec, "probe", time.Minute, 100) {
		t.Fatal("expected cancellation to read as not ready")
	}
}

func TestClickWithRetryEventualClick(t *testing.T) {
	exec := &scriptedExec{responses: []string{
		`"not-found:Settings|Help"`,
		`"clicked:text:call"`,
	}}

	outcome := ClickWithRetry(context.Background(), exec, "click", time.Millisecond, 5)
	if !outcome.Clicked {
		t.Fatalf("expected click, got %q", outcome.Detail)
	}
	if outcome.Detail != "clicked:text:call" {
		t.Fatalf("unexpected detail: %q", outcome.Detail)
	}
	if exec.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", exec.calls)
	}
}

func TestClickWithRetryExhaustionKeepsLastDetail(t *testing.T) {
	exec := &scriptedExec{responses: []string{`"not-found:Settings|Help|Feedback"`}}

	outcome := ClickWithRetry(context.Background(), exec, "click", time.Millisecond, 3)
	if outcome.Clicked {
		t.Fatal("expected exhaustion")
	}
	if !strings.HasPrefix(outcome.Detail, "not-found:") {
		t.Fatalf("unexpected detail: %q", outcome.Detail)
	}
	if !strings.Contains(outcome.Detail, "Settings|Help|Feedback") {
		t.Fatalf("expected label sample in detail, got %q", outcome.Detail)
	}
	if exec.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", exec.calls)
	}
}

func TestClickWithRetryExecError(t *testing.T) {
	exec := &scriptedExec{
		responses: []string{""},
		errs:      []error{errors.New("page torn down")},
	}

	outcome := ClickWithRetry(context.Background(), exec, "click", time.Millisecond, 2)
	if outcome.Clicked {
		t.Fatal("expected failure")
	}
	if !strings.Contains(outcome.Detail, "page torn down") {
		t.Fatalf("expected executor error in detail, got %q", outcome.Detail)
	}
}
