package automation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// fakeExec answers Execute through a per-test closure keyed on the call
// number and the script content.
type fakeExec struct {
	respond func(call int, script string) (string, error)
	navErr  error
	calls   int
	navs    []string
	reloads int
}

func (f *fakeExec) Execute(_ context.Context, script string) (json.RawMessage, error) {
	f.calls++
	resp, err := f.respond(f.calls, script)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func (f *fakeExec) Navigate(_ context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	f.navs = append(f.navs, url)
	return nil
}

func (f *fakeExec) Reload(_ context.Context) error {
	f.reloads++
	return nil
}

const testBase = "https://voice.google.com"

func TestUnreadCount(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) { return "5", nil }}
	a := New(exec, testBase)

	count, err := a.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5, got %d", count)
	}
}

func TestMessagesNamePlaceholder(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) {
		return `[{"name":"","phone":"5551234567","preview":"hey","time":"2m"}]`, nil
	}}
	a := New(exec, testBase)

	msgs, err := a.Messages(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Name != "Unknown" {
		t.Fatalf("expected placeholder name, got %q", msgs[0].Name)
	}
	if msgs[0].Preview != "hey" {
		t.Fatalf("unexpected preview: %q", msgs[0].Preview)
	}
}

func TestMessagesNullResult(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) { return "null", nil }}
	a := New(exec, testBase)

	msgs, err := a.Messages(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", msgs)
	}
}

func TestPlaceCallNoDigits(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) {
		t.Fatal("script executed for a number with no digits")
		return "", nil
	}}
	a := New(exec, testBase)

	result := a.PlaceCall(context.Background(), "abc")
	if result.Status != CallFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if result.Message != "No digits found in number" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(exec.navs) != 0 {
		t.Fatal("expected no navigation")
	}
}

func TestPlaceCallSuccess(t *testing.T) {
	exec := &fakeExec{respond: func(_ int, script string) (string, error) {
		if strings.Contains(script, "readyState") {
			return "true", nil
		}
		return `"clicked:text:call"`, nil
	}}
	a := New(exec, testBase)

	result := a.PlaceCall(context.Background(), "(555) 123-4567")
	if result.Status != CallButtonClicked {
		t.Fatalf("expected call_button_clicked, got %s (%s)", result.Status, result.Message)
	}
	if result.Number != "15551234567" {
		t.Fatalf("unexpected number: %q", result.Number)
	}
	if len(exec.navs) != 1 || !strings.Contains(exec.navs[0], "%2B15551234567") {
		t.Fatalf("unexpected navigation: %v", exec.navs)
	}
}

func TestPlaceCallNavigationFailure(t *testing.T) {
	exec := &fakeExec{
		respond: func(int, string) (string, error) { return "true", nil },
		navErr:  context.DeadlineExceeded,
	}
	a := New(exec, testBase)

	result := a.PlaceCall(context.Background(), "5551234567")
	if result.Status != CallFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "navigation failed") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestPlaceCallClickExhausted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := &fakeExec{}
	exec.respond = func(_ int, script string) (string, error) {
		if strings.Contains(script, "readyState") {
			return "true", nil
		}
		// Click probe: report not-found and stop the retry loop so the
		// test doesn't sit through the full retry budget.
		cancel()
		return `"not-found:Settings|Help"`, nil
	}
	a := New(exec, testBase)

	result := a.PlaceCall(ctx, "5551234567")
	if result.Status != CallDialerOpen {
		t.Fatalf("expected dialer_open, got %s (%s)", result.Status, result.Message)
	}
	if !strings.HasPrefix(result.Message, "not-found:") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestSendSMSSuccess(t *testing.T) {
	exec := &fakeExec{respond: func(call int, _ string) (string, error) {
		switch call {
		case 1:
			return `"clicked:text:compose"`, nil
		case 2:
			return `"filled:input"`, nil
		case 3:
			return `"filled:textarea"`, nil
		default:
			return `"clicked:text:send"`, nil
		}
	}}
	a := New(exec, testBase)

	result := a.SendSMS(context.Background(), "5551234567", "hello there")
	if result.Status != "sent" {
		t.Fatalf("expected sent, got %s (%s)", result.Status, result.Message)
	}
	if exec.calls != 4 {
		t.Fatalf("expected 4 steps, got %d", exec.calls)
	}
}

func TestSendSMSRecipientFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := &fakeExec{}
	exec.respond = func(call int, _ string) (string, error) {
		if call == 1 {
			return `"clicked:text:compose"`, nil
		}
		cancel()
		return `"not-found:input"`, nil
	}
	a := New(exec, testBase)

	result := a.SendSMS(ctx, "5551234567", "hello")
	if result.Status != "failed" {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if !strings.HasPrefix(result.Message, "recipient:") {
		t.Fatalf("expected recipient step diagnostic, got %q", result.Message)
	}
}

func TestSendSMSNoDigits(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) {
		t.Fatal("script executed for a number with no digits")
		return "", nil
	}}
	a := New(exec, testBase)

	result := a.SendSMS(context.Background(), "---", "hi")
	if result.Status != "failed" {
		t.Fatalf("expected failed, got %s", result.Status)
	}
}

func TestIsLoggedInAndCurrentUser(t *testing.T) {
	exec := &fakeExec{respond: func(_ int, script string) (string, error) {
		if strings.Contains(script, "data-account-email") && strings.Contains(script, "getAttribute") {
			return `"user@example.com"`, nil
		}
		return "true", nil
	}}
	a := New(exec, testBase)

	ok, err := a.IsLoggedIn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected logged in")
	}

	user, err := a.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != "user@example.com" {
		t.Fatalf("unexpected user: %q", user)
	}
}

func TestDialLegacy(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) {
		return `"ok:dialed"`, nil
	}}
	a := New(exec, testBase)

	verdict, err := a.DialLegacy(context.Background(), "555-123-4567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != "ok:dialed" {
		t.Fatalf("unexpected verdict: %q", verdict)
	}
}

func TestIsBlank(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) { return "true", nil }}
	a := New(exec, testBase)

	blank, err := a.IsBlank(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blank {
		t.Fatal("expected blank")
	}
}

func TestReloadBase(t *testing.T) {
	exec := &fakeExec{respond: func(int, string) (string, error) { return "null", nil }}
	a := New(exec, testBase)

	if err := a.ReloadBase(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.navs) != 1 || exec.navs[0] != testBase {
		t.Fatalf("unexpected navigation: %v", exec.navs)
	}
}

func TestApplyTheme(t *testing.T) {
	var gotScript string
	exec := &fakeExec{respond: func(_ int, script string) (string, error) {
		gotScript = script
		return `"applied"`, nil
	}}
	a := New(exec, testBase)

	if err := a.ApplyTheme(context.Background(), ":root{--dd-bg:#000;}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotScript, "--dd-bg") {
		t.Error("expected css embedded in script")
	}
}
