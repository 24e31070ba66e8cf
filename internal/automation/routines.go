// Package automation drives the embedded telephony page: scraping reads and
// best-effort UI actions, each a script template paired with a result
// decoder. Reads degrade field-by-field to placeholders; actions report how
// far they got rather than throwing.
package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/deskdial/deskdial/internal/logging"
	"github.com/deskdial/deskdial/internal/page"
)

// Automator binds the script templates to one page executor. Page-mutating
// flows (call, SMS, search, reload) serialize on an internal mutex so one
// command's navigation cannot invalidate another's in-flight probe;
// read-only scrapes run unserialized.
type Automator struct {
	exec    page.Executor
	baseURL string

	actionMu sync.Mutex
}

// New returns an Automator over exec rooted at the page's base URL.
func New(exec page.Executor, baseURL string) *Automator {
	return &Automator{exec: exec, baseURL: baseURL}
}

// UnreadCount sums the page's notification badges.
func (a *Automator) UnreadCount(ctx context.Context) (int, error) {
	raw, err := a.exec.Execute(ctx, unreadCountScript())
	if err != nil {
		return 0, err
	}
	var count int
	if err := json.Unmarshal(raw, &count); err != nil {
		return 0, fmt.Errorf("decode unread count: %w", err)
	}
	return count, nil
}

// Messages scrapes up to limit conversation threads in DOM order.
func (a *Automator) Messages(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	raw, err := a.exec.Execute(ctx, messagesScript(limit))
	if err != nil {
		return nil, err
	}
	return decodeList(raw, func(m *Message) {
		if m.Name == "" {
			m.Name = unknownName
		}
	})
}

// Contacts scrapes up to limit contact entries.
func (a *Automator) Contacts(ctx context.Context, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = DefaultContactLimit
	}
	raw, err := a.exec.Execute(ctx, contactsScript(limit))
	if err != nil {
		return nil, err
	}
	return decodeList(raw, func(c *Contact) {
		if c.Name == "" {
			c.Name = unknownName
		}
	})
}

// CallHistory scrapes up to limit call records.
func (a *Automator) CallHistory(ctx context.Context, limit int) ([]CallRecord, error) {
	if limit <= 0 {
		limit = DefaultCallLimit
	}
	raw, err := a.exec.Execute(ctx, callHistoryScript(limit))
	if err != nil {
		return nil, err
	}
	return decodeList(raw, func(c *CallRecord) {
		if c.Name == "" {
			c.Name = unknownName
		}
	})
}

// Voicemails scrapes up to limit voicemail entries.
func (a *Automator) Voicemails(ctx context.Context, limit int) ([]Voicemail, error) {
	if limit <= 0 {
		limit = DefaultVoicemailLimit
	}
	raw, err := a.exec.Execute(ctx, voicemailsScript(limit))
	if err != nil {
		return nil, err
	}
	return decodeList(raw, func(v *Voicemail) {
		if v.Name == "" {
			v.Name = unknownName
		}
	})
}

// IsLoggedIn checks for an account marker in the DOM.
func (a *Automator) IsLoggedIn(ctx context.Context) (bool, error) {
	raw, err := a.exec.Execute(ctx, loggedInScript())
	if err != nil {
		return false, err
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CurrentUser returns the logged-in account label, empty when absent.
func (a *Automator) CurrentUser(ctx context.Context) (string, error) {
	raw, err := a.exec.Execute(ctx, currentUserScript())
	if err != nil {
		return "", err
	}
	var user string
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", err
	}
	return user, nil
}

// Search types into the page's search box and scrapes result rows.
func (a *Automator) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	if limit <= 0 {
		limit = DefaultContactLimit
	}
	a.actionMu.Lock()
	defer a.actionMu.Unlock()

	raw, err := a.exec.Execute(ctx, searchScript(query, limit))
	if err != nil {
		return SearchResult{}, err
	}
	var res SearchResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return SearchResult{}, fmt.Errorf("decode search result: %w", err)
	}
	if res.Results == nil {
		res.Results = []string{}
	}
	return res, nil
}

// DumpDOM captures the diagnostic snapshot. It never fails on missing
// selectors; only executor-level errors propagate.
func (a *Automator) DumpDOM(ctx context.Context) (DOMDump, error) {
	raw, err := a.exec.Execute(ctx, dumpDOMScript())
	if err != nil {
		return DOMDump{}, err
	}
	var dump DOMDump
	if err := json.Unmarshal(raw, &dump); err != nil {
		return DOMDump{}, fmt.Errorf("decode dom dump: %w", err)
	}
	return dump, nil
}

// PlaceCall is the authoritative call flow: normalize the number, open the
// dial deep link, poll for readiness, then click the call control with
// retry. The result records the furthest stage reached, not whether a call
// connected.
func (a *Automator) PlaceCall(ctx context.Context, number string) CallResult {
	digits, err := NormalizeNumber(number)
	if err != nil {
		return CallResult{Status: CallFailed, Number: number, Message: "No digits found in number"}
	}

	a.actionMu.Lock()
	defer a.actionMu.Unlock()

	if err := a.exec.Navigate(ctx, DialURL(a.baseURL, digits)); err != nil {
		return CallResult{Status: CallFailed, Number: digits, Message: fmt.Sprintf("navigation failed: %v", err)}
	}

	if !WaitForReady(ctx, a.exec, readyProbeScript(), ReadyPollInterval, ReadyMaxAttempts) {
		// Navigation was issued; the page may still complete the call on
		// its own once it finishes loading.
		return CallResult{Status: CallQueued, Number: digits, Message: "dialer did not become ready; call left queued"}
	}

	outcome := ClickWithRetry(ctx, a.exec,
		keywordClickScript(
			[]string{"call", "dial", "place call"},
			[]string{"[aria-label*=\"call\" i]", ".call-button", "button[type=\"submit\"]"},
		),
		ClickRetryInterval, ClickMaxAttempts)
	if !outcome.Clicked {
		return CallResult{Status: CallDialerOpen, Number: digits, Message: outcome.Detail}
	}
	logging.Infof("call button clicked for %s (%s)", digits, outcome.Detail)
	return CallResult{Status: CallButtonClicked, Number: digits, Message: outcome.Detail}
}

// SendSMS drives the compose flow: open composer, fill recipient, fill the
// body, click send. Each step polls instead of sleeping; the first step
// that exhausts its retries fails the whole command with that step's
// diagnostic.
func (a *Automator) SendSMS(ctx context.Context, number, text string) SMSResult {
	digits, err := NormalizeNumber(number)
	if err != nil {
		return SMSResult{Status: "failed", Message: "No digits found in number"}
	}

	a.actionMu.Lock()
	defer a.actionMu.Unlock()

	open := ClickWithRetry(ctx, a.exec,
		keywordClickScript(
			[]string{"send new message", "new message", "compose"},
			[]string{"[aria-label*=\"message\" i]", ".compose-button"},
		),
		ClickRetryInterval, ClickMaxAttempts)
	if !open.Clicked {
		return SMSResult{Status: "failed", Message: "compose: " + open.Detail}
	}

	if msg, ok := a.fillStep(ctx, []string{
		"input[placeholder*=\"name or number\" i]",
		"input[aria-label*=\"recipient\" i]",
		"input[type=\"tel\"]",
	}, "+"+digits); !ok {
		return SMSResult{Status: "failed", Message: "recipient: " + msg}
	}

	if msg, ok := a.fillStep(ctx, []string{
		"textarea[aria-label*=\"message\" i]",
		"textarea[placeholder*=\"message\" i]",
		"[contenteditable=\"true\"]",
		"textarea",
	}, text); !ok {
		return SMSResult{Status: "failed", Message: "body: " + msg}
	}

	send := ClickWithRetry(ctx, a.exec,
		keywordClickScript(
			[]string{"send message", "send"},
			[]string{"[aria-label*=\"send\" i]", ".send-button", "button[type=\"submit\"]"},
		),
		ClickRetryInterval, ClickMaxAttempts)
	if !send.Clicked {
		return SMSResult{Status: "failed", Message: "send: " + send.Detail}
	}
	return SMSResult{Status: "sent", Message: send.Detail}
}

// fillStep retries a field fill until the template reports `filled:`.
func (a *Automator) fillStep(ctx context.Context, selectors []string, value string) (string, bool) {
	script := fillFieldScript(selectors, value)
	last := "not-found:"
	for attempt := 0; attempt < ClickMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return last, false
			case <-time.After(ClickRetryInterval):
			}
		}
		raw, err := a.exec.Execute(ctx, script)
		if err != nil {
			last = err.Error()
			continue
		}
		var tag string
		if json.Unmarshal(raw, &tag) != nil {
			last = "unexpected fill result " + string(raw)
			continue
		}
		last = tag
		if len(tag) >= 7 && tag[:7] == "filled:" {
			return tag, true
		}
	}
	return last, false
}

// DialLegacy runs the superseded fixed-delay dial flow. Retained as a
// fallback for pages where the readiness probe misfires; not routed by
// default.
func (a *Automator) DialLegacy(ctx context.Context, number string) (string, error) {
	digits, err := NormalizeNumber(number)
	if err != nil {
		return "", err
	}
	a.actionMu.Lock()
	defer a.actionMu.Unlock()
	raw, err := a.exec.Execute(ctx, legacyDialScript("+"+digits))
	if err != nil {
		return "", err
	}
	var verdict string
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return "", err
	}
	return verdict, nil
}

// IsBlank reports the blank-page heuristic used by the poller's self-heal.
func (a *Automator) IsBlank(ctx context.Context) (bool, error) {
	raw, err := a.exec.Execute(ctx, blankPageScript())
	if err != nil {
		return false, err
	}
	var blank bool
	if err := json.Unmarshal(raw, &blank); err != nil {
		return false, err
	}
	return blank, nil
}

// ApplyTheme injects (or clears, for empty css) the theme stylesheet.
func (a *Automator) ApplyTheme(ctx context.Context, css string) error {
	a.actionMu.Lock()
	defer a.actionMu.Unlock()
	_, err := a.exec.Execute(ctx, injectCSSScript(css))
	return err
}

// ReloadBase points the page back at the base URL.
func (a *Automator) ReloadBase(ctx context.Context) error {
	a.actionMu.Lock()
	defer a.actionMu.Unlock()
	return a.exec.Navigate(ctx, a.baseURL)
}
