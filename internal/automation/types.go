package automation

import "encoding/json"

// Default list caps and the DOM dump element ceiling.
const (
	DefaultMessageLimit   = 10
	DefaultContactLimit   = 20
	DefaultCallLimit      = 10
	DefaultVoicemailLimit = 10
	maxDumpElements       = 100
)

// unknownName is the placeholder for a scraped item whose display name
// could not be found. Absence degrades to a placeholder, never an error.
const unknownName = "Unknown"

// Message is one conversation thread as currently rendered by the page.
type Message struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Preview string `json:"preview"`
	Time    string `json:"time"`
}

// Contact is one scraped contact entry.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CallRecord is one scraped call-history entry.
type CallRecord struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Time     string `json:"time"`
	Kind     string `json:"kind"`
	Duration string `json:"duration"`
}

// Voicemail is one scraped voicemail entry.
type Voicemail struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Time       string `json:"time"`
	Duration   string `json:"duration"`
	Transcript string `json:"transcript"`
}

// DOMElement is one interactive element in a DOM dump.
type DOMElement struct {
	Tag       string            `json:"tag"`
	ID        string            `json:"id"`
	Classes   string            `json:"classes"`
	AriaLabel string            `json:"ariaLabel"`
	Data      map[string]string `json:"data"`
	Text      string            `json:"text"`
}

// DOMDump is the diagnostic snapshot operators use to recalibrate
// selectors after the external page's markup changes.
type DOMDump struct {
	URL      string       `json:"url"`
	Title    string       `json:"title"`
	HasRoot  bool         `json:"hasRoot"`
	NavItems []string     `json:"navItems"`
	Buttons  []string     `json:"buttons"`
	Inputs   []string     `json:"inputs"`
	Elements []DOMElement `json:"elements"`
}

// SearchResult is the outcome of driving the page's search box.
type SearchResult struct {
	Results []string `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// ClickOutcome is the structured result of ClickWithRetry. Detail is always
// populated: the winning `clicked:` tag on success, the last attempt's
// `not-found:` diagnostic on exhaustion.
type ClickOutcome struct {
	Clicked bool   `json:"clicked"`
	Detail  string `json:"detail"`
}

// CallStatus is the terminal state of a call attempt. It records how far
// the UI automation got, not whether the call connected.
type CallStatus string

const (
	CallQueued        CallStatus = "queued"
	CallDialerOpen    CallStatus = "dialer_open"
	CallButtonClicked CallStatus = "call_button_clicked"
	CallFailed        CallStatus = "failed"
)

// CallResult is the response payload for a call command.
type CallResult struct {
	Status  CallStatus `json:"status"`
	Number  string     `json:"number"`
	Message string     `json:"message,omitempty"`
}

// SMSResult is the response payload for an SMS command.
type SMSResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// decodeList unmarshals a scraped item array, tolerating null (page
// navigated away mid-flight) and applying the name placeholder.
func decodeList[T any](raw json.RawMessage, fix func(*T)) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if fix != nil {
		for i := range items {
			fix(&items[i])
		}
	}
	return items, nil
}
