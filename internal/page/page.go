// Package page provides the script execution capability: the ability to run
// a script in the embedded page context and get its result back. Two
// adapters exist: a native webview handle driven through an async JS to Go
// callback, and a headless chromedp page for running without a shell.
//
// Automation code never talks to a webview directly; it gets an Executor
// and must treat every call as fallible. The page can be torn down, mid
// navigation, or simply not wired up yet.
package page

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrPageUnavailable is returned when no page is bound or the bound page
// has been torn down. Callers degrade to a safe default rather than crash.
var ErrPageUnavailable = errors.New("embedded page unavailable")

// Executor runs an action script in the page context. The script is a
// statement sequence that assigns its outcome to the `__result` variable;
// the adapter owns delivery of that value back to Go.
type Executor interface {
	// Execute runs actionCode and returns the JSON-encoded __result value.
	// A script that ran but produced null data yields `null`, not an error.
	Execute(ctx context.Context, actionCode string) (json.RawMessage, error)

	// Navigate points the page at a URL. It does not wait for readiness;
	// that is the retry engine's job.
	Navigate(ctx context.Context, url string) error

	// Reload reloads the page in place.
	Reload(ctx context.Context) error
}

// JSONLiteral returns a JSON-encoded literal for safe embedding of a Go
// value into a script template. This is the only sanctioned way to pass
// parameters into page scripts; string concatenation of raw values is an
// injection hazard.
func JSONLiteral(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
