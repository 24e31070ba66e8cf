package automation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/deskdial/deskdial/internal/page"
)

// The target page's readiness timing is unpredictable (network-dependent
// SPA navigation), so fixed delays are brittle. Polling with a bounded
// attempt count turns "unknown wait time" into "bounded wait with an
// observable give-up" the control server can report.
const (
	ReadyPollInterval = 400 * time.Millisecond
	ReadyMaxAttempts  = 25 // 10s total

	ClickRetryInterval = 500 * time.Millisecond
	ClickMaxAttempts   = 8
)

var errNotReady = errors.New("probe not ready")

// constantAttempts builds a fixed-interval policy that allows exactly
// maxAttempts probe evaluations.
func constantAttempts(interval time.Duration, maxAttempts int) retry.Backoff {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(interval))
}

// WaitForReady polls a boolean probe script until it reports true or the
// attempt budget is exhausted. False means "gave up", not an error: the
// caller decides what a timeout means for the overall command. Execution
// errors (page mid-navigation, page unavailable) count as not-ready.
func WaitForReady(ctx context.Context, exec page.Executor, probeScript string, interval time.Duration, maxAttempts int) bool {
	err := retry.Do(ctx, constantAttempts(interval, maxAttempts), func(ctx context.Context) error {
		raw, err := exec.Execute(ctx, probeScript)
		if err != nil {
			return retry.RetryableError(err)
		}
		var ready bool
		if json.Unmarshal(raw, &ready) == nil && ready {
			return nil
		}
		return retry.RetryableError(errNotReady)
	})
	return err == nil
}

// ClickWithRetry repeatedly evaluates an action script that reports a
// tagged string: `clicked:<how>:<detail>` on success, `not-found:<sample>`
// otherwise. It stops at the first clicked result and otherwise returns the
// last attempt's diagnostic so operators can see what the page offered.
func ClickWithRetry(ctx context.Context, exec page.Executor, actionScript string, interval time.Duration, maxAttempts int) ClickOutcome {
	lastDetail := "not-found:"
	err := retry.Do(ctx, constantAttempts(interval, maxAttempts), func(ctx context.Context) error {
		raw, err := exec.Execute(ctx, actionScript)
		if err != nil {
			lastDetail = "not-found:" + err.Error()
			return retry.RetryableError(err)
		}
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			lastDetail = "not-found:unexpected probe result " + string(raw)
			return retry.RetryableError(err)
		}
		lastDetail = tag
		if strings.HasPrefix(tag, "clicked:") {
			return nil
		}
		return retry.RetryableError(errNotReady)
	})
	if err != nil {
		return ClickOutcome{Clicked: false, Detail: lastDetail}
	}
	return ClickOutcome{Clicked: true, Detail: lastDetail}
}
