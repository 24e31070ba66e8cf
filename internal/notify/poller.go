// Package notify owns the observed notification count. The poller is the
// single writer; everyone else reads snapshots through Count.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/deskdial/deskdial/internal/automation"
	"github.com/deskdial/deskdial/internal/logging"
)

// DefaultInterval is how often the unread probe runs.
const DefaultInterval = 3 * time.Second

// Poller periodically probes the page's unread badges and raises a change
// callback when the count moves. A second probe on the same tick applies
// the blank-page heuristic and reloads the base URL as best-effort
// self-healing.
type Poller struct {
	mu       sync.Mutex
	auto     *automation.Automator
	onChange func(int)
	cancel   context.CancelFunc
	interval time.Duration

	countMu sync.RWMutex
	count   int
}

// NewPoller returns an idle poller.
func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval}
}

// Count returns the last observed unread count.
func (p *Poller) Count() int {
	p.countMu.RLock()
	defer p.countMu.RUnlock()
	return p.count
}

// Polling reports whether a page is currently bound.
func (p *Poller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Start transitions Idle→Polling: runs one probe immediately, then probes
// on a fixed interval. Starting while already polling restarts with the new
// page binding.
func (p *Poller) Start(auto *automation.Automator, onChange func(int)) {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.auto = auto
	p.onChange = onChange
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop transitions Polling→Idle, cancels the timer, and clears the page
// reference and callback. Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.auto = nil
	p.onChange = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	auto := p.auto
	onChange := p.onChange
	p.mu.Unlock()
	if auto == nil {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	count, err := auto.UnreadCount(probeCtx)
	if err != nil {
		// Page unavailable or mid-navigation; keep the last good value.
		logging.Debugf("unread probe failed: %v", err)
	} else {
		p.countMu.Lock()
		changed := count != p.count
		p.count = count
		p.countMu.Unlock()
		if changed && onChange != nil {
			onChange(count)
		}
	}

	blank, err := auto.IsBlank(probeCtx)
	if err == nil && blank {
		logging.Warnf("page body is empty, reloading base URL")
		if err := auto.ReloadBase(probeCtx); err != nil {
			logging.Warnf("self-heal reload failed: %v", err)
		}
	}
}
