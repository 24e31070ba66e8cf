// Package bridge is the local control surface: a loopback HTTP server that
// accepts call/SMS/status/theme commands from external clients, drives the
// page automation, and translates automation outcomes into structured
// responses. Calling the API wrong is a 4xx; automation that ran but could
// not finish is a 200 with a semantic failure payload.
package bridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/deskdial/deskdial/internal/automation"
	"github.com/deskdial/deskdial/internal/history"
	"github.com/deskdial/deskdial/internal/logging"
	"github.com/deskdial/deskdial/internal/notify"
	"github.com/deskdial/deskdial/internal/page"
	"github.com/deskdial/deskdial/internal/theme"
)

const shutdownTimeout = 5 * time.Second

// InvalidPortError reports a port outside [1, 65535]. Starting or updating
// with an invalid port fails with this error and never mutates a running
// server.
type InvalidPortError struct {
	Port int
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port %d: must be in 1-65535", e.Port)
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return &InvalidPortError{Port: port}
	}
	return nil
}

// Options carries the bridge's collaborators. Every field may be nil: an
// unwired dependency degrades the matching routes to safe defaults instead
// of crashing.
type Options struct {
	Automator     *automation.Automator
	Poller        *notify.Poller
	History       *history.Store
	Collector     *page.CallbackCollector
	OnThemeChange func(theme.Name)
}

// Bridge is the control server. It binds to loopback only and fails fast
// on a busy port; silent port migration would break every client's idea of
// where the bridge lives.
type Bridge struct {
	mu   sync.Mutex
	port int
	ln   net.Listener
	srv  *http.Server

	opts Options
	hub  *EventHub

	themeMu sync.RWMutex
	theme   theme.Name
}

// New returns an unstarted bridge for the given port.
func New(port int, opts Options) *Bridge {
	return &Bridge{
		port:  port,
		opts:  opts,
		hub:   NewEventHub(),
		theme: theme.Default,
	}
}

// Hub exposes the event stream for collaborators that raise events
// (the notification poller, the shell).
func (b *Bridge) Hub() *EventHub {
	return b.hub
}

// Theme returns the active theme name.
func (b *Bridge) Theme() theme.Name {
	b.themeMu.RLock()
	defer b.themeMu.RUnlock()
	return b.theme
}

// SetTheme validates and applies a theme, notifying the shell hook and the
// event stream.
func (b *Bridge) SetTheme(name string) error {
	t, err := theme.Parse(name)
	if err != nil {
		return err
	}
	b.themeMu.Lock()
	b.theme = t
	b.themeMu.Unlock()

	if b.opts.OnThemeChange != nil {
		b.opts.OnThemeChange(t)
	}
	b.hub.Broadcast(ThemeChangedEvent(string(t)))
	return nil
}

// Addr returns the bound listen address, empty when stopped.
func (b *Bridge) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ln == nil {
		return ""
	}
	return b.ln.Addr().String()
}

// Port returns the configured port.
func (b *Bridge) Port() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port
}

// Start validates the port, binds loopback, and serves in the background.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startLocked()
}

func (b *Bridge) startLocked() error {
	if b.ln != nil {
		return fmt.Errorf("bridge already running on %s", b.ln.Addr())
	}
	if err := validatePort(b.port); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", b.port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", b.port, err)
	}

	srv := &http.Server{
		Handler:     b.router(),
		IdleTimeout: 120 * time.Second,
	}
	b.ln = ln
	b.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Errorf("bridge server: %v", err)
		}
	}()

	logging.Infof("bridge listening on %s", ln.Addr())
	return nil
}

// Stop shuts the listener down gracefully. Idempotent.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopLocked()
}

func (b *Bridge) stopLocked() error {
	if b.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := b.srv.Shutdown(ctx)
	b.srv = nil
	b.ln = nil
	return err
}

// UpdatePort rebinds a running bridge to a new port. An invalid port is
// rejected up front and the running server is left untouched. If the new
// bind fails, the old port is restored.
func (b *Bridge) UpdatePort(newPort int) error {
	if err := validatePort(newPort); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if newPort == b.port && b.ln != nil {
		return nil
	}

	wasRunning := b.ln != nil
	oldPort := b.port
	if wasRunning {
		if err := b.stopLocked(); err != nil {
			return fmt.Errorf("stop for rebind: %w", err)
		}
	}

	b.port = newPort
	if !wasRunning {
		return nil
	}
	if err := b.startLocked(); err != nil {
		b.port = oldPort
		if restoreErr := b.startLocked(); restoreErr != nil {
			return fmt.Errorf("rebind to %d failed (%v) and restore of %d failed: %w",
				newPort, err, oldPort, restoreErr)
		}
		return err
	}
	return nil
}

func (b *Bridge) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/health", b.handleHealth)
	r.Get("/status", b.handleStatus)
	r.Post("/call", b.handleCall)
	r.Post("/sms", b.handleSMS)
	r.Post("/reload", b.handleReload)
	r.Post("/theme", b.handleTheme)
	r.Post("/command", b.handleCommand)

	r.Get("/unread", b.handleUnread)
	r.Get("/messages", b.handleMessages)
	r.Get("/contacts", b.handleContacts)
	r.Get("/calls", b.handleCalls)
	r.Get("/voicemails", b.handleVoicemails)
	r.Get("/search", b.handleSearch)
	r.Get("/dump-dom", b.handleDumpDOM)
	r.Get("/history", b.handleHistory)

	r.Get("/events", b.hub.Handler())

	if b.opts.Collector != nil {
		cb := b.opts.Collector.Handler()
		r.Post("/internal/page/callback", cb)
		r.Options("/internal/page/callback", cb)
	}

	return r
}
