package bridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/deskdial/deskdial/internal/automation"
	"github.com/deskdial/deskdial/internal/httputil"
	"github.com/deskdial/deskdial/internal/logging"
)

// StatusResponse is the GET /status body.
type StatusResponse struct {
	Notifications int    `json:"notifications"`
	Theme         string `json:"theme"`
	Connected     bool   `json:"connected"`
}

type callRequest struct {
	Number string `json:"number"`
}

type smsRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.OkJSON(w, map[string]string{"status": "ok"})
}

func (b *Bridge) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Notifications: 0,
		Theme:         string(b.Theme()),
		Connected:     true,
	}
	if b.opts.Poller != nil {
		resp.Notifications = b.opts.Poller.Count()
	}
	httputil.OkJSON(w, resp)
}

func (b *Bridge) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Number == "" {
		httputil.BadRequest(w, "number is required")
		return
	}
	httputil.OkJSON(w, b.placeCall(r.Context(), req.Number))
}

func (b *Bridge) placeCall(ctx context.Context, number string) automation.CallResult {
	if b.opts.Automator == nil {
		// Command accepted but nothing to drive; not a transport error.
		return automation.CallResult{
			Status:  automation.CallFailed,
			Number:  number,
			Message: "automation not wired",
		}
	}

	result := b.opts.Automator.PlaceCall(ctx, number)
	b.record(ctx, "call", result.Number, string(result.Status), result.Message)
	if result.Status == automation.CallButtonClicked {
		b.hub.Broadcast(CallInitiatedEvent(result.Number))
	} else if result.Status == automation.CallFailed {
		b.hub.Broadcast(ErrorEvent(result.Message))
	}
	return result
}

func (b *Bridge) handleSMS(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Number == "" {
		httputil.BadRequest(w, "number is required")
		return
	}
	if req.Text == "" {
		httputil.BadRequest(w, "text is required")
		return
	}
	httputil.OkJSON(w, b.sendSMS(r.Context(), req.Number, req.Text))
}

func (b *Bridge) sendSMS(ctx context.Context, number, text string) automation.SMSResult {
	if b.opts.Automator == nil {
		return automation.SMSResult{Status: "failed", Message: "automation not wired"}
	}
	result := b.opts.Automator.SendSMS(ctx, number, text)
	b.record(ctx, "sms", number, result.Status, result.Message)
	if result.Status == "sent" {
		b.hub.Broadcast(SmsSentEvent(number))
	}
	return result
}

func (b *Bridge) handleReload(w http.ResponseWriter, r *http.Request) {
	if b.opts.Automator != nil {
		if err := b.opts.Automator.ReloadBase(r.Context()); err != nil {
			logging.Warnf("reload: %v", err)
		}
	}
	httputil.OkJSON(w, map[string]string{"status": "reloaded"})
}

func (b *Bridge) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := b.SetTheme(req.Theme); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OkJSON(w, map[string]string{"status": "theme_changed"})
}

// handleCommand accepts the tagged command union and dispatches to the same
// logic as the dedicated routes. An unknown discriminant is a decode
// failure, never a silent default.
func (b *Bridge) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := httputil.ParseJSON(r, &cmd); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	switch cmd.Type {
	case CmdMakeCall:
		if cmd.Number == "" {
			httputil.BadRequest(w, "number is required")
			return
		}
		httputil.OkJSON(w, b.placeCall(r.Context(), cmd.Number))
	case CmdSendSMS:
		if cmd.Number == "" || cmd.Text == "" {
			httputil.BadRequest(w, "number and text are required")
			return
		}
		httputil.OkJSON(w, b.sendSMS(r.Context(), cmd.Number, cmd.Text))
	case CmdGetStatus:
		b.handleStatus(w, r)
	case CmdGetNotifications:
		b.handleUnread(w, r)
	case CmdSetTheme:
		if err := b.SetTheme(cmd.Theme); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.OkJSON(w, map[string]string{"status": "theme_changed"})
	case CmdReload:
		b.handleReload(w, r)
	}
}

func (b *Bridge) handleUnread(w http.ResponseWriter, r *http.Request) {
	if b.opts.Automator == nil {
		httputil.OkJSON(w, map[string]int{"count": 0})
		return
	}
	count, err := b.opts.Automator.UnreadCount(r.Context())
	if err != nil {
		// Degrade to the poller's last observation.
		if b.opts.Poller != nil {
			count = b.opts.Poller.Count()
		}
	}
	httputil.OkJSON(w, map[string]int{"count": count})
}

func (b *Bridge) handleMessages(w http.ResponseWriter, r *http.Request) {
	listResponse(w, r, b, func(ctx context.Context, limit int) (any, error) {
		return b.opts.Automator.Messages(ctx, limit)
	}, automation.DefaultMessageLimit)
}

func (b *Bridge) handleContacts(w http.ResponseWriter, r *http.Request) {
	listResponse(w, r, b, func(ctx context.Context, limit int) (any, error) {
		return b.opts.Automator.Contacts(ctx, limit)
	}, automation.DefaultContactLimit)
}

func (b *Bridge) handleCalls(w http.ResponseWriter, r *http.Request) {
	listResponse(w, r, b, func(ctx context.Context, limit int) (any, error) {
		return b.opts.Automator.CallHistory(ctx, limit)
	}, automation.DefaultCallLimit)
}

func (b *Bridge) handleVoicemails(w http.ResponseWriter, r *http.Request) {
	listResponse(w, r, b, func(ctx context.Context, limit int) (any, error) {
		return b.opts.Automator.Voicemails(ctx, limit)
	}, automation.DefaultVoicemailLimit)
}

// listResponse handles the shared shape of the read-query routes: optional
// ?limit=, empty list when the automation is unwired, and executor errors
// reported as a semantically empty result with a diagnostic.
func listResponse(w http.ResponseWriter, r *http.Request, b *Bridge, scrape func(context.Context, int) (any, error), defaultLimit int) {
	if b.opts.Automator == nil {
		httputil.OkJSON(w, map[string]any{"items": []any{}, "error": "automation not wired"})
		return
	}
	limit := httputil.QueryInt(r, "limit", defaultLimit)
	items, err := scrape(r.Context(), limit)
	if err != nil {
		httputil.OkJSON(w, map[string]any{"items": []any{}, "error": err.Error()})
		return
	}
	httputil.OkJSON(w, map[string]any{"items": items})
}

func (b *Bridge) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := httputil.QueryString(r, "q", "")
	if q == "" {
		httputil.BadRequest(w, "q is required")
		return
	}
	if b.opts.Automator == nil {
		httputil.OkJSON(w, automation.SearchResult{Results: []string{}, Error: "automation not wired"})
		return
	}
	res, err := b.opts.Automator.Search(r.Context(), q, httputil.QueryInt(r, "limit", 20))
	if err != nil {
		httputil.OkJSON(w, automation.SearchResult{Results: []string{}, Error: err.Error()})
		return
	}
	httputil.OkJSON(w, res)
}

func (b *Bridge) handleDumpDOM(w http.ResponseWriter, r *http.Request) {
	if b.opts.Automator == nil {
		httputil.OkJSON(w, automation.DOMDump{})
		return
	}
	dump, err := b.opts.Automator.DumpDOM(r.Context())
	if err != nil {
		httputil.InternalError(w, err.Error())
		return
	}
	httputil.OkJSON(w, dump)
}

func (b *Bridge) handleHistory(w http.ResponseWriter, r *http.Request) {
	if b.opts.History == nil {
		httputil.OkJSON(w, map[string]any{"items": []any{}})
		return
	}
	entries, err := b.opts.History.Recent(r.Context(), httputil.QueryInt(r, "limit", 50))
	if err != nil {
		httputil.InternalError(w, err.Error())
		return
	}
	httputil.OkJSON(w, map[string]any{"items": entries})
}

func (b *Bridge) record(ctx context.Context, kind, number, status, detail string) {
	if b.opts.History == nil {
		return
	}
	if err := b.opts.History.Record(ctx, kind, number, status, detail); err != nil && !errors.Is(err, context.Canceled) {
		logging.Warnf("history record: %v", err)
	}
}
