package page

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultExecTimeout = 15 * time.Second

// ViewHandle is what the native shell's browser view must provide. ExecJS
// is fire-and-forget: results come back through the callback endpoint.
type ViewHandle interface {
	ExecJS(js string)
	SetURL(url string)
	Reload()
}

// View adapts a native webview handle to the Executor interface. The handle
// is an injected dependency with an explicit unset state: until the shell
// calls SetHandle, and again after ClearHandle, every operation fails with
// ErrPageUnavailable.
type View struct {
	mu          sync.RWMutex
	handle      ViewHandle
	collector   *CallbackCollector
	callbackURL string
	timeout     time.Duration
}

// NewView returns a View with no handle bound. callbackURL is where the
// injected script posts results (the bridge's /internal/page/callback).
func NewView(collector *CallbackCollector, callbackURL string) *View {
	return &View{
		collector:   collector,
		callbackURL: callbackURL,
		timeout:     defaultExecTimeout,
	}
}

// SetHandle binds the native webview. Called by the shell once the view
// exists, and again if the view is recreated.
func (v *View) SetHandle(h ViewHandle) {
	v.mu.Lock()
	v.handle = h
	v.mu.Unlock()
}

// ClearHandle unbinds the webview (view torn down).
func (v *View) ClearHandle() {
	v.mu.Lock()
	v.handle = nil
	v.mu.Unlock()
}

// SetCallbackURL updates the callback endpoint, needed after a port change.
func (v *View) SetCallbackURL(url string) {
	v.mu.Lock()
	v.callbackURL = url
	v.mu.Unlock()
}

func (v *View) snapshot() (ViewHandle, string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.handle, v.callbackURL
}

// Execute wraps actionCode in the callback IIFE, injects it, and waits for
// the matching result.
func (v *View) Execute(ctx context.Context, actionCode string) (json.RawMessage, error) {
	handle, cbURL := v.snapshot()
	if handle == nil {
		return nil, ErrPageUnavailable
	}

	reqID := "req-" + uuid.NewString()
	v.collector.Register(reqID)

	handle.ExecJS(wrapAction(reqID, cbURL, actionCode))
	return v.collector.Wait(ctx, reqID, v.timeout)
}

// Navigate points the view at a URL.
func (v *View) Navigate(_ context.Context, url string) error {
	handle, _ := v.snapshot()
	if handle == nil {
		return ErrPageUnavailable
	}
	handle.SetURL(url)
	return nil
}

// Reload reloads the current page.
func (v *View) Reload(_ context.Context) error {
	handle, _ := v.snapshot()
	if handle == nil {
		return ErrPageUnavailable
	}
	handle.Reload()
	return nil
}

// callbackBoot defines __cb(data), the universal result callback. It
// prefers a shell-predefined hook (window.__deskdial_cb, installed by
// native message-handler shells where fetch to loopback is blocked) and
// falls back to an HTTP POST to the bridge's callback endpoint.
func callbackBoot(callbackURL string) string {
	return fmt.Sprintf(`var __cb=window.__deskdial_cb||function(d){try{fetch(%s,{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify(d)}).catch(function(){})}catch(e){}};`,
		JSONLiteral(callbackURL))
}

// wrapAction wraps action code in the callback boilerplate. The action code
// must assign its result to `__result`.
func wrapAction(requestID, callbackURL, actionCode string) string {
	return fmt.Sprintf(`(function(){
%s
try{
var __result=null;
%s
__cb({requestId:%s,data:__result});
}catch(e){
__cb({requestId:%s,error:e.message||String(e)});
}
})();`,
		callbackBoot(callbackURL),
		actionCode,
		JSONLiteral(requestID),
		JSONLiteral(requestID),
	)
}
