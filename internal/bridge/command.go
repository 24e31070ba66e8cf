package bridge

import (
	"encoding/json"
	"fmt"
)

// CommandType discriminates the command union.
type CommandType string

const (
	CmdMakeCall         CommandType = "make_call"
	CmdSendSMS          CommandType = "send_sms"
	CmdGetStatus        CommandType = "get_status"
	CmdGetNotifications CommandType = "get_notifications"
	CmdSetTheme         CommandType = "set_theme"
	CmdReload           CommandType = "reload"
)

var knownCommands = map[CommandType]bool{
	CmdMakeCall:         true,
	CmdSendSMS:          true,
	CmdGetStatus:        true,
	CmdGetNotifications: true,
	CmdSetTheme:         true,
	CmdReload:           true,
}

// UnknownVariantError is returned when a tagged payload carries a
// discriminant outside the closed set. Decoding never silently defaults.
type UnknownVariantError struct {
	Field string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// Command is the closed command union. Only the fields matching the
// discriminant are meaningful.
type Command struct {
	Type   CommandType `json:"command"`
	Number string      `json:"number,omitempty"`
	Text   string      `json:"text,omitempty"`
	Theme  string      `json:"theme,omitempty"`
}

// UnmarshalJSON enforces the closed discriminant set.
func (c *Command) UnmarshalJSON(data []byte) error {
	type alias Command
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if !knownCommands[a.Type] {
		return &UnknownVariantError{Field: "command", Value: string(a.Type)}
	}
	*c = Command(a)
	return nil
}

// EventType discriminates the event union.
type EventType string

const (
	EvtConnected         EventType = "connected"
	EvtCallInitiated     EventType = "call_initiated"
	EvtCallEnded         EventType = "call_ended"
	EvtSmsSent           EventType = "sms_sent"
	EvtIncomingCall      EventType = "incoming_call"
	EvtMessageReceived   EventType = "message_received"
	EvtNotificationCount EventType = "notification_count_changed"
	EvtStatus            EventType = "status"
	EvtThemeChanged      EventType = "theme_changed"
	EvtError             EventType = "error"
	EvtAcknowledgment    EventType = "ack"
)

// Event is the closed event union broadcast on the /events stream.
// Optional fields are pointers so zero values survive the wire.
type Event struct {
	Type          EventType `json:"event"`
	Count         *int      `json:"count,omitempty"`
	Number        string    `json:"number,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	Preview       string    `json:"preview,omitempty"`
	Theme         string    `json:"theme,omitempty"`
	Notifications *int      `json:"notifications,omitempty"`
	Connected     *bool     `json:"connected,omitempty"`
	Message       string    `json:"message,omitempty"`
	Command       string    `json:"command,omitempty"`
	Success       *bool     `json:"success,omitempty"`
}

// Event constructors keep call sites terse.

func ConnectedEvent() Event {
	t := true
	return Event{Type: EvtConnected, Connected: &t}
}

func NotificationCountEvent(count int) Event {
	return Event{Type: EvtNotificationCount, Count: &count}
}

func ThemeChangedEvent(themeName string) Event {
	return Event{Type: EvtThemeChanged, Theme: themeName}
}

func CallInitiatedEvent(number string) Event {
	return Event{Type: EvtCallInitiated, Number: number}
}

func SmsSentEvent(number string) Event {
	return Event{Type: EvtSmsSent, Number: number}
}

func ErrorEvent(message string) Event {
	return Event{Type: EvtError, Message: message}
}

func AckEvent(command string, success bool, message string) Event {
	return Event{Type: EvtAcknowledgment, Command: command, Success: &success, Message: message}
}
