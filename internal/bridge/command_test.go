package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandUnmarshalKnownVariants(t *testing.T) {
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(`{"command":"make_call","number":"5551234567"}`), &cmd))
	assert.Equal(t, CmdMakeCall, cmd.Type)
	assert.Equal(t, "5551234567", cmd.Number)

	require.NoError(t, json.Unmarshal([]byte(`{"command":"set_theme","theme":"solar"}`), &cmd))
	assert.Equal(t, CmdSetTheme, cmd.Type)
	assert.Equal(t, "solar", cmd.Theme)
}

func TestCommandUnmarshalUnknownVariant(t *testing.T) {
	var cmd Command
	err := json.Unmarshal([]byte(`{"command":"self_destruct"}`), &cmd)
	require.Error(t, err)

	var unknown *UnknownVariantError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "command", unknown.Field)
	assert.Equal(t, "self_destruct", unknown.Value)
}

func TestCommandUnmarshalMissingDiscriminant(t *testing.T) {
	var cmd Command
	err := json.Unmarshal([]byte(`{"number":"5551234567"}`), &cmd)
	require.Error(t, err, "absent discriminant is not a silent default")
}

func TestEventZeroValuesSurviveTheWire(t *testing.T) {
	data, err := json.Marshal(NotificationCountEvent(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"notification_count_changed","count":0}`, string(data))

	data, err = json.Marshal(AckEvent("reload", false, "no page"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ack","command":"reload","success":false,"message":"no page"}`, string(data))
}

func TestEventConstructors(t *testing.T) {
	data, err := json.Marshal(ConnectedEvent())
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"connected","connected":true}`, string(data))

	data, err = json.Marshal(ThemeChangedEvent("dracula"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"theme_changed","theme":"dracula"}`, string(data))
}
