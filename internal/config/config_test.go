package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytes(t *testing.T) {
	c, err := LoadFromBytes([]byte(`
bridge:
  port: 9100
page:
  base_url: "https://voice.example.test"
theme: dracula
quiet: true
`))
	require.NoError(t, err)
	assert.Equal(t, 9100, c.Bridge.Port)
	assert.Equal(t, "https://voice.example.test", c.Page.BaseURL)
	assert.Equal(t, "dracula", c.Theme)
	assert.True(t, c.Quiet)
}

func TestLoadFromBytesClampsInvalid(t *testing.T) {
	c, err := LoadFromBytes([]byte(`
bridge:
  port: 70000
theme: neon
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, c.Bridge.Port)
	assert.Equal(t, DefaultBaseURL, c.Page.BaseURL)
	assert.Equal(t, "default", c.Theme)
}

func TestLoadFromBytesEmpty(t *testing.T) {
	c, err := LoadFromBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, c.Bridge.Port)
	assert.Equal(t, DefaultBaseURL, c.Page.BaseURL)
}

func TestLoadFromBytesExpandsEnv(t *testing.T) {
	t.Setenv("DESKDIAL_TEST_PORT", "9200")
	c, err := LoadFromBytes([]byte("bridge:\n  port: ${DESKDIAL_TEST_PORT}\n"))
	require.NoError(t, err)
	assert.Equal(t, 9200, c.Bridge.Port)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, c.Bridge.Port)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bridge: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
