package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"number":"911"}`))
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		Number string `json:"number"`
	}
	require.NoError(t, ParseJSON(req, &body))
	assert.Equal(t, "911", body.Number)
}

func TestParseJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var body struct{}
	require.ErrorIs(t, ParseJSON(req, &body), ErrEmptyBody)
}

func TestParseJSONWrongContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	var body struct{}
	require.Error(t, ParseJSON(req, &body))
}

func TestParseJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	var body struct{}
	require.Error(t, ParseJSON(req, &body))
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x", nil)
	assert.Equal(t, 5, QueryInt(req, "limit", 10))
	assert.Equal(t, 10, QueryInt(req, "missing", 10))
	assert.Equal(t, 10, QueryInt(req, "bad", 10))
}

func TestWriteJSONErrors(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, "number is required")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "number is required", body.Error)
}
