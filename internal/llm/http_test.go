package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

func bodyServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("X-Test") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestSendJSON(t *testing.T) {
	srv := bodyServer(http.StatusOK, `{"ok":true}`)
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), nil, Request{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1"},
		Body:    map[string]any{"model": "m"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestSendJSONBadStatus(t *testing.T) {
	srv := bodyServer(http.StatusServiceUnavailable, "busy")
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), Request{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1"},
		Body:    struct{}{},
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.True(t, common.IsCode(err, common.CodeInference))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "busy", string(raw))
}

func TestSendJSONCapsBody(t *testing.T) {
	srv := bodyServer(http.StatusOK, strings.Repeat("x", 64))
	defer srv.Close()

	raw, _, err := SendJSON(context.Background(), nil, Request{
		URL:      srv.URL,
		Headers:  map[string]string{"X-Test": "1"},
		Body:     struct{}{},
		MaxBytes: 16,
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.True(t, common.IsCode(err, common.CodeInference))
	assert.Len(t, raw, 16)
}

func TestSendJSONTransportError(t *testing.T) {
	srv := bodyServer(http.StatusOK, "")
	url := srv.URL
	srv.Close()

	_, status, err := SendJSON(context.Background(), nil, Request{URL: url, Body: struct{}{}}, nil)
	require.Error(t, err)
	assert.Zero(t, status)
	assert.True(t, common.IsCode(err, common.CodeInference))
}
