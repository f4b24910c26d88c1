package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/chamber/internal/types"
)

func TestClient_GetSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quote", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("amount"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(types.ZeroX, srv.URL+"/v1/", srv.Client())
	c.Headers.Set("X-Api-Key", "secret")
	body, err := c.Get(context.Background(), "/quote", url.Values{"amount": {"100"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "sell", in["kind"])
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(types.CowSwap, srv.URL, nil)
	_, err := c.PostJSON(context.Background(), "/quote", map[string]string{"kind": "sell"})
	require.NoError(t, err)
}

func TestClient_Non2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, strings.Repeat("x", 500))
	}))
	defer srv.Close()

	c := NewClient(types.OneInch, srv.URL, srv.Client())
	_, err := c.Get(context.Background(), "/quote", nil)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, types.OneInch, he.Source)
	assert.Less(t, len(he.Error()), 400)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(types.Paraswap, srv.URL, srv.Client()).Get(ctx, "/prices", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
