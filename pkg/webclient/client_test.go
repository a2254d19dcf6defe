package webclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(config.HTTPConfig{RateLimit: 6000, BurstLimit: 10, RetryAttempts: 3, Timeout: "5s"})
	require.NoError(t, err)
	return c.WithRetryDelay(time.Millisecond)
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Oslo", r.URL.Query().Get("name"))
		assert.Equal(t, "poncho-chat/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"value": 42}`)
	}))
	defer srv.Close()

	var dest struct {
		Value int `json:"value"`
	}
	err := newTestClient(t).GetJSON(context.Background(), srv.URL, url.Values{"name": {"Oslo"}}, &dest)
	require.NoError(t, err)
	assert.Equal(t, 42, dest.Value)
}

func TestGetBytes_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	body, err := newTestClient(t).GetBytes(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetBytes_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t).GetBytes(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, ErrHTTPStatus, ClassifyError(err))
}

func TestGetBytes_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t).GetBytes(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, ErrRateLimit, ClassifyError(err))
}

func TestGetBytes_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t).GetBytes(ctx, srv.URL, nil)
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrUnknown},
		{"unauthorized", &StatusError{StatusCode: 401}, ErrAuthFailed},
		{"forbidden", &StatusError{StatusCode: 403}, ErrAuthFailed},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), ErrTimeout},
		{"timeout text", errors.New("Client.Timeout exceeded"), ErrTimeout},
		{"refused", errors.New("dial tcp: connection refused"), ErrNetwork},
		{"dns", errors.New("lookup x: no such host"), ErrNetwork},
		{"other", errors.New("boom"), ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
			assert.NotEmpty(t, got.HumanMessage())
		})
	}
}

func TestNew_InvalidTimeout(t *testing.T) {
	_, err := New(config.HTTPConfig{Timeout: "soon"})
	assert.Error(t, err)
}
