package monitor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/check"
)

func newTestProber() *HTTPProber {
	return NewHTTPProber(NewHTTPClient(config.HTTPProbe{VerifyTLS: true}), "Uptimer/test", 0)
}

func checkFor(srv *httptest.Server, path, method string, timeout float64) *check.Check {
	return &check.Check{
		ID:             testID,
		Protocol:       "http",
		URL:            strings.TrimPrefix(srv.URL, "http://") + path,
		Method:         method,
		SuccessCodes:   []int{200},
		TimeoutSeconds: timeout,
	}
}

func TestHTTPProber_Response(t *testing.T) {
	type seen struct {
		method, query, ua string
		body              []byte
	}
	got := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- seen{method: r.Method, query: r.URL.RawQuery, ua: r.UserAgent(), body: body}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(strings.Repeat("x", 256<<10)))
	}))
	defer srv.Close()

	out := newTestProber().Probe(context.Background(), checkFor(srv, "/health?q=a%2Fb&x=1", "post", 2))
	require.False(t, out.HasError, out.ErrorDetail)
	require.Equal(t, http.StatusAccepted, out.ResponseCode)
	require.Positive(t, out.Latency)

	req := <-got
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "q=a%2Fb&x=1", req.query)
	require.Equal(t, "Uptimer/test", req.ua)
	require.Empty(t, req.body)
}

func TestHTTPProber_ServerErrorIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := newTestProber().Probe(context.Background(), checkFor(srv, "/", "get", 2))
	require.False(t, out.HasError)
	require.Equal(t, http.StatusInternalServerError, out.ResponseCode)
}

func TestHTTPProber_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	out := newTestProber().Probe(context.Background(), checkFor(srv, "/", "get", 2))
	require.False(t, out.HasError)
	require.Equal(t, http.StatusFound, out.ResponseCode)
}

func TestHTTPProber_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	out := newTestProber().Probe(context.Background(), checkFor(srv, "/slow", "get", 0.1))
	require.True(t, out.HasError)
	require.Equal(t, check.ErrorDetailTimeout, out.ErrorDetail)
	require.Zero(t, out.ResponseCode)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPProber_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := checkFor(srv, "/", "get", 2)
	srv.Close()

	out := newTestProber().Probe(context.Background(), c)
	require.True(t, out.HasError)
	require.NotEmpty(t, out.ErrorDetail)
	require.NotEqual(t, check.ErrorDetailTimeout, out.ErrorDetail)
}

func TestHTTPProber_InvalidTarget(t *testing.T) {
	c := &check.Check{Protocol: "http", URL: "exa mple.com/%zz", Method: "get", TimeoutSeconds: 1}
	out := newTestProber().Probe(context.Background(), c)
	require.True(t, out.HasError)
	require.NotEmpty(t, out.ErrorDetail)
}

func TestHTTPProber_ParentCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := newTestProber().Probe(ctx, checkFor(srv, "/", "get", 2))
	require.True(t, out.HasError)
	require.Equal(t, detailCanceled, out.ErrorDetail)
}
