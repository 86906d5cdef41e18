package monitor

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/check"
)

const (
	detailCanceled      = "canceled"
	defaultMaxBodyBytes = 64 << 10
)

var _ check.Prober = (*HTTPProber)(nil)

// NewHTTPClient builds the client shared by all probes. Per-check timeouts come from the request
// context, so the client itself has none.
func NewHTTPClient(cfg config.HTTPProbe) *http.Client {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}

	client := &http.Client{Transport: otelhttp.NewTransport(transport)}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.MaxRedirects > 0 {
		limit := cfg.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}
	return client
}

type HTTPProber struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewHTTPProber(client *http.Client, userAgent string, maxBodyBytes int64) *HTTPProber {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPProber{client: client, userAgent: userAgent, maxBodyBytes: maxBodyBytes}
}

// Probe sends exactly one request to the check target and reports what happened.
// It never returns an error: transport failures and timeouts are outcomes.
func (p *HTTPProber) Probe(ctx context.Context, c *check.Check) check.Outcome {
	start := time.Now()
	out := p.probe(ctx, c)
	out.Latency = time.Since(start)
	return out
}

func (p *HTTPProber) probe(ctx context.Context, c *check.Check) check.Outcome {
	target, err := url.Parse(c.Target())
	if err != nil {
		return check.Outcome{HasError: true, ErrorDetail: err.Error()}
	}

	pctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(pctx, strings.ToUpper(c.Method), target.String(), nil)
	if err != nil {
		return check.Outcome{HasError: true, ErrorDetail: err.Error()}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return check.Outcome{HasError: true, ErrorDetail: classify(ctx, pctx, err)}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, p.maxBodyBytes))
	_ = resp.Body.Close()

	return check.Outcome{ResponseCode: resp.StatusCode}
}

func classify(parent, probe context.Context, err error) string {
	if parent.Err() != nil {
		return detailCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(probe.Err(), context.DeadlineExceeded) {
		return check.ErrorDetailTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return check.ErrorDetailTimeout
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
