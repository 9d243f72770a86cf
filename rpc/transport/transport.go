// Package transport issues single logical JSON-RPC calls to the upstream
// provider over HTTPS, retrying a bounded number of times on transient
// failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

const (
	// DefaultMaxAttempts bounds one logical call: the initial attempt plus
	// four retries.
	DefaultMaxAttempts = 5

	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 8 * time.Second
)

// Config tunes a FetchTransport. URL is required; zero values elsewhere
// fall back to the defaults above.
type Config struct {
	URL             string
	Timeout         time.Duration // per-attempt bound
	MaxAttempts     int
	InitialInterval time.Duration // first backoff wait
	MaxInterval     time.Duration // backoff cap
}

// FetchTransport sends JSON-RPC requests to one upstream endpoint. It is
// stateless across calls and safe for concurrent use.
type FetchTransport struct {
	url             string
	client          *http.Client
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	log             log.Logger
}

// New creates a transport bound to cfg.URL.
func New(cfg Config) *FetchTransport {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaultMaxInterval
	}
	return &FetchTransport{
		url:             cfg.URL,
		client:          &http.Client{Timeout: cfg.Timeout},
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		log:             log.New("package", "web3pipe/rpc/transport"),
	}
}

// Close releases idle upstream connections.
func (t *FetchTransport) Close() {
	t.client.CloseIdleConnections()
}

// Send performs one logical JSON-RPC call. Transient failures are retried
// with increasing backoff up to the attempt limit; terminal failures and
// context cancellation surface immediately.
func (t *FetchTransport) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.initialInterval
	bo.MaxInterval = t.maxInterval
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		resp, err := t.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		if attempt == t.maxAttempts {
			break
		}

		wait := bo.NextBackOff()
		t.log.Debug("retrying upstream call", "method", req.Method, "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, errors.Wrap(lastErr, exhaustedPrefix)
}

func (t *FetchTransport) attempt(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Connection resets, refusals and attempt timeouts all land here.
		return nil, &retryableError{err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: errors.Wrap(err, "read response body")}
	}

	switch {
	case httpResp.StatusCode == http.StatusMethodNotAllowed:
		return nil, ErrMethodNotAvailable
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case httpResp.StatusCode == http.StatusServiceUnavailable,
		httpResp.StatusCode == http.StatusGatewayTimeout:
		return nil, retryable("upstream returned status %d", httpResp.StatusCode)
	case httpResp.StatusCode < 200 || httpResp.StatusCode > 299:
		return nil, errors.Errorf("upstream returned unexpected status %d", httpResp.StatusCode)
	}

	// An upstream answering a block-by-number query with the literal body
	// "Not Found" means the block does not exist yet; that is a successful
	// null result, not an error.
	if isBlockByNumberQuery(req.Method) && string(bytes.TrimSpace(raw)) == "Not Found" {
		return jsonrpc.NewNullResult(req), nil
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, retryable("non-JSON response body: %q", truncate(raw, 64))
	}
	return &resp, nil
}

// isBlockByNumberQuery covers the method the "Not Found" override applies
// to. Both params forms, [blockTag] and [blockTag, fullTx], identify the
// same logical query.
func isBlockByNumberQuery(method string) bool {
	return method == "eth_getBlockByNumber"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
