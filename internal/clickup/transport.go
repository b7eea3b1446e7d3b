package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
	"github.com/teemow/clickup-mcp/internal/logging"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// request describes one logical API call.
type request struct {
	mode   string
	method string
	path   string
	params url.Values
	body   interface{}
}

// newHTTPClient returns an http.Client whose transport is traced with otelhttp.
func newHTTPClient(timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// do executes req with rate limiting and retries and returns the parsed body.
//
// 429 and 5xx responses and transport errors are retried with exponential
// backoff; a Retry-After header on 429 overrides the backoff delay. Other
// non-2xx responses fail immediately with *APIError.
func (c *Client) do(ctx context.Context, req request) (gjson.Result, error) {
	ctx, span := instrumentation.StartClickUpSpan(ctx, req.mode,
		instrumentation.NewSpanAttributeBuilder().WithTeam(c.TeamID()).Build()...)
	defer span.End()

	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return gjson.Result{}, fmt.Errorf("failed to encode %s request: %w", req.mode, err)
		}
	}

	target := c.cfg.BaseURL + req.path
	if len(req.params) > 0 {
		target += "?" + req.params.Encode()
	}

	start := time.Now()
	status := 0
	attempt := 0
	lastReason := ""

	operation := func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			c.metrics.RecordAPIRetry(ctx, req.mode, lastReason)
			instrumentation.AddSpanEvent(span, "retry", attribute.Int(instrumentation.SpanAttrAttempt, attempt))
			c.logger.Debug("retrying ClickUp request",
				logging.KeyMode, req.mode, "attempt", attempt, "reason", lastReason)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Authorization", c.cfg.AccessToken)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			lastReason = instrumentation.RetryReasonTransport
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			lastReason = instrumentation.RetryReasonTransport
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		status = resp.StatusCode
		if status >= 200 && status < 300 {
			return data, nil
		}

		apiErr := newAPIError(status, data)
		switch {
		case status == http.StatusTooManyRequests:
			lastReason = instrumentation.RetryReasonRateLimited
			if secs := retryAfterSeconds(resp.Header); secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
			return nil, apiErr
		case status >= 500:
			lastReason = instrumentation.RetryReasonServerError
			return nil, apiErr
		default:
			return nil, backoff.Permanent(apiErr)
		}
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
	)
	c.metrics.RecordAPIRequest(ctx, req.mode, status, time.Since(start))
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, status))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		var apiErr *APIError
		if !errors.As(err, &apiErr) && status == http.StatusTooManyRequests {
			// retries exhausted while the server kept asking us to wait
			err = &APIError{StatusCode: status, Message: "rate limit exceeded"}
		}
		return gjson.Result{}, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}

	instrumentation.SetSpanSuccess(span)
	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s %s: response is not valid JSON", req.method, req.path)
	}
	return gjson.ParseBytes(data), nil
}

func retryAfterSeconds(h http.Header) int {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
