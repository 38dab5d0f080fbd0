package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// HTTP implements contracts.Transport over net/http. Send performs a
// one-shot exchange; Write/Read expose the streaming body for the
// SSE path once a request has been opened via Write.
type HTTP struct {
	client  *http.Client
	url     string
	method  string
	headers map[string]string

	resp *http.Response
}

// NewHTTP constructs an HTTP transport targeting url with the given
// headers, used for both full-response and SSE-streaming requests.
func NewHTTP(url string, headers map[string]string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTP{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		method:  http.MethodPost,
		headers: headers,
	}
}

// Send performs a one-shot POST of body and returns the full response.
func (h *HTTP) Send(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, h.method, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, types.WrapError(types.ErrHTTPError, "http: request construction failed", err)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, types.WrapError(types.ErrConnectionRefused, "http: request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.WrapError(types.ErrHTTPError, "http: reading response body failed", err)
	}
	if err := classifyStatus(resp.StatusCode); err != nil {
		return data, err
	}
	return data, nil
}

// Write opens the request with body and keeps the response open for
// streamed reads via Read — used for the SSE path.
func (h *HTTP) Write(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, h.method, h.url, bytes.NewReader(body))
	if err != nil {
		return types.WrapError(types.ErrHTTPError, "http: request construction failed", err)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return types.WrapError(types.ErrConnectionRefused, "http: request failed", err)
	}
	if err := classifyStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return err
	}
	h.resp = resp
	return nil
}

// Read fills buf from the streaming response body opened by Write.
func (h *HTTP) Read(ctx context.Context, buf []byte) (int, error) {
	if h.resp == nil {
		return 0, types.NewError(types.ErrInvalidResponse, "http: Read called before Write opened a stream")
	}
	n, err := h.resp.Body.Read(buf)
	if err != nil && err != io.EOF {
		return n, types.WrapError(types.ErrConnectionRefused, "http: stream read failed", err)
	}
	if err == io.EOF {
		return n, io.EOF
	}
	return n, nil
}

// Close idempotently releases the open streaming response, if any.
func (h *HTTP) Close() error {
	if h.resp == nil {
		return nil
	}
	resp := h.resp
	h.resp = nil
	return resp.Body.Close()
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return types.NewError(types.ErrAuthError, "http: authentication rejected")
	case code == http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, "http: rate limited")
	case code >= 500:
		return types.NewError(types.ErrServerError, "http: server error")
	case code >= 400:
		return types.NewError(types.ErrHTTPError, "http: client error")
	default:
		return nil
	}
}
