// Package llm is the LLM client of §4.4: it builds provider-specific
// request bodies, opens a transport, and parses either a full JSON
// response or a streamed SSE sequence into the common content-block
// model. It exposes exactly two operations: Send and SendStreaming.
package llm

import (
	"context"
	"time"

	"github.com/bhardwajRahul/krillclaw/internal/llm/provider/anthropic"
	"github.com/bhardwajRahul/krillclaw/internal/llm/provider/ollama"
	"github.com/bhardwajRahul/krillclaw/internal/llm/provider/openai"
	"github.com/bhardwajRahul/krillclaw/internal/llm/sse"
	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/internal/transport"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// Client drives one provider's wire dialect over a contracts.Transport.
type Client struct {
	cfg     types.Config
	tools   []types.ToolDef
	baseURL string

	// newTransport is overridable in tests; defaults to constructing a
	// real transport.HTTP, whatever cfg.TransportKind says.
	newTransport func(headers map[string]string) contracts.Transport
}

// New constructs a Client for cfg, exposing tools to the model.
func New(cfg types.Config, tools []types.ToolDef) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = cfg.Provider.DefaultBaseURL()
	}
	c := &Client{cfg: cfg, tools: tools, baseURL: base}
	c.newTransport = c.defaultTransport
	return c
}

func (c *Client) defaultTransport(headers map[string]string) contracts.Transport {
	switch c.cfg.TransportKind {
	case types.TransportHTTP, "":
		return transport.NewHTTP(c.baseURL+c.cfg.Provider.MessagesPath(), headers, 120*time.Second)
	default:
		// No Ble/Serial carrier is built here and cmd/krillclaw does not
		// inject one; the client uses HTTP unless a transport has been
		// injected via WithTransport.
		return transport.NewHTTP(c.baseURL+c.cfg.Provider.MessagesPath(), headers, 120*time.Second)
	}
}

// WithTransport overrides how the client constructs its transport per
// request — used to inject a Ble/Serial transport wrapping an
// already-open pipe, or a fake in tests.
func (c *Client) WithTransport(f func(headers map[string]string) contracts.Transport) *Client {
	c.newTransport = f
	return c
}

func (c *Client) headers() map[string]string {
	switch c.cfg.Provider {
	case types.ProviderClaude:
		return anthropic.Headers(c.cfg.APIKey)
	case types.ProviderOllama:
		return ollama.Headers()
	default:
		return openai.Headers(c.cfg.APIKey)
	}
}

func (c *Client) requestBody(conv types.Conversation, streaming bool) []byte {
	switch c.cfg.Provider {
	case types.ProviderClaude:
		return anthropic.BuildBody(conv, c.cfg, c.tools, streaming)
	case types.ProviderOllama:
		return ollama.BuildBody(conv, c.cfg, c.tools)
	default:
		return openai.BuildBody(conv, c.cfg, c.tools, streaming)
	}
}

// Send performs a single non-streaming model call.
func (c *Client) Send(ctx context.Context, conv types.Conversation) (types.ApiResponse, error) {
	start := time.Now()
	body := c.requestBody(conv, false)
	tr := c.newTransport(c.headers())
	defer tr.Close()

	data, err := tr.Send(ctx, body)
	if err != nil {
		c.recordRequest(start, types.ApiResponse{}, "error")
		return types.ApiResponse{}, err
	}
	resp, err := c.parseFull(data)
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.recordRequest(start, resp, status)
	return resp, err
}

func (c *Client) recordRequest(start time.Time, resp types.ApiResponse, status string) {
	provider := c.cfg.Provider.String()
	metrics.LLMRequestsTotal.WithLabelValues(provider, c.cfg.Model, status).Inc()
	metrics.LLMRequestDuration.WithLabelValues(provider, c.cfg.Model).Observe(time.Since(start).Seconds())
	if resp.InputTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, c.cfg.Model, "input").Add(float64(resp.InputTokens))
	}
	if resp.OutputTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, c.cfg.Model, "output").Add(float64(resp.OutputTokens))
	}
}

// SendStreaming performs a streaming model call, invoking onTextDelta
// for each text fragment observed. Ollama never actually streams (the
// spec's resolved open question): its provider substitutes one Send and
// a single synthetic callback invocation.
func (c *Client) SendStreaming(ctx context.Context, conv types.Conversation, onTextDelta func(string)) (types.ApiResponse, error) {
	if c.cfg.Provider == types.ProviderOllama {
		resp, err := c.Send(ctx, conv)
		if err != nil {
			return resp, err
		}
		if onTextDelta != nil {
			for _, b := range resp.Blocks {
				if b.Kind == types.BlockText {
					onTextDelta(b.Text)
				}
			}
		}
		return resp, nil
	}

	start := time.Now()
	body := c.requestBody(conv, true)
	tr := c.newTransport(c.headers())
	defer tr.Close()

	if err := tr.Write(ctx, body); err != nil {
		c.recordRequest(start, types.ApiResponse{}, "error")
		return types.ApiResponse{}, err
	}

	pr := &transportReader{tr: tr, ctx: ctx}
	var resp types.ApiResponse
	var err error
	switch c.cfg.Provider {
	case types.ProviderClaude:
		d := sse.NewDecoder(onTextDelta)
		resp, err = d.Decode(pr)
	default:
		resp, err = openai.DecodeStream(pr, onTextDelta)
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.recordRequest(start, resp, status)
	return resp, err
}

func (c *Client) parseFull(data []byte) (types.ApiResponse, error) {
	switch c.cfg.Provider {
	case types.ProviderClaude:
		return anthropic.ParseFull(data)
	case types.ProviderOllama:
		return ollama.ParseFull(data)
	default:
		return openai.ParseFull(data)
	}
}

// transportReader adapts contracts.Transport.Read into an io.Reader for
// the SSE decoders, which are written against bufio.Scanner.
type transportReader struct {
	tr  contracts.Transport
	ctx context.Context
}

func (r *transportReader) Read(p []byte) (int, error) {
	return r.tr.Read(r.ctx, p)
}
