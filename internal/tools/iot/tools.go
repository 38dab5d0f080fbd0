// Package iot implements the IoT tool profile of §4.5: MQTT pub/sub and
// a bounded HTTP request tool. The key-value store lives in the shared
// table, which every profile sits behind. bash and file writes are
// rejected outright — there is no coding table linked alongside this
// one.
package iot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

const maxHTTPBody = 64 * 1024

// Publisher abstracts the MQTT client so the table can be tested
// without a broker; the bridge sidecar supplies the real
// implementation over BLE/serial in an embedded deployment.
type Publisher interface {
	Publish(ctx context.Context, topic, payload string) error
	Subscribe(ctx context.Context, topic string) (string, error)
}

// Table is the IoT profile's tool executor.
type Table struct {
	pub   Publisher
	limit *policy.TokenBucket
	http  *http.Client
}

// New builds the IoT tool table. limit gates publish_mqtt,
// subscribe_mqtt, and http_request at the 30-call-per-minute bridge
// budget.
func New(pub Publisher, limit *policy.TokenBucket) *Table {
	return &Table{pub: pub, limit: limit, http: &http.Client{Timeout: 10 * time.Second}}
}

func (t *Table) Definitions() []contracts.ToolDefinition {
	return []contracts.ToolDefinition{
		{Name: "publish_mqtt", Description: "Publish a payload to an MQTT topic.", InputSchema: `{"type":"object","properties":{"topic":{"type":"string"},"payload":{"type":"string"}},"required":["topic","payload"]}`},
		{Name: "subscribe_mqtt", Description: "Wait for and return the next message on an MQTT topic.", InputSchema: `{"type":"object","properties":{"topic":{"type":"string"}},"required":["topic"]}`},
		{Name: "http_request", Description: "Issue a bounded HTTP GET/POST request.", InputSchema: `{"type":"object","properties":{"method":{"type":"string"},"url":{"type":"string"},"body":{"type":"string"}},"required":["method","url"]}`},
		{Name: "device_info", Description: "Report basic device identity.", InputSchema: `{"type":"object","properties":{}}`},
	}
}

func (t *Table) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	data := []byte(inputRaw)
	switch name {
	case "publish_mqtt":
		return t.publish(ctx, data)
	case "subscribe_mqtt":
		return t.subscribe(ctx, data)
	case "http_request":
		return t.httpRequest(ctx, data)
	case "device_info":
		return t.deviceInfo()
	case "bash", "write_file":
		return fmt.Sprintf("%s is not available in the iot profile", name), true
	default:
		return fmt.Sprintf("unknown iot tool: %s", name), true
	}
}

func (t *Table) checkRate(tool string) bool {
	if t.limit == nil {
		return true
	}
	if t.limit.Allow() {
		return true
	}
	metrics.ToolPolicyViolations.WithLabelValues(tool, "rate_limited").Inc()
	return false
}

func (t *Table) publish(ctx context.Context, data []byte) (string, bool) {
	if !t.checkRate("publish_mqtt") {
		return "rate limit exceeded", true
	}
	topic, _ := jsonkit.ExtractString(data, "topic")
	payload, _ := jsonkit.ExtractString(data, "payload")
	if err := t.pub.Publish(ctx, topic, jsonkit.Unescape(payload)); err != nil {
		return err.Error(), true
	}
	return "ok", false
}

func (t *Table) subscribe(ctx context.Context, data []byte) (string, bool) {
	if !t.checkRate("subscribe_mqtt") {
		return "rate limit exceeded", true
	}
	topic, _ := jsonkit.ExtractString(data, "topic")
	msg, err := t.pub.Subscribe(ctx, topic)
	if err != nil {
		return err.Error(), true
	}
	return msg, false
}

func (t *Table) httpRequest(ctx context.Context, data []byte) (string, bool) {
	if !t.checkRate("http_request") {
		return "rate limit exceeded", true
	}
	method, _ := jsonkit.ExtractString(data, "method")
	url, _ := jsonkit.ExtractString(data, "url")
	if method == "" {
		method = "GET"
	}
	var body io.Reader
	if b, ok := jsonkit.ExtractString(data, "body"); ok {
		body = bytes.NewReader([]byte(jsonkit.Unescape(b)))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err.Error(), true
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return err.Error(), true
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxHTTPBody))
	if err != nil {
		return err.Error(), true
	}
	return string(respBody), resp.StatusCode >= 400
}

func (t *Table) deviceInfo() (string, bool) {
	return `{"platform":"krillclaw","profile":"iot"}`, false
}
