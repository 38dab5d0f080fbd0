package main

import (
	"context"
	"fmt"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/internal/tools/shared"
)

// bridgePublisher implements iot.Publisher by forwarding MQTT pub/sub
// through the external bridge sidecar's tool-envelope mechanism — the
// same one the shared table uses for web_search/session_*/ota_*,
// since MQTT brokering is itself bridge-sidecar work (§1/§6). A nil
// bridge (the http/coding-profile default, no carrier opened) means
// every call reports unavailable rather than panicking.
type bridgePublisher struct {
	bridge *shared.BridgeCaller
}

func (p *bridgePublisher) Publish(ctx context.Context, topic, payload string) error {
	if p.bridge == nil {
		return fmt.Errorf("no bridge attached for mqtt publish")
	}
	w := jsonkit.NewWriter(len(topic) + len(payload) + 32)
	w.Byte('{').Str("topic").Byte(':').Str(topic).Byte(',').Str("payload").Byte(':').Str(payload).Byte('}')
	out, isErr := p.bridge.Call(ctx, "mqtt_publish", w.String())
	if isErr {
		return fmt.Errorf("%s", out)
	}
	return nil
}

func (p *bridgePublisher) Subscribe(ctx context.Context, topic string) (string, error) {
	if p.bridge == nil {
		return "", fmt.Errorf("no bridge attached for mqtt subscribe")
	}
	w := jsonkit.NewWriter(len(topic) + 16)
	w.Byte('{').Str("topic").Byte(':').Str(topic).Byte('}')
	out, isErr := p.bridge.Call(ctx, "mqtt_subscribe", w.String())
	if isErr {
		return "", fmt.Errorf("%s", out)
	}
	return out, nil
}

// bridgeActuator implements robotics.Actuator the same way: pose,
// velocity, gripper, and telemetry commands cross the bridge-delegated
// envelope to whatever drives the real hardware, since hardware I/O is
// explicitly bridge-sidecar scope. The Actuator interface carries no
// context, so calls use context.Background(); the bridge transport's
// own deadline handling (if any) governs round-trip timing.
type bridgeActuator struct {
	bridge *shared.BridgeCaller
}

func (a *bridgeActuator) call(name string, w *jsonkit.Writer) error {
	if a.bridge == nil {
		return fmt.Errorf("no bridge attached for %s", name)
	}
	out, isErr := a.bridge.Call(context.Background(), name, w.String())
	if isErr {
		return fmt.Errorf("%s", out)
	}
	return nil
}

func (a *bridgeActuator) SetPose(x, y, z float64) error {
	w := jsonkit.NewWriter(48)
	w.Byte('{')
	w.Str("x").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", x))
	w.Byte(',').Str("y").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", y))
	w.Byte(',').Str("z").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", z))
	w.Byte('}')
	return a.call("actuator_set_pose", w)
}

func (a *bridgeActuator) SetVelocity(vx, vy, vz float64) error {
	w := jsonkit.NewWriter(48)
	w.Byte('{')
	w.Str("x").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", vx))
	w.Byte(',').Str("y").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", vy))
	w.Byte(',').Str("z").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", vz))
	w.Byte('}')
	return a.call("actuator_set_velocity", w)
}

func (a *bridgeActuator) SetGripper(position float64) error {
	w := jsonkit.NewWriter(24)
	w.Byte('{').Str("grip").Byte(':')
	w.Raw(fmt.Appendf(nil, "%g", position))
	w.Byte('}')
	return a.call("actuator_set_gripper", w)
}

func (a *bridgeActuator) Telemetry() (string, error) {
	if a.bridge == nil {
		return "", fmt.Errorf("no bridge attached for actuator_telemetry")
	}
	out, isErr := a.bridge.Call(context.Background(), "actuator_telemetry", `{}`)
	if isErr {
		return "", fmt.Errorf("%s", out)
	}
	return out, nil
}
