// Package robotics implements the robotics tool profile of §4.5:
// bounded pose/velocity/gripper commands, a process-wide estop latch,
// and a telemetry snapshot, rate-limited to 10 commands/s.
package robotics

import (
	"context"
	"fmt"
	"math"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/internal/logging"
	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

const (
	maxPoseMagnitude     = 1000.0
	maxVelocityMagnitude = 500.0
)

// Actuator abstracts the underlying robot driver so the table can be
// tested without real hardware.
type Actuator interface {
	SetPose(x, y, z float64) error
	SetVelocity(vx, vy, vz float64) error
	SetGripper(position float64) error
	Telemetry() (string, error)
}

// Table is the robotics profile's tool executor.
type Table struct {
	actuator Actuator
	estop    *policy.Estop
	rate     *policy.SecondRing
	audit    *logging.AuditLogger
}

// New builds the robotics tool table.
func New(actuator Actuator, estop *policy.Estop, rate *policy.SecondRing) *Table {
	return &Table{actuator: actuator, estop: estop, rate: rate}
}

// WithAudit attaches an audit logger; every estop engagement is
// recorded against the correlation id carried on the dispatching Run's
// context. Other robotics tool calls are not audited by this table.
func (t *Table) WithAudit(a *logging.AuditLogger) *Table {
	t.audit = a
	return t
}

func (t *Table) Definitions() []contracts.ToolDefinition {
	return []contracts.ToolDefinition{
		{Name: "robot_cmd", Description: "Issue a pose, velocity, or gripper command.", InputSchema: `{"type":"object","properties":{"cmd_type":{"type":"string","enum":["pose","velocity","gripper"]},"x":{"type":"number"},"y":{"type":"number"},"z":{"type":"number"},"grip":{"type":"number"}},"required":["cmd_type"]}`},
		{Name: "estop", Description: "Engage the emergency stop, blocking all further robot commands.", InputSchema: `{"type":"object","properties":{}}`},
		{Name: "telemetry_snapshot", Description: "Return the current telemetry snapshot.", InputSchema: `{"type":"object","properties":{}}`},
	}
}

func (t *Table) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	data := []byte(inputRaw)
	switch name {
	case "robot_cmd":
		return t.robotCmd(data)
	case "estop":
		t.estop.Trip()
		if t.audit != nil {
			t.audit.LogEstop(logging.CorrelationIDFromContext(ctx))
		}
		return "estop engaged", false
	case "telemetry_snapshot":
		out, err := t.actuator.Telemetry()
		if err != nil {
			return err.Error(), true
		}
		return out, false
	default:
		return fmt.Sprintf("unknown robotics tool: %s", name), true
	}
}

func (t *Table) robotCmd(data []byte) (string, bool) {
	if t.estop.Active() {
		metrics.ToolPolicyViolations.WithLabelValues("robot_cmd", "estop").Inc()
		return "estop is engaged; reset required before issuing robot commands", true
	}
	if !t.rate.Allow() {
		metrics.ToolPolicyViolations.WithLabelValues("robot_cmd", "rate_limited").Inc()
		return "rate limit exceeded (10 commands/s)", true
	}

	cmdType, _ := jsonkit.ExtractString(data, "cmd_type")
	x, _ := jsonkit.ExtractFloat(data, "x")
	y, _ := jsonkit.ExtractFloat(data, "y")
	z, _ := jsonkit.ExtractFloat(data, "z")
	grip, _ := jsonkit.ExtractFloat(data, "grip")

	switch cmdType {
	case "pose":
		if magnitude3(x, y, z) > maxPoseMagnitude {
			metrics.ToolPolicyViolations.WithLabelValues("robot_cmd", "bounds").Inc()
			return "pose magnitude exceeds 1000", true
		}
		if err := t.actuator.SetPose(x, y, z); err != nil {
			return err.Error(), true
		}
	case "velocity":
		if magnitude3(x, y, z) > maxVelocityMagnitude {
			metrics.ToolPolicyViolations.WithLabelValues("robot_cmd", "bounds").Inc()
			return "velocity magnitude exceeds 500", true
		}
		if err := t.actuator.SetVelocity(x, y, z); err != nil {
			return err.Error(), true
		}
	case "gripper":
		if grip < 0 || grip > 1 {
			metrics.ToolPolicyViolations.WithLabelValues("robot_cmd", "bounds").Inc()
			return "grip must be within [0,1]", true
		}
		if err := t.actuator.SetGripper(grip); err != nil {
			return err.Error(), true
		}
	default:
		return fmt.Sprintf("unknown cmd_type: %s", cmdType), true
	}
	return "ok", false
}

func magnitude3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
