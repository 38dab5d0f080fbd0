package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bhardwajRahul/krillclaw/internal/llm"
	"github.com/bhardwajRahul/krillclaw/internal/logging"
	"github.com/bhardwajRahul/krillclaw/internal/tools"
	"github.com/bhardwajRahul/krillclaw/internal/tools/coding"
	"github.com/bhardwajRahul/krillclaw/internal/tools/iot"
	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
	"github.com/bhardwajRahul/krillclaw/internal/tools/robotics"
	"github.com/bhardwajRahul/krillclaw/internal/tools/shared"
	"github.com/bhardwajRahul/krillclaw/internal/transport"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// bridgeCallsPerMinute matches the budget internal/tools/iot documents
// for its own rate-limited bridge calls; every bridge-delegated path
// (shared table, iot publisher, robotics actuator) shares that ceiling.
const bridgeCallsPerMinute = 30

// kvDir is the persisted key-value store root of §6: one file per key
// under this directory in the working directory.
const kvDir = ".krillclaw/kv"

// runtime bundles the pieces cmd/krillclaw wires together once at
// startup and tears down once at shutdown.
type runtime struct {
	client   *llm.Client
	executor contracts.ToolExecutor
	toolDefs []types.ToolDef
	pipe     io.Closer // nil unless a ble/serial carrier was opened
}

func (r *runtime) Close() error {
	if r.pipe != nil {
		return r.pipe.Close()
	}
	return nil
}

// buildRuntime opens the configured carrier (if any), builds the shared
// and profile-specific tool tables behind one dispatcher, and
// constructs the LLM client against the resulting tool set.
func buildRuntime(cfg types.Config, auditLog *logging.AuditLogger) (*runtime, error) {
	rt := &runtime{}

	var bridgeTransport contracts.Transport
	switch cfg.TransportKind {
	case types.TransportSerial:
		f, err := os.OpenFile(cfg.SerialPort, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("opening serial port %q: %w", cfg.SerialPort, err)
		}
		rt.pipe = f
		bridgeTransport = transport.NewSerial(nopCloseRWC{f})
	case types.TransportBLE:
		// Connecting to a GATT characteristic requires a BLE stack this
		// module doesn't carry (§1 leaves the bridge sidecar, which owns
		// scanning/pairing, out of scope) — the ble carrier can only be
		// driven by an external bridge process that opens the pipe and
		// execs this binary with that pipe attached, which this driver
		// does not yet do.
		return nil, fmt.Errorf("ble transport requires an external bridge process; not supported by this driver")
	}

	kv, err := shared.NewKVStore(kvDir)
	if err != nil {
		return nil, fmt.Errorf("opening kv store: %w", err)
	}

	var bridge *shared.BridgeCaller
	if bridgeTransport != nil {
		limiter := policy.NewTokenBucket(bridgeCallsPerMinute, nil)
		bridge = shared.NewBridgeCaller(bridgeTransport, limiter.Allow)
	}
	sharedTable := shared.New(kv, bridge)

	profile, err := buildProfile(cfg, bridge, auditLog)
	if err != nil {
		return nil, err
	}

	dispatcher := tools.New(sharedTable, profile)
	rt.executor = dispatcher
	rt.toolDefs = toToolDefs(dispatcher.Definitions())
	rt.client = llm.New(cfg, rt.toolDefs)
	return rt, nil
}

// buildProfile constructs the tool table cfg.ToolProfile names. All three
// tables are compiled in; the profile only selects which of these three
// constructors runs at startup.
func buildProfile(cfg types.Config, bridge *shared.BridgeCaller, auditLog *logging.AuditLogger) (contracts.ToolExecutor, error) {
	switch cfg.ToolProfile {
	case types.ProfileCoding:
		allowlist, err := policy.NewPathAllowlist(cfg.SandboxMode, cfg.AllowedRoot)
		if err != nil {
			return nil, fmt.Errorf("building path allowlist: %w", err)
		}
		return coding.New(allowlist, cfg.SandboxMode), nil

	case types.ProfileIoT:
		limiter := policy.NewTokenBucket(bridgeCallsPerMinute, nil)
		return iot.New(&bridgePublisher{bridge: bridge}, limiter), nil

	case types.ProfileRobotics:
		estop := &policy.Estop{}
		rate := policy.NewSecondRing(10, nil)
		return robotics.New(&bridgeActuator{bridge: bridge}, estop, rate).WithAudit(auditLog), nil

	default:
		return nil, fmt.Errorf("unknown tool profile %q", cfg.ToolProfile)
	}
}

func toToolDefs(defs []contracts.ToolDefinition) []types.ToolDef {
	out := make([]types.ToolDef, len(defs))
	for i, d := range defs {
		out[i] = types.ToolDef{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}
	return out
}

// nopCloseRWC adapts an already-open pipe so a transport built around
// it can be closed once per request (the LLM client's "owned for the
// duration of one request" contract, §4.3) without releasing the
// underlying device handle, which this process keeps open for the
// whole run and closes itself on shutdown.
type nopCloseRWC struct{ io.ReadWriteCloser }

func (nopCloseRWC) Close() error { return nil }
