// Package tools wires the shared tool table in front of one profile
// table (coding/iot/robotics), per §4.5: shared tools are
// consulted first, and only a name neither recognises reaches the
// profile table's own "unknown tool" response.
package tools

import (
	"context"

	"github.com/bhardwajRahul/krillclaw/internal/tools/shared"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

// Dispatcher implements contracts.ToolExecutor over a shared table and a
// single profile table.
type Dispatcher struct {
	shared  *shared.Table
	profile contracts.ToolExecutor
}

// New builds a dispatcher. profile is whichever of coding.Table,
// iot.Table, or robotics.Table the driver constructed for cfg.ToolProfile.
func New(sharedTable *shared.Table, profile contracts.ToolExecutor) *Dispatcher {
	return &Dispatcher{shared: sharedTable, profile: profile}
}

// Definitions returns the shared table's tools followed by the profile
// table's, in the order the model sees them.
func (d *Dispatcher) Definitions() []contracts.ToolDefinition {
	defs := d.shared.Definitions()
	return append(defs, d.profile.Definitions()...)
}

// Execute consults the shared table first; a name it doesn't recognise
// falls through to the profile table, which answers a name it doesn't
// recognise with its own "unknown tool" error. Such names are not
// forwarded to the bridge.
func (d *Dispatcher) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	if d.shared.Handles(name) {
		return d.shared.Execute(ctx, name, inputRaw)
	}
	return d.profile.Execute(ctx, name, inputRaw)
}
