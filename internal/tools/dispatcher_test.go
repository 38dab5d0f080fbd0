package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/internal/tools/shared"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

type stubProfile struct{}

func (stubProfile) Definitions() []contracts.ToolDefinition {
	return []contracts.ToolDefinition{{Name: "bash", Description: "run a command", InputSchema: `{}`}}
}

func (stubProfile) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	if name == "time" {
		return "profile-shadowed", false
	}
	return "profile handled " + name, false
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	kv, err := shared.NewKVStore(t.TempDir())
	require.NoError(t, err)
	return New(shared.New(kv, nil), stubProfile{})
}

func TestDispatcherPrefersSharedTableOverProfile(t *testing.T) {
	d := newTestDispatcher(t)
	out, isErr := d.Execute(context.Background(), "time", `{}`)
	require.False(t, isErr, out)
	assert.NotEqual(t, "profile-shadowed", out)
}

func TestDispatcherFallsThroughToProfileForUnknownSharedName(t *testing.T) {
	d := newTestDispatcher(t)
	out, isErr := d.Execute(context.Background(), "bash", `{"command":"echo hi"}`)
	require.False(t, isErr, out)
	assert.Equal(t, "profile handled bash", out)
}

func TestDispatcherDefinitionsIncludesBoth(t *testing.T) {
	d := newTestDispatcher(t)
	names := map[string]bool{}
	for _, def := range d.Definitions() {
		names[def.Name] = true
	}
	assert.True(t, names["time"])
	assert.True(t, names["bash"])
}
