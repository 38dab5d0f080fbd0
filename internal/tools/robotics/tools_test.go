package robotics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/internal/logging"
	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
)

type fakeActuator struct {
	pose     [3]float64
	velocity [3]float64
	gripper  float64
	poseErr  error
}

func (f *fakeActuator) SetPose(x, y, z float64) error {
	if f.poseErr != nil {
		return f.poseErr
	}
	f.pose = [3]float64{x, y, z}
	return nil
}

func (f *fakeActuator) SetVelocity(vx, vy, vz float64) error {
	f.velocity = [3]float64{vx, vy, vz}
	return nil
}

func (f *fakeActuator) SetGripper(position float64) error {
	f.gripper = position
	return nil
}

func (f *fakeActuator) Telemetry() (string, error) {
	return `{"status":"ok"}`, nil
}

func newTestTable() (*Table, *fakeActuator) {
	act := &fakeActuator{}
	tbl := New(act, &policy.Estop{}, policy.NewSecondRing(10, nil))
	return tbl, act
}

func TestRobotCmdPoseWithinBoundsDispatches(t *testing.T) {
	tbl, act := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"pose","x":3,"y":4,"z":0}`)
	require.False(t, isErr, out)
	assert.Equal(t, [3]float64{3, 4, 0}, act.pose)
}

func TestRobotCmdPoseExceedsMagnitudeRejected(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"pose","x":1000,"y":1000,"z":1000}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "pose magnitude")
}

func TestRobotCmdVelocityExceedsMagnitudeRejected(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"velocity","x":500,"y":500,"z":0}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "velocity magnitude")
}

func TestRobotCmdGripperOutOfRangeRejected(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"gripper","grip":1.5}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "grip must be within")
}

func TestRobotCmdGripperWithinRangeDispatches(t *testing.T) {
	tbl, act := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"gripper","grip":0.5}`)
	require.False(t, isErr, out)
	assert.Equal(t, 0.5, act.gripper)
}

func TestEstopBlocksSubsequentCommands(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "estop", `{}`)
	require.False(t, isErr, out)

	out, isErr = tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"pose","x":0,"y":0,"z":0}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "estop is engaged")
}

func TestEstopWithAuditDoesNotPanicAndStillTrips(t *testing.T) {
	tbl, act := newTestTable()
	audit := logging.NewAuditLogger(t.TempDir() + "/audit.log")
	tbl.WithAudit(audit)

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	out, isErr := tbl.Execute(ctx, "estop", `{}`)
	require.False(t, isErr, out)
	require.NoError(t, audit.Sync())

	_, isErr = tbl.Execute(ctx, "robot_cmd", `{"cmd_type":"gripper","grip":0.5}`)
	assert.True(t, isErr)
	_ = act
}

func TestRobotCmdRateLimitedAfterTenPerSecond(t *testing.T) {
	act := &fakeActuator{}
	tbl := New(act, &policy.Estop{}, policy.NewSecondRing(10, func() int64 { return 0 }))

	for i := 0; i < 10; i++ {
		out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"pose","x":0,"y":0,"z":0}`)
		require.False(t, isErr, out)
	}
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"pose","x":0,"y":0,"z":0}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "rate limit exceeded")
}

func TestTelemetrySnapshotReturnsActuatorOutput(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "telemetry_snapshot", `{}`)
	require.False(t, isErr, out)
	assert.Equal(t, `{"status":"ok"}`, out)
}

func TestRobotCmdUnknownCmdTypeRejected(t *testing.T) {
	tbl, _ := newTestTable()
	out, isErr := tbl.Execute(context.Background(), "robot_cmd", `{"cmd_type":"dance"}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "unknown cmd_type")
}
