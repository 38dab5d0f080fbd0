package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) Now() int64 { return f.t }

func TestShouldRunAgentFirstCallAlwaysDue(t *testing.T) {
	clock := &fakeClock{t: 1000}
	s := New(types.Config{CronIntervalS: 60}, clock)
	assert.True(t, s.ShouldRunAgent())
}

func TestShouldRunAgentRespectsInterval(t *testing.T) {
	clock := &fakeClock{t: 1000}
	s := New(types.Config{CronIntervalS: 60}, clock)
	assert.True(t, s.ShouldRunAgent())

	clock.t += 30
	assert.False(t, s.ShouldRunAgent())

	clock.t += 30
	assert.True(t, s.ShouldRunAgent())
}

func TestShouldRunAgentDisabledWhenIntervalZero(t *testing.T) {
	s := New(types.Config{CronIntervalS: 0}, &fakeClock{t: 1000})
	assert.False(t, s.ShouldRunAgent())
}

func TestShouldRunAgentStopsAtMaxRuns(t *testing.T) {
	clock := &fakeClock{t: 1000}
	s := New(types.Config{CronIntervalS: 10, CronMaxRuns: 2}, clock)

	assert.True(t, s.ShouldRunAgent())
	clock.t += 10
	assert.True(t, s.ShouldRunAgent())
	clock.t += 10
	assert.False(t, s.ShouldRunAgent())
}

func TestShouldHeartbeatIndependentOfAgentInterval(t *testing.T) {
	clock := &fakeClock{t: 1000}
	s := New(types.Config{HeartbeatS: 5}, clock)
	assert.True(t, s.ShouldHeartbeat())

	clock.t += 2
	assert.False(t, s.ShouldHeartbeat())

	clock.t += 3
	assert.True(t, s.ShouldHeartbeat())
}

func TestSleepUntilNextReturnsImmediatelyWhenNothingEnabled(t *testing.T) {
	s := New(types.Config{}, &fakeClock{t: 1000})
	s.SleepUntilNext(context.Background())
}

func TestSleepUntilNextReturnsEarlyWhenContextCancelled(t *testing.T) {
	s := New(types.Config{CronIntervalS: 3600}, &fakeClock{t: 1000})
	s.ShouldRunAgent()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.SleepUntilNext(ctx)
}
