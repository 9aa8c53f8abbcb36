package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/errors"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/probe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (nopLogger) Debugf(format string, args ...interface{})               {}
func (nopLogger) Infof(format string, args ...interface{})                {}
func (nopLogger) Warnf(format string, args ...interface{})                {}
func (nopLogger) Errorf(format string, args ...interface{})               {}

var _ logging.Logger = nopLogger{}

// scriptedManager records the order of disruptive actions.
type scriptedManager struct {
	steps      []string
	restartErr error
}

func (m *scriptedManager) IsActive(ctx context.Context, unit string) (bool, string) {
	m.steps = append(m.steps, "is-active")
	return true, "active"
}

func (m *scriptedManager) Restart(ctx context.Context, unit string) error {
	m.steps = append(m.steps, "restart")
	return m.restartErr
}

func (m *scriptedManager) FreePort(ctx context.Context, port int) error {
	m.steps = append(m.steps, "free-port")
	return nil
}

// scriptedProbes answers health checks from a script and records calls.
type scriptedProbes struct {
	steps         []string
	healthAnswers []bool
}

func (p *scriptedProbes) CheckProcessAlive(ctx context.Context, identity config.ServiceIdentity) bool {
	p.steps = append(p.steps, "process")
	return true
}

func (p *scriptedProbes) CheckHealthEndpoint(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool {
	p.steps = append(p.steps, "health")
	if len(p.healthAnswers) == 0 {
		return false
	}
	answer := p.healthAnswers[0]
	p.healthAnswers = p.healthAnswers[1:]
	return answer
}

func (p *scriptedProbes) CheckFunctional(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) probe.Result {
	p.steps = append(p.steps, "functional")
	return probe.Alive()
}

func (p *scriptedProbes) CheckPortOpen(ctx context.Context, identity config.ServiceIdentity, timeout time.Duration) bool {
	p.steps = append(p.steps, "port")
	return true
}

func testIdentity() config.ServiceIdentity {
	return config.ServiceIdentity{
		Name:        "memory-service",
		Unit:        "mcp-memory",
		HealthURL:   "http://127.0.0.1:8443/api/health",
		MemoriesURL: "http://127.0.0.1:8443/api/memories",
		Port:        8443,
	}
}

func instantSleep(slept *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) {
		*slept = append(*slept, d)
	}
}

func TestRestart_SuccessSequence(t *testing.T) {
	manager := &scriptedManager{}
	probes := &scriptedProbes{healthAnswers: []bool{true}}
	var slept []time.Duration

	actuator := NewActuatorWithSleep(manager, probes, config.DefaultRetryPolicy(), instantSleep(&slept), nopLogger{})

	ok := actuator.Restart(context.Background(), testIdentity())

	assert.True(t, ok)
	// Fixed ordering: free the port before restarting.
	assert.Equal(t, []string{"free-port", "restart"}, manager.steps)
	// Exactly one verification check, after the settle pause.
	assert.Equal(t, []string{"health"}, probes.steps)
	require.Len(t, slept, 2)
	assert.Equal(t, 2*time.Second, slept[0])
	assert.Equal(t, 15*time.Second, slept[1])
}

func TestRestart_VerificationFails(t *testing.T) {
	manager := &scriptedManager{}
	probes := &scriptedProbes{healthAnswers: []bool{false}}
	var slept []time.Duration

	actuator := NewActuatorWithSleep(manager, probes, config.DefaultRetryPolicy(), instantSleep(&slept), nopLogger{})

	ok := actuator.Restart(context.Background(), testIdentity())

	assert.False(t, ok)
	assert.Equal(t, []string{"free-port", "restart"}, manager.steps)
	assert.Equal(t, []string{"health"}, probes.steps)
}

func TestRestart_CommandFailure_SkipsVerification(t *testing.T) {
	manager := &scriptedManager{restartErr: errors.NewRecoveryError("restart failed", nil)}
	probes := &scriptedProbes{}
	var slept []time.Duration

	actuator := NewActuatorWithSleep(manager, probes, config.DefaultRetryPolicy(), instantSleep(&slept), nopLogger{})

	ok := actuator.Restart(context.Background(), testIdentity())

	assert.False(t, ok)
	assert.Empty(t, probes.steps)
}

func TestDefaultSleep_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	DefaultSleep(ctx, 10*time.Second)

	assert.Less(t, time.Since(start), time.Second)
}
