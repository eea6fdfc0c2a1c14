package circuit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("operation failed")

func testConfig() Config {
	return Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
		MaxRequests:      2,
	}
}

// newTestBreaker returns a breaker on a manual clock
func newTestBreaker(config Config) (*Breaker, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b := New("test", config)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestNew_DefaultValues(t *testing.T) {
	b := New("test", Config{})

	assert.Equal(t, DefaultConfig().FailureThreshold, b.config.FailureThreshold)
	assert.Equal(t, DefaultConfig().SuccessThreshold, b.config.SuccessThreshold)
	assert.Equal(t, DefaultConfig().Timeout, b.config.Timeout)
	assert.Equal(t, DefaultConfig().MaxRequests, b.config.MaxRequests)
	assert.Equal(t, StateClosed, b.State())
}

func TestExecute_SuccessAndFailure_ShouldCount(t *testing.T) {
	b, _ := newTestBreaker(testConfig())

	require.NoError(t, b.Execute(succeed))
	assert.ErrorIs(t, b.Execute(fail), errBoom)

	stats := b.Stats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.TotalSuccesses)
	assert.Equal(t, int64(1), stats.TotalFailures)
	assert.Equal(t, 1, stats.ConsecutiveFailures)
	assert.Equal(t, StateClosed, b.State())
}

func TestExecute_ConsecutiveFailures_ShouldOpen(t *testing.T) {
	b, _ := newTestBreaker(testConfig())

	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })

	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, int64(1), b.Stats().TotalRejections)
}

func TestExecute_InterleavedSuccess_ShouldResetFailureRun(t *testing.T) {
	b, _ := newTestBreaker(testConfig())

	_ = b.Execute(fail)
	_ = b.Execute(fail)
	_ = b.Execute(succeed)
	_ = b.Execute(fail)

	assert.Equal(t, StateClosed, b.State())
}

func TestExecute_AfterTimeout_ShouldProbeAndClose(t *testing.T) {
	b, now := newTestBreaker(testConfig())
	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}

	*now = now.Add(time.Minute + time.Second)
	require.NoError(t, b.Execute(succeed))
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Execute(succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestExecute_HalfOpenFailure_ShouldReopen(t *testing.T) {
	b, now := newTestBreaker(testConfig())
	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}

	*now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, b.Execute(fail), errBoom)

	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(succeed), ErrOpen)
}

func TestExecute_HalfOpen_ShouldCapProbes(t *testing.T) {
	config := testConfig()
	config.SuccessThreshold = 5
	b, now := newTestBreaker(config)
	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}
	*now = now.Add(2 * time.Minute)

	require.NoError(t, b.Execute(succeed))
	require.NoError(t, b.Execute(succeed))

	assert.ErrorIs(t, b.Execute(succeed), ErrOpen)
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestOnStateChange_ShouldReportTransitions(t *testing.T) {
	var transitions []string
	config := testConfig()
	config.OnStateChange = func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}
	b, now := newTestBreaker(config)

	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}
	*now = now.Add(2 * time.Minute)
	_ = b.Execute(succeed)
	_ = b.Execute(succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestReset_ShouldCloseAndClear(t *testing.T) {
	b, _ := newTestBreaker(testConfig())
	for i := 0; i < 3; i++ {
		_ = b.Execute(fail)
	}

	b.Reset()

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Stats{}, b.Stats())
	assert.NoError(t, b.Execute(succeed))
}

func TestExecute_Concurrent_ShouldNotRace(t *testing.T) {
	b := New("test", Config{FailureThreshold: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = b.Execute(succeed)
			} else {
				_ = b.Execute(fail)
			}
		}(i)
	}
	wg.Wait()

	stats := b.Stats()
	assert.Equal(t, int64(50), stats.TotalRequests)
	assert.Equal(t, int64(25), stats.TotalSuccesses)
	assert.Equal(t, int64(25), stats.TotalFailures)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
