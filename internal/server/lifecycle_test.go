package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	svc1 := &mockService{}
	svc2 := &mockService{}

	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestLifecycle_ReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zap.NewNop())
	boom := errors.New("port in use")
	failing := &mockService{startFn: func() error { return boom }}
	healthy := &mockService{}
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after a service failure")
	}
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycle_ClosersRunAfterServicesInReverse(t *testing.T) {
	// Run returns before the service goroutines log; zaptest would reject
	// their late writes.
	lc := NewLifecycle(zap.NewNop())

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	stop := make(chan struct{})
	svc := &FuncService{
		StartFn: func() error { <-stop; return nil },
		StopFn:  func() { record("service"); close(stop) },
	}
	lc.Add("svc", svc)
	lc.AddCloser("db", func() error { record("db"); return nil })
	lc.AddCloser("cache", func() error { record("cache"); return errors.New("already closed") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, lc.Run(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"service", "cache", "db"}, order)
}

func TestLifecycle_AbandonsSlowStop(t *testing.T) {
	lc := NewLifecycle(zap.NewNop(), WithStopTimeout(20*time.Millisecond))

	release := make(chan struct{})
	defer close(release)
	stuck := &FuncService{
		StartFn: func() error { <-release; return nil },
		StopFn:  func() { <-release },
	}
	var closed atomic.Bool
	lc.Add("stuck", stuck)
	lc.AddCloser("db", func() error { closed.Store(true); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.NoError(t, lc.Run(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, closed.Load(), "closers run even when a service overruns its stop timeout")
}
