package handler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/postit-wall/internal/testutil"
)

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return assert.AnError
	}
	return nil
}

func status(t *testing.T, h *Health, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_Check(t *testing.T) {
	pinger := &fakePinger{}
	h := NewHealth(pinger, time.Second, testutil.MakeNoopLogger())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, ""))

	h.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h, ServiceName))

	pinger.fail.Store(true)
	h.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, ServiceName))
}

func TestHealth_Run(t *testing.T) {
	pinger := &fakePinger{}
	h := NewHealth(pinger, 10*time.Millisecond, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return pinger.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h, ""))
}
