package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/postit-wall/internal/logger"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "postit.Wall"

// Pinger is a dependency whose reachability decides the health status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports SERVING while the note store answers pings.
type Health struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	logger   *logger.Logger
	serving  bool
}

func NewHealth(store Pinger, interval time.Duration, logger *logger.Logger) *Health {
	h := &Health{
		server:   health.NewServer(),
		store:    store,
		interval: interval,
		logger:   logger,
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server returns the grpc.health.v1 implementation to register.
func (h *Health) Server() healthpb.HealthServer {
	return h.server
}

// Run probes the store every interval until ctx is done, then reports NOT_SERVING for good.
func (h *Health) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		h.Check(ctx)

		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Check probes the store once and updates the reported status.
func (h *Health) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	if err := h.store.Ping(pingCtx); err != nil {
		if h.serving {
			h.logger.Error("Health: store unreachable", "error", err)
		}
		h.serving = false
		h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}

	if !h.serving {
		h.logger.Info("Health: store reachable")
	}
	h.serving = true
	h.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (h *Health) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
