package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/postit-wall/internal/api/grpc/handler"
	"github.com/dtroode/postit-wall/internal/api/grpc/middleware"
	"github.com/dtroode/postit-wall/internal/logger"
)

// Router assembles the ops gRPC server.
type Router struct {
	health *handler.Health
	logger *logger.Logger
}

// New creates new gRPC Router instance.
func New(health *handler.Health, logger *logger.Logger) *Router {
	return &Router{
		health: health,
		logger: logger,
	}
}

// Register builds a gRPC server exposing grpc.health.v1 and server reflection.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpts := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpts...),
		),
		grpc.ChainStreamInterceptor(
			logging.HandleStream,
			recovery.StreamServerInterceptor(recoveryOpts...),
		),
	)

	healthpb.RegisterHealthServer(s, r.health.Server())
	reflection.Register(s)

	return s
}
