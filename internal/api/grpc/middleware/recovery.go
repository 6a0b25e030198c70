package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/postit-wall/internal/logger"
)

// NewRecovery returns recovery options that log the panic and answer with codes.Internal.
func NewRecovery(logger *logger.Logger) []recovery.Option {
	return []recovery.Option{
		recovery.WithRecoveryHandlerContext(func(_ context.Context, p any) error {
			logger.Error("gRPC handler panicked", "panic", p)
			return status.Error(codes.Internal, "internal server error")
		}),
	}
}
