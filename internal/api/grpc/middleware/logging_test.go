package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/postit-wall/internal/testutil"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	lg := NewLogging(testutil.MakeNoopLogger())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				time.Sleep(10 * time.Millisecond)
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.Unavailable, "store down")
			},
			wantCode: codes.Unavailable,
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}

			assert.Equal(t, tt.wantCode, statusCode(err))
		})
	}
}

func TestLogging_HandleStream(t *testing.T) {
	lg := NewLogging(testutil.MakeNoopLogger())
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := lg.HandleStream(nil, nil, info, func(srv any, stream grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client went away")
	})
	assert.Equal(t, codes.Canceled, statusCode(err))

	err = lg.HandleStream(nil, nil, info, func(srv any, stream grpc.ServerStream) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	interceptor := recovery.UnaryServerInterceptor(NewRecovery(testutil.MakeNoopLogger())...)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}
