package grpc

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	grpcpkg "github.com/JoeShih716/go-account-ledger/pkg/grpc"
)

// LoggingInterceptor 記錄每個 unary 呼叫的方法、耗時與狀態碼
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Printf("grpc method=%s code=%s duration=%v request_id=%s",
			info.FullMethod, status.Code(err), time.Since(start), grpcpkg.RequestIDFromIncoming(ctx))
		return resp, err
	}
}
