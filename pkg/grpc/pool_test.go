package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestGetConnectionReusesConn(t *testing.T) {
	p := NewPool()
	defer p.Close()

	c1, err := p.GetConnection("localhost:50051")
	if err != nil {
		t.Fatal(err)
	}
	c2, err := p.GetConnection("localhost:50051")
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Fatal("same target should reuse the connection")
	}

	c3, err := p.GetConnection("localhost:50052")
	if err != nil {
		t.Fatal(err)
	}
	if c3 == c1 {
		t.Fatal("different targets must not share a connection")
	}
}

func TestGetConnectionAfterClose(t *testing.T) {
	p := NewPool()
	c1, err := p.GetConnection("localhost:50051")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := p.GetConnection("localhost:50051")
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if c1 == c2 {
		t.Fatal("closed connection should not be returned again")
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	intercept := RequestIDInterceptor()

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		seen = md.Get(RequestIDKey)
		return nil
	}

	if err := intercept(context.Background(), "/x/Y", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || len(seen[0]) != 36 {
		t.Fatalf("expected a generated uuid, got %v", seen)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDKey, "fixed-id")
	if err := intercept(ctx, "/x/Y", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "fixed-id" {
		t.Fatalf("existing request id should be kept, got %v", seen)
	}
}

func TestRequestIDFromIncoming(t *testing.T) {
	if got := RequestIDFromIncoming(context.Background()); got != "" {
		t.Fatalf("got %q want empty", got)
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDKey, "abc"))
	if got := RequestIDFromIncoming(ctx); got != "abc" {
		t.Fatalf("got %q want abc", got)
	}
}
