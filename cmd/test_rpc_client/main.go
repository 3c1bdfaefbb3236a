package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	grpcpkg "github.com/JoeShih716/go-account-ledger/pkg/grpc"
	pb "github.com/JoeShih716/go-account-ledger/proto"
)

func main() {
	target := flag.String("target", "localhost:50051", "ledger gRPC address")
	accountID := flag.Int64("account", 1, "account id to deposit into")
	totalCount := flag.Int("n", 100000, "number of deposits")
	concurrency := flag.Int("c", 1000, "concurrent in-flight requests")
	amountFlag := flag.String("amount", "0.1", "amount per deposit")
	timeout := flag.Duration("timeout", 120*time.Second, "overall timeout")
	flag.Parse()

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		log.Fatalf("invalid amount %q: %v", *amountFlag, err)
	}

	pool := grpcpkg.NewPool(grpcpkg.WithInterceptors(grpcpkg.RequestIDInterceptor()))
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	c := pb.NewLedgerServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start, err := balance(ctx, c, *accountID)
	if err != nil {
		log.Fatalf("get balance: %v", err)
	}

	req, err := pb.OperationRequest{AccountID: *accountID, Type: "DEPOSIT", Amount: amount.String()}.ToStruct()
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	wg.Add(*totalCount)
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *totalCount; i++ {
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := c.ApplyOperation(ctx, req); err != nil {
				failed.Add(1)
				if idx%10000 == 0 {
					log.Printf("Deposit %d failed: %v", idx, err)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	end, err := balance(ctx, c, *accountID)
	if err != nil {
		log.Fatalf("get balance: %v", err)
	}

	ok := int64(*totalCount) - failed.Load()
	want := start.Add(amount.Mul(decimal.NewFromInt(ok)))

	fmt.Printf("Completed %d requests in %v (%d failed)\n", *totalCount, elapsed, failed.Load())
	fmt.Printf("TPS: %.2f\n", float64(*totalCount)/elapsed.Seconds())
	fmt.Printf("Balance: start=%s end=%s expected=%s\n", start, end, want)
	if !end.Equal(want) {
		log.Fatalf("lost updates detected: end balance %s != expected %s", end, want)
	}
}

func balance(ctx context.Context, c pb.LedgerServiceClient, accountID int64) (decimal.Decimal, error) {
	in, err := pb.AccountRequest{AccountID: accountID}.ToStruct()
	if err != nil {
		return decimal.Zero, err
	}
	out, err := c.GetBalance(ctx, in)
	if err != nil {
		return decimal.Zero, err
	}
	b, err := pb.ParseBalance(out)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(b.Balance)
}
