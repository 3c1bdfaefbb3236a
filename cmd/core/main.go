package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/in/grpc"
	rest_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/in/rest"
	journal_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/journal"
	memory_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/mysql"
	redis_adapter "github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/redis"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/config"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-ledger/pkg/journal"
	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
	"github.com/JoeShih716/go-account-ledger/pkg/redis"
	pb "github.com/JoeShih716/go-account-ledger/proto"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 載入帳戶 (帳戶集合啟動後固定)
	accounts, err := provisionAccounts(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to provision accounts: %v", err)
	}
	store, err := memory_adapter.NewMutexStore(accounts...)
	if err != nil {
		log.Fatalf("Failed to init account store: %v", err)
	}
	log.Printf("Loaded %d accounts", store.Len())

	// 3. 交易通知 (journal / redis)
	var listeners []usecase.OperationListener

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, journal.WithSyncEveryWrite(cfg.Journal.SyncEveryWrite))
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		// 程式結束時 sync 並關閉
		defer j.Close()
		if !cfg.Journal.SyncEveryWrite {
			go flushJournal(ctx, j, cfg.Journal.FlushInterval)
		}
		listeners = append(listeners, journal_adapter.NewRecorder(j))
		log.Printf("Operation journal enabled at %s", cfg.Journal.Path)
	}

	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Config)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		listeners = append(listeners, redis_adapter.NewPublisher(rdb, cfg.Redis.Stream, cfg.Redis.MaxLen))
		log.Printf("Publishing operation events to stream %s", cfg.Redis.Stream)
	}

	// 4. 初始化 UseCase
	ledger := usecase.NewLedgerService(store, usecase.WithListeners(listeners...))

	// 5. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor()))
	pb.RegisterLedgerServiceServer(grpcServer, grpc_adapter.NewGrpcServer(ledger))
	if cfg.GRPC.Reflection {
		reflection.Register(grpcServer)
	}

	go func() {
		log.Printf("Starting gRPC server on %s", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("failed to serve grpc: %v", err)
		}
	}()

	// 6. 啟動 HTTP Server
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           rest_adapter.NewRouter(rest_adapter.NewHandler(ledger), cfg.HTTP.Mode),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve http: %v", err)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	log.Println("Server exited")
}

// provisionAccounts 依設定從 seed 或 MySQL 建立帳戶
func provisionAccounts(ctx context.Context, cfg config.Config) ([]*domain.Account, error) {
	switch cfg.Provisioning.Source {
	case config.SourceMySQL:
		dbClient, err := mysql.NewClient(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		// 只在啟動時讀一次，之後不再使用資料庫
		defer dbClient.Close()
		log.Println("Connected to MySQL successfully")

		source := mysql_adapter.NewAccountSource(dbClient)
		if err := source.Migrate(ctx); err != nil {
			return nil, err
		}
		return source.LoadAccounts(ctx)
	default:
		return cfg.SeedAccounts()
	}
}

// flushJournal 定期把 journal 緩衝區刷入硬碟，直到 ctx 結束
func flushJournal(ctx context.Context, j *journal.Journal, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Sync(); err != nil {
				log.Printf("journal flush failed: %v", err)
			}
		}
	}
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
