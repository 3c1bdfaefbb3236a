package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-account-ledger/proto"
)

type GrpcServer struct {
	pb.UnimplementedLedgerServiceServer
	ledger usecase.Ledger
}

func NewGrpcServer(ledger usecase.Ledger) *GrpcServer {
	return &GrpcServer{
		ledger: ledger,
	}
}

func (s *GrpcServer) ApplyOperation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	// 1. 解析請求
	req, err := pb.ParseOperationRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// 2. 類型與金額在邊界就轉換好，核心不處理字串
	opType, err := domain.ParseOperationType(req.Type)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount %q", req.Amount)
	}

	// 3. 執行交易
	rec, err := s.ledger.ApplyOperation(ctx, req.AccountID, opType, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toOperation(rec).ToStruct()
}

func (s *GrpcServer) ListOperations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ParseAccountRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	records, err := s.ledger.ListOperations(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}

	list := pb.OperationList{Operations: make([]pb.Operation, 0, len(records))}
	for _, rec := range records {
		list.Operations = append(list.Operations, toOperation(rec))
	}
	return list.ToStruct()
}

func (s *GrpcServer) GetBalance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := pb.ParseAccountRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	balance, err := s.ledger.GetBalance(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.Balance{AccountID: req.AccountID, Balance: balance.String()}.ToStruct()
}

func toOperation(rec domain.OperationRecord) pb.Operation {
	return pb.Operation{
		ID:           rec.ID,
		AccountID:    rec.AccountID,
		Type:         rec.Type.String(),
		Amount:       rec.Amount.String(),
		BalanceAfter: rec.BalanceAfter.String(),
		Timestamp:    rec.Timestamp,
	}
}

// toStatus 把領域錯誤轉成 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrUnknownOperationType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ pb.LedgerServiceServer = (*GrpcServer)(nil)
