package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// AccountStore 帳戶儲存的介面
type AccountStore interface {
	// Get 取得帳戶 (live handle，不是複製)
	Get(ctx context.Context, accountID int64) (*domain.Account, error)
	// WithLock 在帳戶獨佔鎖內執行 fn，唯一允許修改帳戶的途徑
	WithLock(ctx context.Context, accountID int64, fn func(tx *domain.AccountTx) error) error
}

// OperationListener 交易成功後的通知 (在帳戶鎖外呼叫)
type OperationListener interface {
	OnOperationApplied(ctx context.Context, rec domain.OperationRecord) error
}

// Ledger 是帳務系統對外 (gRPC / HTTP) 的介面，LedgerService 實作
type Ledger interface {
	ApplyOperation(ctx context.Context, accountID int64, opType domain.OperationType, amount decimal.Decimal) (domain.OperationRecord, error)
	ListOperations(ctx context.Context, accountID int64) ([]domain.OperationRecord, error)
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

var _ Ledger = (*LedgerService)(nil)
