package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType 交易類型，只有存款與提款兩種
type OperationType uint8

const (
	// 存款
	OperationTypeDeposit OperationType = 1
	// 提款
	OperationTypeWithdraw OperationType = 2
)

const (
	depositName  = "DEPOSIT"
	withdrawName = "WITHDRAW"
)

func (t OperationType) String() string {
	switch t {
	case OperationTypeDeposit:
		return depositName
	case OperationTypeWithdraw:
		return withdrawName
	default:
		return fmt.Sprintf("OperationType(%d)", uint8(t))
	}
}

// Valid 是否為已定義的類型
func (t OperationType) Valid() bool {
	return t == OperationTypeDeposit || t == OperationTypeWithdraw
}

// ParseOperationType 只在邊界 (HTTP / gRPC) 使用，核心只接受 OperationType
func ParseOperationType(s string) (OperationType, error) {
	switch s {
	case depositName:
		return OperationTypeDeposit, nil
	case withdrawName:
		return OperationTypeWithdraw, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperationType, s)
	}
}

// OperationRecord 一筆已被接受的交易紀錄，建立後不再變動
type OperationRecord struct {
	// ID: 帳戶內的順序號 (1, 2, 3...)
	ID        int64
	AccountID int64
	Type      OperationType
	// Amount: 呼叫端要求的金額 (正數)
	Amount decimal.Decimal
	// BalanceAfter: 套用後的餘額
	BalanceAfter decimal.Decimal
	Timestamp    time.Time
}

// SignedAmount 存款為正、提款為負
func (r OperationRecord) SignedAmount() decimal.Decimal {
	if r.Type == OperationTypeWithdraw {
		return r.Amount.Neg()
	}
	return r.Amount
}
