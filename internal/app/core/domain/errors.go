package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount 金額必須大於 0
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrInsufficientBalance 餘額不足
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrUnknownOperationType 不認得的交易類型 (呼叫端的契約錯誤)
	ErrUnknownOperationType = errors.New("unknown operation type")

	// ErrNegativeBalance 餘額不可為負
	ErrNegativeBalance = errors.New("balance must not be negative")
)

// InsufficientBalanceError 提款被拒時附帶當下餘額
type InsufficientBalanceError struct {
	Balance decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for withdrawal, current balance is %s", e.Balance.String())
}

// Is 讓 errors.Is(err, ErrInsufficientBalance) 成立
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// AccountNotFound 包裝 ErrAccountNotFound 並帶上帳戶 ID
func AccountNotFound(accountID int64) error {
	return fmt.Errorf("%w for id: %d", ErrAccountNotFound, accountID)
}
