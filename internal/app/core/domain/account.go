package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Account 帳戶：餘額 + 只能追加的交易紀錄
//
// balance / operations 不對外公開，唯一的寫入途徑是 WithLock 交出的 AccountTx。
type Account struct {
	id int64

	mu         sync.RWMutex
	balance    decimal.Decimal
	operations []OperationRecord
	// 下一筆交易的順序號
	nextID int64
}

// NewAccount 建立一個新的帳戶 (開戶餘額不可為負)
//
// 參數:
//
//	id: 帳戶 ID
//	balance: 開戶餘額
//
// 回傳:
//
//	*Account: 帳戶
//	error: 餘額為負時回傳 ErrNegativeBalance
func NewAccount(id int64, balance decimal.Decimal) (*Account, error) {
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	return &Account{
		id:         id,
		balance:    balance,
		operations: make([]OperationRecord, 0),
		nextID:     1,
	}, nil
}

// ID 帳戶 ID
func (a *Account) ID() int64 {
	return a.id
}

// Balance 取得當下餘額
func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

// Operations 回傳交易紀錄的快照 (複製)，呼叫端修改不影響帳戶
func (a *Account) Operations() []OperationRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]OperationRecord, len(a.operations))
	copy(out, a.operations)
	return out
}

// WithLock 取得帳戶的獨佔鎖並執行 fn，fn 結束 (含 panic) 後一定釋放
// tx 只在 fn 執行期間有效
func (a *Account) WithLock(fn func(tx *AccountTx) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx := &AccountTx{account: a}
	defer tx.close()
	return fn(tx)
}

// AccountTx 持有帳戶鎖期間的寫入介面
type AccountTx struct {
	account *Account
	closed  bool
}

func (tx *AccountTx) close() {
	tx.closed = true
}

func (tx *AccountTx) mustBeOpen() {
	if tx.closed {
		panic("domain: AccountTx used after its lock was released")
	}
}

// Balance 鎖內讀取餘額
func (tx *AccountTx) Balance() decimal.Decimal {
	tx.mustBeOpen()
	return tx.account.balance
}

// Apply 更新餘額並追加一筆交易紀錄
//
// 參數:
//
//	opType: 交易類型
//	amount: 金額 (必須 > 0)
//	at: 交易時間
//
// 回傳:
//
//	OperationRecord: 新建立的交易紀錄
//	error: 類型錯誤 / 金額錯誤 / 餘額會變負，皆不改變狀態
func (tx *AccountTx) Apply(opType OperationType, amount decimal.Decimal, at time.Time) (OperationRecord, error) {
	tx.mustBeOpen()
	if !amount.IsPositive() {
		return OperationRecord{}, ErrInvalidAmount
	}

	a := tx.account
	var next decimal.Decimal
	switch opType {
	case OperationTypeDeposit:
		next = a.balance.Add(amount)
	case OperationTypeWithdraw:
		next = a.balance.Sub(amount)
		if next.IsNegative() {
			return OperationRecord{}, &InsufficientBalanceError{Balance: a.balance}
		}
	default:
		return OperationRecord{}, ErrUnknownOperationType
	}

	rec := OperationRecord{
		ID:           a.nextID,
		AccountID:    a.id,
		Type:         opType,
		Amount:       amount,
		BalanceAfter: next,
		Timestamp:    at,
	}
	a.balance = next
	a.operations = append(a.operations, rec)
	a.nextID++
	return rec, nil
}
