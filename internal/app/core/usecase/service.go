package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
)

// LedgerService 是核心業務邏輯層：驗證 → 套用 → 記錄
type LedgerService struct {
	store     AccountStore
	listeners []OperationListener
	turns     *notifyTurns
	now       func() time.Time
}

// Option 設定 LedgerService
type Option func(*LedgerService)

// WithListeners 交易成功後依序通知 listeners
func WithListeners(listeners ...OperationListener) Option {
	return func(s *LedgerService) {
		s.listeners = append(s.listeners, listeners...)
	}
}

// WithClock 替換時間來源 (測試用)
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		s.now = now
	}
}

func NewLedgerService(store AccountStore, opts ...Option) *LedgerService {
	s := &LedgerService{
		store: store,
		turns: newNotifyTurns(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyOperation 對帳戶執行一筆存款或提款
//
// 參數:
//
//	ctx: 上下文 (只在取得鎖之前檢查)
//	accountID: 帳戶 ID
//	opType: 交易類型
//	amount: 金額
//
// 回傳:
//
//	domain.OperationRecord: 新建立的交易紀錄
//	error: ErrAccountNotFound / ErrInvalidAmount / *InsufficientBalanceError / ErrUnknownOperationType
func (s *LedgerService) ApplyOperation(ctx context.Context, accountID int64, opType domain.OperationType, amount decimal.Decimal) (domain.OperationRecord, error) {
	if !opType.Valid() {
		return domain.OperationRecord{}, fmt.Errorf("%w: %d", domain.ErrUnknownOperationType, uint8(opType))
	}

	var rec domain.OperationRecord
	err := s.store.WithLock(ctx, accountID, func(tx *domain.AccountTx) error {
		if err := validate(tx, opType, amount); err != nil {
			return err
		}
		var err error
		rec, err = tx.Apply(opType, amount, s.now())
		return err
	})
	if err != nil {
		return domain.OperationRecord{}, err
	}

	s.notify(ctx, rec)
	return rec, nil
}

// validate 在鎖內檢查金額與餘額，失敗時不改變任何狀態
func validate(tx *domain.AccountTx, opType domain.OperationType, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	// 提款金額必須「小於」餘額，剛好提光也會被拒絕
	if opType == domain.OperationTypeWithdraw {
		balance := tx.Balance()
		if !balance.GreaterThan(amount) {
			return &domain.InsufficientBalanceError{Balance: balance}
		}
	}
	return nil
}

// notify 在鎖外通知 listeners，同一帳戶依紀錄 ID 順序送出
func (s *LedgerService) notify(ctx context.Context, rec domain.OperationRecord) {
	if len(s.listeners) == 0 {
		return
	}
	s.turns.wait(rec.AccountID, rec.ID)
	defer s.turns.done(rec.AccountID, rec.ID)

	for _, l := range s.listeners {
		if err := l.OnOperationApplied(ctx, rec); err != nil {
			log.Printf("operation listener failed: account=%d op=%d err=%v", rec.AccountID, rec.ID, err)
		}
	}
}

// notifyTurns 記錄每個帳戶最後一筆已通知的紀錄 ID
// 紀錄 ID 從 1 開始且沒有間隔，ID n 必須等 n-1 通知完才輪到
type notifyTurns struct {
	mu   sync.Mutex
	cond *sync.Cond
	last map[int64]int64
}

func newNotifyTurns() *notifyTurns {
	t := &notifyTurns{last: make(map[int64]int64)}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *notifyTurns) wait(accountID, id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.last[accountID]+1 < id {
		t.cond.Wait()
	}
}

func (t *notifyTurns) done(accountID, id int64) {
	t.mu.Lock()
	if id > t.last[accountID] {
		t.last[accountID] = id
	}
	t.mu.Unlock()
	t.cond.Broadcast()
}

// ListOperations 依時間順序回傳帳戶的交易紀錄
func (s *LedgerService) ListOperations(ctx context.Context, accountID int64) ([]domain.OperationRecord, error) {
	account, err := s.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Operations(), nil
}

// GetBalance 取得帳戶餘額
func (s *LedgerService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	account, err := s.store.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance(), nil
}
