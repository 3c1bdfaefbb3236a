package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
)

// MutexStore 是一個以 Mutex 保護的記憶體帳戶儲存
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	mu: 只保護 Map 本身 (新增帳戶)，帳戶內容由各帳戶自己的鎖保護
//
// 不同帳戶的交易可以平行進行，同一帳戶的交易會被序列化。
type MutexStore struct {
	accounts map[int64]*domain.Account
	mu       sync.RWMutex
}

// NewMutexStore 建立一個新的 MutexStore 實例
//
// 參數:
//
//	accounts: 初始帳戶
//
// 回傳:
//
//	*MutexStore: MutexStore 實例
//	error: 帳戶 ID 重複時回傳 ErrAccountAlreadyExists
func NewMutexStore(accounts ...*domain.Account) (*MutexStore, error) {
	s := &MutexStore{
		accounts: make(map[int64]*domain.Account, len(accounts)),
	}
	for _, acc := range accounts {
		if err := s.Provision(acc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Provision 新增帳戶，唯一會寫入 Map 的方法
func (s *MutexStore) Provision(acc *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.ID()]; ok {
		return domain.ErrAccountAlreadyExists
	}
	s.accounts[acc.ID()] = acc
	return nil
}

// Get 取得帳戶
func (s *MutexStore) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	s.mu.RLock()
	acc, ok := s.accounts[accountID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.AccountNotFound(accountID)
	}
	return acc, nil
}

// WithLock 取得帳戶獨佔鎖並執行 fn
//
// 參數:
//
//	ctx: 上下文，取得鎖之前若已取消則直接回傳
//	accountID: 帳戶 ID
//	fn: 鎖內執行的函式
//
// 回傳:
//
//	error: ErrAccountNotFound / ctx.Err() / fn 的錯誤
func (s *MutexStore) WithLock(ctx context.Context, accountID int64, fn func(tx *domain.AccountTx) error) error {
	acc, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return acc.WithLock(fn)
}

// Len 帳戶數量
func (s *MutexStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

var _ usecase.AccountStore = (*MutexStore)(nil)
