package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表 (只在啟動時讀取，帳本本身不寫回)
type sqlAccount struct {
	ID      int64           `gorm:"primaryKey"`
	Balance decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// AccountSource 從 MySQL 載入開戶資料
type AccountSource struct {
	client *mysql.Client
}

func NewAccountSource(client *mysql.Client) *AccountSource {
	return &AccountSource{
		client: client,
	}
}

// Migrate 建立 accounts 表 (若不存在)
func (s *AccountSource) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{})
}

// LoadAccounts 載入所有帳戶
//
// 參數:
//
//	ctx: 上下文
//
// 回傳:
//
//	[]*domain.Account: 依 ID 排序的帳戶
//	error: 查詢錯誤或資料不合法 (負餘額)
func (s *AccountSource) LoadAccounts(ctx context.Context) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return toDomain(rows)
}

func toDomain(rows []sqlAccount) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		acc, err := domain.NewAccount(row.ID, row.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", row.ID, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
