package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
)

const (
	// DefaultStream 預設的 Redis Stream 名稱
	DefaultStream = "ledger.operations"

	// OperationApplied 事件類型
	OperationApplied = "operation.applied"
)

// Event 事件外層結構
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// OperationAppliedEvent 一筆交易成功後發出
type OperationAppliedEvent struct {
	AccountID    int64     `json:"accountId"`
	OperationID  int64     `json:"operationId"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balanceAfter"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// streamAdder 只需要 XAdd，*redis.Client 即符合
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Publisher 把成功的交易發佈到 Redis Stream
type Publisher struct {
	client streamAdder
	stream string
	// 0 表示不裁切 stream
	maxLen int64
	now    func() time.Time
}

func NewPublisher(client streamAdder, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		now:    time.Now,
	}
}

// OnOperationApplied implements usecase.OperationListener.
func (p *Publisher) OnOperationApplied(ctx context.Context, rec domain.OperationRecord) error {
	payload, err := json.Marshal(Event{
		Type:      OperationApplied,
		Timestamp: p.now().UTC(),
		Data: OperationAppliedEvent{
			AccountID:    rec.AccountID,
			OperationID:  rec.ID,
			Type:         rec.Type.String(),
			Amount:       rec.Amount.String(),
			BalanceAfter: rec.BalanceAfter.String(),
			OccurredAt:   rec.Timestamp.UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": payload},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

var _ usecase.OperationListener = (*Publisher)(nil)
