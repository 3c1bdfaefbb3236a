package journal

import (
	"context"
	"time"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-account-ledger/pkg/journal"
)

// Entry journal 檔中的一行
type Entry struct {
	AccountID    int64     `json:"account_id"`
	OperationID  int64     `json:"operation_id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recorder 把成功的交易寫成稽核用的 journal (只寫不回放)
type Recorder struct {
	journal *journal.Journal
}

func NewRecorder(j *journal.Journal) *Recorder {
	return &Recorder{journal: j}
}

// OnOperationApplied implements usecase.OperationListener.
func (r *Recorder) OnOperationApplied(_ context.Context, rec domain.OperationRecord) error {
	return r.journal.Write(NewEntry(rec))
}

func NewEntry(rec domain.OperationRecord) Entry {
	return Entry{
		AccountID:    rec.AccountID,
		OperationID:  rec.ID,
		Type:         rec.Type.String(),
		Amount:       rec.Amount.String(),
		BalanceAfter: rec.BalanceAfter.String(),
		Timestamp:    rec.Timestamp.UTC(),
	}
}

var _ usecase.OperationListener = (*Recorder)(nil)
