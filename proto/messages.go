package proto

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrInvalidMessage 訊息欄位缺少或型別錯誤
var ErrInvalidMessage = errors.New("invalid message")

// 欄位名稱
const (
	fieldAccountID    = "account_id"
	fieldID           = "id"
	fieldType         = "type"
	fieldAmount       = "amount"
	fieldBalance      = "balance"
	fieldBalanceAfter = "balance_after"
	fieldTimestamp    = "timestamp"
	fieldOperations   = "operations"
)

// OperationRequest ApplyOperation 的請求
// Amount 以十進位字串傳遞避免浮點誤差
type OperationRequest struct {
	AccountID int64
	Type      string
	Amount    string
}

func (r OperationRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldAccountID: r.AccountID,
		fieldType:      r.Type,
		fieldAmount:    r.Amount,
	})
}

// ParseOperationRequest amount 可以是字串或數字
func ParseOperationRequest(s *structpb.Struct) (OperationRequest, error) {
	accountID, err := intField(s, fieldAccountID)
	if err != nil {
		return OperationRequest{}, err
	}
	opType, err := stringField(s, fieldType)
	if err != nil {
		return OperationRequest{}, err
	}
	amount, err := decimalField(s, fieldAmount)
	if err != nil {
		return OperationRequest{}, err
	}
	return OperationRequest{AccountID: accountID, Type: opType, Amount: amount}, nil
}

// AccountRequest ListOperations / GetBalance 的請求
type AccountRequest struct {
	AccountID int64
}

func (r AccountRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{fieldAccountID: r.AccountID})
}

func ParseAccountRequest(s *structpb.Struct) (AccountRequest, error) {
	accountID, err := intField(s, fieldAccountID)
	if err != nil {
		return AccountRequest{}, err
	}
	return AccountRequest{AccountID: accountID}, nil
}

// Operation 一筆交易紀錄
type Operation struct {
	ID           int64
	AccountID    int64
	Type         string
	Amount       string
	BalanceAfter string
	Timestamp    time.Time
}

func (o Operation) toMap() map[string]any {
	return map[string]any{
		fieldID:           o.ID,
		fieldAccountID:    o.AccountID,
		fieldType:         o.Type,
		fieldAmount:       o.Amount,
		fieldBalanceAfter: o.BalanceAfter,
		fieldTimestamp:    o.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (o Operation) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(o.toMap())
}

func ParseOperation(s *structpb.Struct) (Operation, error) {
	var (
		o   Operation
		err error
	)
	if o.ID, err = intField(s, fieldID); err != nil {
		return Operation{}, err
	}
	if o.AccountID, err = intField(s, fieldAccountID); err != nil {
		return Operation{}, err
	}
	if o.Type, err = stringField(s, fieldType); err != nil {
		return Operation{}, err
	}
	if o.Amount, err = decimalField(s, fieldAmount); err != nil {
		return Operation{}, err
	}
	if o.BalanceAfter, err = decimalField(s, fieldBalanceAfter); err != nil {
		return Operation{}, err
	}
	ts, err := stringField(s, fieldTimestamp)
	if err != nil {
		return Operation{}, err
	}
	if o.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return Operation{}, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, fieldTimestamp, err)
	}
	return o, nil
}

// OperationList ListOperations 的回應
type OperationList struct {
	Operations []Operation
}

func (l OperationList) ToStruct() (*structpb.Struct, error) {
	items := make([]any, 0, len(l.Operations))
	for _, o := range l.Operations {
		items = append(items, o.toMap())
	}
	return structpb.NewStruct(map[string]any{fieldOperations: items})
}

func ParseOperationList(s *structpb.Struct) (OperationList, error) {
	v, ok := s.GetFields()[fieldOperations]
	if !ok {
		return OperationList{}, fmt.Errorf("%w: missing %s", ErrInvalidMessage, fieldOperations)
	}
	list := v.GetListValue()
	if list == nil {
		return OperationList{}, fmt.Errorf("%w: %s is not a list", ErrInvalidMessage, fieldOperations)
	}
	out := OperationList{Operations: make([]Operation, 0, len(list.GetValues()))}
	for i, item := range list.GetValues() {
		st := item.GetStructValue()
		if st == nil {
			return OperationList{}, fmt.Errorf("%w: %s[%d] is not an object", ErrInvalidMessage, fieldOperations, i)
		}
		o, err := ParseOperation(st)
		if err != nil {
			return OperationList{}, err
		}
		out.Operations = append(out.Operations, o)
	}
	return out, nil
}

// Balance GetBalance 的回應
type Balance struct {
	AccountID int64
	Balance   string
}

func (b Balance) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldAccountID: b.AccountID,
		fieldBalance:   b.Balance,
	})
}

func ParseBalance(s *structpb.Struct) (Balance, error) {
	accountID, err := intField(s, fieldAccountID)
	if err != nil {
		return Balance{}, err
	}
	balance, err := decimalField(s, fieldBalance)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountID: accountID, Balance: balance}, nil
}

func field(s *structpb.Struct, name string) (*structpb.Value, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidMessage, name)
	}
	return v, nil
}

func intField(s *structpb.Struct, name string) (int64, error) {
	v, err := field(s, name)
	if err != nil {
		return 0, err
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidMessage, name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidMessage, name)
	}
	return int64(f), nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, err := field(s, name)
	if err != nil {
		return "", err
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidMessage, name)
	}
	return str.StringValue, nil
}

// decimalField 回傳十進位字串，數字會以最短表示轉成字串
func decimalField(s *structpb.Struct, name string) (string, error) {
	v, err := field(s, name)
	if err != nil {
		return "", err
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string or number", ErrInvalidMessage, name)
	}
}
