package proto

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestParseOperationRequestAcceptsNumberAmount(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"account_id": 1, "type": "DEPOSIT", "amount": 50.25})
	if err != nil {
		t.Fatal(err)
	}
	req, err := ParseOperationRequest(s)
	if err != nil {
		t.Fatal(err)
	}
	if req != (OperationRequest{AccountID: 1, Type: "DEPOSIT", Amount: "50.25"}) {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseOperationRequestInvalid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{name: "missing account", fields: map[string]any{"type": "DEPOSIT", "amount": "1"}},
		{name: "fractional account", fields: map[string]any{"account_id": 1.5, "type": "DEPOSIT", "amount": "1"}},
		{name: "account as string", fields: map[string]any{"account_id": "1", "type": "DEPOSIT", "amount": "1"}},
		{name: "type as number", fields: map[string]any{"account_id": 1, "type": 1, "amount": "1"}},
		{name: "amount as bool", fields: map[string]any{"account_id": 1, "type": "DEPOSIT", "amount": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.fields)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := ParseOperationRequest(s); !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("want ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestOperationListStruct(t *testing.T) {
	ts := time.Date(2025, 1, 1, 8, 30, 0, 123, time.UTC)
	in := OperationList{Operations: []Operation{
		{ID: 1, AccountID: 1, Type: "WITHDRAW", Amount: "50", BalanceAfter: "50.5", Timestamp: ts},
		{ID: 2, AccountID: 1, Type: "DEPOSIT", Amount: "100", BalanceAfter: "150.5", Timestamp: ts},
	}}
	s, err := in.ToStruct()
	if err != nil {
		t.Fatal(err)
	}
	out, err := ParseOperationList(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Operations) != 2 {
		t.Fatalf("len=%d want=2", len(out.Operations))
	}
	for i := range in.Operations {
		got, want := out.Operations[i], in.Operations[i]
		if got.ID != want.ID || got.Type != want.Type || got.Amount != want.Amount || !got.Timestamp.Equal(want.Timestamp) {
			t.Fatalf("operations[%d]=%+v want=%+v", i, got, want)
		}
	}
}
