package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
)

// ---- mock implementation ----

type mockLedger struct {
	applyFn   func(int64, domain.OperationType, decimal.Decimal) (domain.OperationRecord, error)
	listFn    func(int64) ([]domain.OperationRecord, error)
	balanceFn func(int64) (decimal.Decimal, error)
}

func (m *mockLedger) ApplyOperation(_ context.Context, id int64, t domain.OperationType, a decimal.Decimal) (domain.OperationRecord, error) {
	if m.applyFn != nil {
		return m.applyFn(id, t, a)
	}
	return domain.OperationRecord{}, fmt.Errorf("not configured")
}

func (m *mockLedger) ListOperations(_ context.Context, id int64) ([]domain.OperationRecord, error) {
	if m.listFn != nil {
		return m.listFn(id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockLedger) GetBalance(_ context.Context, id int64) (decimal.Decimal, error) {
	if m.balanceFn != nil {
		return m.balanceFn(id)
	}
	return decimal.Zero, fmt.Errorf("not configured")
}

// ---- helpers ----

func newTestRouter(ledger usecase.Ledger) *gin.Engine {
	return NewRouter(NewHandler(ledger), gin.TestMode)
}

// newLedgerRouter 使用真正的 LedgerService，帳戶 1 餘額 100.5
func newLedgerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	acc, err := domain.NewAccount(1, decimal.RequireFromString("100.5"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := memory.NewMutexStore(acc)
	if err != nil {
		t.Fatal(err)
	}
	return newTestRouter(usecase.NewLedgerService(store))
}

func doRequest(router *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp.Message
}

// ---- tests ----

func TestCreateOperation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "deposit",
			body:       `{"accountId": 1, "amount": 50.0, "type": "DEPOSIT"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "withdraw more than balance",
			body:       `{"accountId": 1, "amount": 200, "type": "WITHDRAW"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "insufficient balance for withdrawal, current balance is 100.5",
		},
		{
			name:       "withdraw exact balance",
			body:       `{"accountId": 1, "amount": 100.5, "type": "WITHDRAW"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "insufficient balance for withdrawal, current balance is 100.5",
		},
		{
			name:       "account not found",
			body:       `{"accountId": 99, "amount": 50, "type": "WITHDRAW"}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "account not found for id: 99",
		},
		{
			name:       "negative amount",
			body:       `{"accountId": 1, "amount": -1, "type": "WITHDRAW"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "amount must be greater than 0",
		},
		{
			name:       "zero amount",
			body:       `{"accountId": 1, "amount": 0, "type": "WITHDRAW"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "amount must be greater than 0",
		},
		{
			name:       "invalid type",
			body:       `{"accountId": 1, "amount": 10, "type": "deposit"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request data",
		},
		{
			name:       "missing amount",
			body:       `{"accountId": 1, "type": "DEPOSIT"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request data",
		},
		{
			name:       "malformed json",
			body:       `{"accountId": `,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLedgerRouter(t)
			w := doRequest(router, http.MethodPost, "/api/v1/operations", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantMsg != "" {
				if got := decodeMessage(t, w); got != tt.wantMsg {
					t.Fatalf("message=%q want=%q", got, tt.wantMsg)
				}
			}
		})
	}
}

func TestCreateOperationResponseBody(t *testing.T) {
	router := newLedgerRouter(t)
	w := doRequest(router, http.MethodPost, "/api/v1/operations", `{"accountId": 1, "amount": 50, "type": "DEPOSIT"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/operations?accountId=1" {
		t.Fatalf("Location=%q", loc)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("response should carry a request id")
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["accountId"] != float64(1) || resp["amount"] != float64(50) || resp["type"] != "DEPOSIT" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if resp["id"] != float64(1) || resp["balanceAfter"] != 150.5 {
		t.Fatalf("unexpected body: %v", resp)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/accounts/1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"balance":150.5`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListOperations(t *testing.T) {
	router := newLedgerRouter(t)
	for _, body := range []string{
		`{"accountId": 1, "amount": 50, "type": "WITHDRAW"}`,
		`{"accountId": 1, "amount": 100, "type": "DEPOSIT"}`,
	} {
		if w := doRequest(router, http.MethodPost, "/api/v1/operations", body); w.Code != http.StatusCreated {
			t.Fatalf("setup status=%d body=%s", w.Code, w.Body.String())
		}
	}

	w := doRequest(router, http.MethodGet, "/api/v1/operations?accountId=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var ops []OperationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ops); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 {
		t.Fatalf("len=%d want=2", len(ops))
	}
	if ops[0].ID != 1 || ops[0].Type != "WITHDRAW" || ops[0].Amount.String() != "50" {
		t.Fatalf("ops[0]=%+v", ops[0])
	}
	if ops[1].ID != 2 || ops[1].Type != "DEPOSIT" || ops[1].Amount.String() != "100" {
		t.Fatalf("ops[1]=%+v", ops[1])
	}
}

func TestListOperationsErrors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantMsg    string
	}{
		{name: "account not found", url: "/api/v1/operations?accountId=99", wantStatus: http.StatusNotFound, wantMsg: "account not found for id: 99"},
		{name: "missing accountId", url: "/api/v1/operations", wantStatus: http.StatusBadRequest, wantMsg: "Invalid request data"},
		{name: "non numeric accountId", url: "/api/v1/operations?accountId=abc", wantStatus: http.StatusBadRequest, wantMsg: "accountId must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newLedgerRouter(t), http.MethodGet, tt.url, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := decodeMessage(t, w); got != tt.wantMsg {
				t.Fatalf("message=%q want=%q", got, tt.wantMsg)
			}
		})
	}
}

func TestEmptyHistoryIsEmptyArray(t *testing.T) {
	w := doRequest(newLedgerRouter(t), http.MethodGet, "/api/v1/operations?accountId=1", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUnexpectedLedgerErrorIs500(t *testing.T) {
	ledger := &mockLedger{
		applyFn: func(int64, domain.OperationType, decimal.Decimal) (domain.OperationRecord, error) {
			return domain.OperationRecord{}, errors.New("disk on fire")
		},
		balanceFn: func(int64) (decimal.Decimal, error) {
			return decimal.Zero, context.Canceled
		},
	}
	router := newTestRouter(ledger)

	w := doRequest(router, http.MethodPost, "/api/v1/operations", `{"accountId": 1, "amount": 1, "type": "DEPOSIT"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeMessage(t, w); got != "Failed to process request" {
		t.Fatalf("internal error details leaked: %q", got)
	}

	if w := doRequest(router, http.MethodGet, "/api/v1/accounts/1", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHandlerPassesParsedValues(t *testing.T) {
	var gotID int64
	var gotType domain.OperationType
	var gotAmount decimal.Decimal
	ledger := &mockLedger{
		applyFn: func(id int64, typ domain.OperationType, amount decimal.Decimal) (domain.OperationRecord, error) {
			gotID, gotType, gotAmount = id, typ, amount
			return domain.OperationRecord{ID: 1, AccountID: id, Type: typ, Amount: amount, BalanceAfter: amount}, nil
		},
	}

	// amount 也接受字串
	w := doRequest(newTestRouter(ledger), http.MethodPost, "/api/v1/operations", `{"accountId": 7, "amount": "0.1", "type": "WITHDRAW"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if gotID != 7 || gotType != domain.OperationTypeWithdraw || !gotAmount.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("got id=%d type=%v amount=%s", gotID, gotType, gotAmount)
	}
}

func TestGetAccountErrors(t *testing.T) {
	router := newLedgerRouter(t)
	if w := doRequest(router, http.MethodGet, "/api/v1/accounts/99", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/accounts/x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(&mockLedger{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := newTestRouter(&mockLedger{})
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("X-Request-ID=%q want=abc-123", got)
	}
}
