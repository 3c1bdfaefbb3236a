package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-account-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-account-ledger/internal/app/core/usecase"
)

const operationsPath = "/api/v1/operations"

// Handler 處理帳務相關的 HTTP 請求
type Handler struct {
	ledger usecase.Ledger
}

func NewHandler(ledger usecase.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

type CreateOperationRequest struct {
	AccountID *int64           `json:"accountId" validate:"required"`
	Type      string           `json:"type" validate:"required,oneof=DEPOSIT WITHDRAW"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
}

type ListOperationsQuery struct {
	AccountID *int64 `form:"accountId" validate:"required"`
}

// OperationResponse 金額以 json.Number 輸出，保留十進位精度
type OperationResponse struct {
	ID           int64       `json:"id"`
	AccountID    int64       `json:"accountId"`
	Type         string      `json:"type"`
	Amount       json.Number `json:"amount"`
	BalanceAfter json.Number `json:"balanceAfter"`
	Timestamp    time.Time   `json:"timestamp"`
}

type AccountResponse struct {
	AccountID int64       `json:"accountId"`
	Balance   json.Number `json:"balance"`
}

func (h *Handler) CreateOperation(c *gin.Context) {
	var req CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := ValidateRequest(req); details != nil {
		RespondWithValidationError(c, details)
		return
	}

	// oneof 已檢查過，這裡不會失敗
	opType, err := domain.ParseOperationType(req.Type)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.ledger.ApplyOperation(c.Request.Context(), *req.AccountID, opType, *req.Amount)
	if err != nil {
		h.respondLedgerError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s?accountId=%d", operationsPath, rec.AccountID))
	c.JSON(http.StatusCreated, toOperationResponse(rec))
}

func (h *Handler) ListOperations(c *gin.Context) {
	var q ListOperationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondWithError(c, http.StatusBadRequest, "accountId must be an integer")
		return
	}
	if details := ValidateRequest(q); details != nil {
		RespondWithValidationError(c, details)
		return
	}

	records, err := h.ledger.ListOperations(c.Request.Context(), *q.AccountID)
	if err != nil {
		h.respondLedgerError(c, err)
		return
	}

	out := make([]OperationResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toOperationResponse(rec))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "accountId must be an integer")
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.respondLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccountResponse{
		AccountID: accountID,
		Balance:   json.Number(balance.String()),
	})
}

// respondLedgerError 領域錯誤 → HTTP 狀態碼
func (h *Handler) respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrUnknownOperationType):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ledger request failed: request_id=%s err=%v", GetRequestID(c), err)
		RespondWithError(c, http.StatusInternalServerError, "Failed to process request")
	}
}

func toOperationResponse(rec domain.OperationRecord) OperationResponse {
	return OperationResponse{
		ID:           rec.ID,
		AccountID:    rec.AccountID,
		Type:         rec.Type.String(),
		Amount:       json.Number(rec.Amount.String()),
		BalanceAfter: json.Number(rec.BalanceAfter.String()),
		Timestamp:    rec.Timestamp,
	}
}
