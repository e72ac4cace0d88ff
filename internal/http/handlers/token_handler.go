package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/http/handlers/common"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/service"
)

type TokenHandler struct {
	tokens *service.TokenService
}

// NewTokenHandler создаёт новый хэндлер.
func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// GetBalance обрабатывает GET /tokens/balance.
func (h *TokenHandler) GetBalance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	balance, err := h.tokens.GetBalance(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// Deposit обрабатывает POST /tokens/deposit.
func (h *TokenHandler) Deposit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.DepositTokensRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if req.Amount <= 0 {
		common.RespondBadRequest(c, "сумма пополнения должна быть положительной")
		return
	}

	if err := h.tokens.Deposit(c.Request.Context(), userID, req.Amount); err != nil {
		_ = c.Error(err)
		return
	}

	balance, err := h.tokens.GetBalance(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ListTransactions обрабатывает GET /tokens/transactions.
func (h *TokenHandler) ListTransactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, perPage := common.GetPagination(c)
	transactions, err := h.tokens.ListTransactions(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if transactions == nil {
		transactions = []models.TokenTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
