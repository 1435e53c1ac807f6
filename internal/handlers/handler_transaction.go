package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// transactionHandler handles HTTP requests for ledger transactions.
type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newTransactionHandler(ledgerService portssvc.LedgerSvcFacade) *transactionHandler {
	return &transactionHandler{ledgerService: ledgerService}
}

func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newTransactionHandler(ledgerService)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.POST("/:transactionID/complete", h.completeTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
	}
}

// createTransaction godoc
// @Summary Create a ledger transaction
// @Description Creates a transaction and applies its full effect atomically; with draft=true it is stored pending instead.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.ledgerService.CreateTransaction(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, toTransactionResultResponse(result))
}

// completeTransaction godoc
// @Summary Complete a pending transaction
// @Description Finalizes a draft; completing an already completed transaction is a no-op returning its snapshot.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param body body dto.CompleteTransactionRequest false "Optional amount override"
// @Success 200 {object} dto.TransactionResultResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /transactions/{transactionID}/complete [post]
func (h *transactionHandler) completeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.CompleteTransactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind JSON for completeTransaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.ledgerService.CompleteTransaction(c.Request.Context(), transactionID, req.OverrideAmount, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to complete transaction")
		return
	}

	c.JSON(http.StatusOK, toTransactionResultResponse(result))
}

// deleteTransaction godoc
// @Summary Reverse a transaction
// @Description Undoes every applied effect of the transaction and deactivates the record.
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 204 "Reversed"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), transactionID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to reverse transaction")
		return
	}

	c.Status(http.StatusNoContent)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	record, err := h.ledgerService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(record))
}

// listTransactions godoc
// @Summary List transactions
// @Description Returns one page of transactions plus credit/debit sums over the filtered window.
// @Tags transactions
// @Produce json
// @Param from query string false "Start date (inclusive, YYYY-MM-DD)"
// @Param to query string false "End date (exclusive, YYYY-MM-DD)"
// @Param kind query string false "CREDIT, DEBIT or TRANSFER"
// @Param partyKind query string false "Party kind"
// @Param partyID query string false "Party ID"
// @Param accountID query string false "Account ID"
// @Param serviceCategory query string false "Service category"
// @Param status query string false "PENDING or COMPLETED"
// @Param includeInactive query bool false "Include reversed transactions"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for listTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	records, nextToken, totals, err := h.ledgerService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(records),
		Totals:       totals,
		NextToken:    nextToken,
	})
}

func toTransactionResultResponse(result *portssvc.TransactionResult) dto.TransactionResultResponse {
	resp := dto.TransactionResultResponse{
		Transaction: dto.ToTransactionResponse(&result.Record),
	}
	for i := range result.Accounts {
		resp.Accounts = append(resp.Accounts, dto.ToAccountResponse(&result.Accounts[i]))
	}
	for i := range result.Parties {
		resp.Parties = append(resp.Parties, dto.ToPartyResponse(&result.Parties[i]))
	}
	return resp
}
