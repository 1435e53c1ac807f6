package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// exchangeHandler handles HTTP requests for currency counter inventory.
type exchangeHandler struct {
	exchangeService portssvc.ExchangeSvcFacade
}

func newExchangeHandler(exchangeService portssvc.ExchangeSvcFacade) *exchangeHandler {
	return &exchangeHandler{exchangeService: exchangeService}
}

func registerExchangeRoutes(rg *gin.RouterGroup, exchangeService portssvc.ExchangeSvcFacade) {
	h := newExchangeHandler(exchangeService)

	counters := rg.Group("/counters/:counterID")
	{
		counters.POST("/exchange-events", h.applyExchangeEvent)
		counters.GET("/summary", h.getSummary)
	}
}

// applyExchangeEvent godoc
// @Summary Record a currency buy or sell
// @Description Buys append a new FIFO lot; sells consume lots oldest-first and return the realized profit.
// @Tags exchange
// @Accept json
// @Produce json
// @Param counterID path string true "Currency counter party ID"
// @Param event body dto.ExchangeEventRequest true "Exchange event"
// @Success 201 {object} dto.ExchangeEventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /counters/{counterID}/exchange-events [post]
func (h *exchangeHandler) applyExchangeEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	counterID := c.Param("counterID")

	var req dto.ExchangeEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for applyExchangeEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	event, err := h.exchangeService.ApplyExchangeEvent(c.Request.Context(), counterID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record exchange event")
		return
	}

	c.JSON(http.StatusCreated, dto.ToExchangeEventResponse(event))
}

// getSummary godoc
// @Summary Get a counter's inventory summary
// @Tags exchange
// @Produce json
// @Param counterID path string true "Currency counter party ID"
// @Success 200 {object} domain.CurrencyInventorySummary
// @Router /counters/{counterID}/summary [get]
func (h *exchangeHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.exchangeService.Summary(c.Request.Context(), c.Param("counterID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve inventory summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}
