package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/middleware"
)

// partyHandler handles HTTP requests for the party directory and families.
type partyHandler struct {
	partyService  portssvc.PartySvcFacade
	familyService portssvc.FamilySvcFacade
}

func newPartyHandler(partyService portssvc.PartySvcFacade, familyService portssvc.FamilySvcFacade) *partyHandler {
	return &partyHandler{partyService: partyService, familyService: familyService}
}

func registerPartyRoutes(rg *gin.RouterGroup, partyService portssvc.PartySvcFacade, familyService portssvc.FamilySvcFacade) {
	h := newPartyHandler(partyService, familyService)

	parties := rg.Group("/parties")
	{
		parties.POST("", h.createParty)
		parties.GET("/:kind", h.listParties)
		parties.GET("/:kind/:idOrCode", h.getParty)
	}

	families := rg.Group("/families")
	{
		families.PUT("/:pilgrimID/primary-holder", h.setPrimaryHolder)
		families.POST("/:pilgrimID/recompute", h.recomputeFamily)
		families.GET("/:pilgrimID", h.getFamilySummary)
	}
}

// createParty godoc
// @Summary Create a party
// @Description Registers a customer, pilgrim, agent, vendor, loan or currency counter.
// @Tags parties
// @Accept json
// @Produce json
// @Param party body dto.CreatePartyRequest true "Party"
// @Success 201 {object} dto.PartyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /parties [post]
func (h *partyHandler) createParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createParty", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create party")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPartyResponse(party))
}

// getParty godoc
// @Summary Get a party by ID or external code
// @Tags parties
// @Produce json
// @Param kind path string true "Party kind"
// @Param idOrCode path string true "Party ID or external code"
// @Success 200 {object} dto.PartyResponse
// @Failure 404 {object} ErrorResponse
// @Router /parties/{kind}/{idOrCode} [get]
func (h *partyHandler) getParty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	party, err := h.partyService.GetParty(c.Request.Context(), domain.PartyKind(c.Param("kind")), c.Param("idOrCode"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve party")
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyResponse(party))
}

// listParties godoc
// @Summary List parties of a kind
// @Tags parties
// @Produce json
// @Param kind path string true "Party kind"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.PartyResponse
// @Failure 400 {object} ErrorResponse
// @Router /parties/{kind} [get]
func (h *partyHandler) listParties(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	parties, err := h.partyService.ListParties(c.Request.Context(), domain.PartyKind(c.Param("kind")), limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list parties")
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyResponses(parties))
}

// setPrimaryHolder godoc
// @Summary Link a pilgrim to a family primary holder
// @Description Links (or with an empty holder unlinks) a pilgrim dependent and recomputes both households.
// @Tags families
// @Accept json
// @Produce json
// @Param pilgrimID path string true "Pilgrim party ID"
// @Param body body dto.SetPrimaryHolderRequest true "Primary holder"
// @Success 200 {object} dto.PartyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /families/{pilgrimID}/primary-holder [put]
func (h *partyHandler) setPrimaryHolder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pilgrimID := c.Param("pilgrimID")

	var req dto.SetPrimaryHolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for setPrimaryHolder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	pilgrim, err := h.familyService.SetPrimaryHolder(c.Request.Context(), pilgrimID, req.PrimaryHolderID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to set primary holder")
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyResponse(pilgrim))
}

// recomputeFamily godoc
// @Summary Recompute a household's aggregates
// @Tags families
// @Produce json
// @Param pilgrimID path string true "Primary holder party ID"
// @Success 200 {object} dto.FamilySummaryResponse
// @Failure 404 {object} ErrorResponse
// @Router /families/{pilgrimID}/recompute [post]
func (h *partyHandler) recomputeFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	holder, err := h.familyService.RecomputeFamily(c.Request.Context(), c.Param("pilgrimID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to recompute family")
		return
	}

	c.JSON(http.StatusOK, toFamilySummary(holder))
}

// getFamilySummary godoc
// @Summary Get a household's aggregates
// @Tags families
// @Produce json
// @Param pilgrimID path string true "Primary holder party ID"
// @Success 200 {object} dto.FamilySummaryResponse
// @Failure 404 {object} ErrorResponse
// @Router /families/{pilgrimID} [get]
func (h *partyHandler) getFamilySummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	holder, err := h.partyService.GetParty(c.Request.Context(), domain.PartyPilgrim, c.Param("pilgrimID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve family")
		return
	}

	c.JSON(http.StatusOK, toFamilySummary(holder))
}

func toFamilySummary(holder *domain.Party) dto.FamilySummaryResponse {
	return dto.FamilySummaryResponse{
		PrimaryHolderID: holder.PartyID,
		FamilyTotal:     holder.FamilyTotal,
		FamilyPaid:      holder.FamilyPaid,
		FamilyDue:       holder.FamilyDue,
	}
}
