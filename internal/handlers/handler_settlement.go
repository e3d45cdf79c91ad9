package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests related to driver settlements within
// a company.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// newSettlementHandler creates a new settlementHandler.
func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{
		settlementService: ss,
	}
}

// registerSettlementRoutes registers settlement routes nested under a company.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.generateSettlement)
		settlements.GET("", h.listSettlements)
		settlements.GET("/:settlement_id", h.getSettlement)
		settlements.GET("/:settlement_id/events", h.listStatusEvents)
		settlements.POST("/:settlement_id/recalculate", h.recalculateSettlement)

		settlements.POST("/:settlement_id/line-items", h.addLineItem)
		settlements.DELETE("/:settlement_id/line-items/:line_item_id", h.removeLineItem)

		settlements.POST("/:settlement_id/advances/:advance_id", h.attachAdvance)
		settlements.DELETE("/:settlement_id/advances/:advance_id", h.detachAdvance)

		settlements.POST("/:settlement_id/submit", h.submitForApproval)
		settlements.POST("/:settlement_id/approve", h.approveSettlement)
		settlements.POST("/:settlement_id/reject", h.rejectSettlement)
		settlements.POST("/:settlement_id/pay", h.markSettlementPaid)
		settlements.POST("/:settlement_id/reopen", h.reopenSettlement)
	}
}

// generateSettlement godoc
// @Summary Generate a draft settlement
// @Description Builds a draft settlement for a driver and period: gross pay from the settleable loads, template-generated line items, and the derived totals.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement body dto.GenerateSettlementRequest true "Driver and period"
// @Success 201 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Driver not found"
// @Failure 409 {object} map[string]string "A live settlement already exists for the period"
// @Failure 500 {object} map[string]string "Failed to generate settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements [post]
func (h *settlementHandler) generateSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.GenerateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("driver_id", req.DriverID))
	settlement, err := h.settlementService.GenerateSettlement(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate settlement")
		return
	}

	logger.Info("Settlement generated successfully",
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("settlement_number", settlement.SettlementNumber))
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}

// listSettlements godoc
// @Summary List settlements in a company
// @Description Retrieves a token-paginated list of settlements, optionally filtered by driver and status.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driverID query string false "Filter by driver"
// @Param   status query string false "Filter by status" Enums(DRAFT, PENDING_APPROVAL, APPROVED, REJECTED, PAID)
// @Param   limit query int false "Max settlements to return" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListSettlementsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list settlements"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements [get]
func (h *settlementHandler) listSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var params dto.ListSettlementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListSettlements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.settlementService.ListSettlements(c.Request.Context(), companyID, requestingUserID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list settlements")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getSettlement godoc
// @Summary Get a settlement by ID
// @Description Retrieves a settlement with its line items.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 500 {object} map[string]string "Failed to get settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id} [get]
func (h *settlementHandler) getSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.GetSettlementByID(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get settlement")
		return
	}

	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// listStatusEvents godoc
// @Summary List a settlement's status history
// @Description Retrieves the audit trail of status transitions for a settlement.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {array} dto.StatusEventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 500 {object} map[string]string "Failed to list status events"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/events [get]
func (h *settlementHandler) listStatusEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	events, err := h.settlementService.ListStatusEvents(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list settlement status events")
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusEventResponses(events))
}

// recalculateSettlement godoc
// @Summary Recalculate a settlement
// @Description Re-runs pay calculation and template evaluation for an editable settlement, replacing its generated line items. Manual line items and attached advances are preserved.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not editable"
// @Failure 500 {object} map[string]string "Failed to recalculate settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/recalculate [post]
func (h *settlementHandler) recalculateSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.RecalculateSettlement(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to recalculate settlement")
		return
	}

	logger.Info("Settlement recalculated", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// addLineItem godoc
// @Summary Add a manual line item
// @Description Appends a manual deduction or addition to an editable settlement and recomputes the totals.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   line_item body dto.AddLineItemRequest true "Line item details"
// @Success 200 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not editable"
// @Failure 500 {object} map[string]string "Failed to add line item"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/line-items [post]
func (h *settlementHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	var req dto.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddLineItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.AddLineItem(c.Request.Context(), companyID, settlementID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add line item")
		return
	}

	logger.Info("Line item added", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// removeLineItem godoc
// @Summary Remove a line item
// @Description Deletes a line item from an editable settlement and recomputes the totals. Advance-backed line items must be detached through the advance endpoints instead.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   line_item_id path string true "Line Item ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement or line item not found"
// @Failure 409 {object} map[string]string "Settlement is not editable"
// @Failure 500 {object} map[string]string "Failed to remove line item"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/line-items/{line_item_id} [delete]
func (h *settlementHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")
	lineItemID := c.Param("line_item_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.RemoveLineItem(c.Request.Context(), companyID, settlementID, lineItemID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to remove line item")
		return
	}

	logger.Info("Line item removed", slog.String("settlement_id", settlementID), slog.String("line_item_id", lineItemID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// attachAdvance godoc
// @Summary Attach an advance to a settlement
// @Description Links an attachable advance to an editable settlement as a deduction line item and recomputes the totals.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   advance_id path string true "Advance ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement or advance not found"
// @Failure 409 {object} map[string]string "Advance is not attachable or settlement is not editable"
// @Failure 500 {object} map[string]string "Failed to attach advance"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/advances/{advance_id} [post]
func (h *settlementHandler) attachAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")
	advanceID := c.Param("advance_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.AttachAdvance(c.Request.Context(), companyID, settlementID, advanceID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to attach advance")
		return
	}

	logger.Info("Advance attached", slog.String("settlement_id", settlementID), slog.String("advance_id", advanceID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// detachAdvance godoc
// @Summary Detach an advance from a settlement
// @Description Unlinks an advance from an editable settlement, removes its line item, and recomputes the totals. The advance becomes attachable again.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   advance_id path string true "Advance ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement or advance not found"
// @Failure 409 {object} map[string]string "Settlement is not editable"
// @Failure 500 {object} map[string]string "Failed to detach advance"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/advances/{advance_id} [delete]
func (h *settlementHandler) detachAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")
	advanceID := c.Param("advance_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.DetachAdvance(c.Request.Context(), companyID, settlementID, advanceID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to detach advance")
		return
	}

	logger.Info("Advance detached", slog.String("settlement_id", settlementID), slog.String("advance_id", advanceID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// submitForApproval godoc
// @Summary Submit a settlement for approval
// @Description Moves a draft settlement to pending approval.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not a draft"
// @Failure 500 {object} map[string]string "Failed to submit settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/submit [post]
func (h *settlementHandler) submitForApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.SubmitForApproval(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to submit settlement for approval")
		return
	}

	logger.Info("Settlement submitted for approval", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// approveSettlement godoc
// @Summary Approve a settlement
// @Description Approves a pending settlement, recording the payment method.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   approval body dto.ApproveSettlementRequest true "Payment method"
// @Success 200 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not pending approval"
// @Failure 500 {object} map[string]string "Failed to approve settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/approve [post]
func (h *settlementHandler) approveSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	var req dto.ApproveSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApproveSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.ApproveSettlement(c.Request.Context(), companyID, settlementID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to approve settlement")
		return
	}

	logger.Info("Settlement approved", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// rejectSettlement godoc
// @Summary Reject a settlement
// @Description Rejects a pending settlement with a mandatory note.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Param   rejection body dto.RejectSettlementRequest true "Rejection note"
// @Success 200 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid input (missing note)"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not pending approval"
// @Failure 500 {object} map[string]string "Failed to reject settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/reject [post]
func (h *settlementHandler) rejectSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	var req dto.RejectSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.RejectSettlement(c.Request.Context(), companyID, settlementID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reject settlement")
		return
	}

	logger.Info("Settlement rejected", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// markSettlementPaid godoc
// @Summary Mark a settlement as paid
// @Description Moves an approved settlement to paid, its terminal state.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not approved"
// @Failure 500 {object} map[string]string "Failed to mark settlement paid"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/pay [post]
func (h *settlementHandler) markSettlementPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.MarkSettlementPaid(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to mark settlement paid")
		return
	}

	logger.Info("Settlement marked paid", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// reopenSettlement godoc
// @Summary Reopen a rejected settlement
// @Description Moves a rejected settlement back to draft for rework.
// @Tags settlements
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   settlement_id path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement is not rejected"
// @Failure 500 {object} map[string]string "Failed to reopen settlement"
// @Security BearerAuth
// @Router /companies/{company_id}/settlements/{settlement_id}/reopen [post]
func (h *settlementHandler) reopenSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	settlementID := c.Param("settlement_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settlement, err := h.settlementService.ReopenSettlement(c.Request.Context(), companyID, settlementID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reopen settlement")
		return
	}

	logger.Info("Settlement reopened", slog.String("settlement_id", settlementID))
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}
