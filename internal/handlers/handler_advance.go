package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// advanceHandler handles HTTP requests related to driver advances within a
// company.
type advanceHandler struct {
	advanceService portssvc.AdvanceSvcFacade
}

// newAdvanceHandler creates a new advanceHandler.
func newAdvanceHandler(as portssvc.AdvanceSvcFacade) *advanceHandler {
	return &advanceHandler{
		advanceService: as,
	}
}

// registerAdvanceRoutes registers advance routes nested under a company.
func registerAdvanceRoutes(rg *gin.RouterGroup, advanceService portssvc.AdvanceSvcFacade) {
	h := newAdvanceHandler(advanceService)

	advances := rg.Group("/advances")
	{
		advances.POST("", h.requestAdvance)
		advances.GET("", h.listAdvances)
		advances.GET("/:advance_id", h.getAdvance)
		advances.POST("/:advance_id/approve", h.approveAdvance)
		advances.POST("/:advance_id/reject", h.rejectAdvance)
		advances.POST("/:advance_id/pay", h.markAdvancePaid)
	}
}

// requestAdvance godoc
// @Summary Request a driver advance
// @Description Records a new pending cash advance for a driver.
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   advance body dto.CreateAdvanceRequest true "Advance details"
// @Success 201 {object} dto.AdvanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Driver not found"
// @Failure 500 {object} map[string]string "Failed to request advance"
// @Security BearerAuth
// @Router /companies/{company_id}/advances [post]
func (h *advanceHandler) requestAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.CreateAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestAdvance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	advance, err := h.advanceService.RequestAdvance(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to request advance")
		return
	}

	logger.Info("Advance requested successfully", slog.String("advance_id", advance.AdvanceID), slog.String("driver_id", advance.DriverID))
	c.JSON(http.StatusCreated, dto.ToAdvanceResponse(advance))
}

// listAdvances godoc
// @Summary List advances in a company
// @Description Retrieves a paginated list of advances, optionally filtered by driver and status.
// @Tags advances
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driverID query string false "Filter by driver"
// @Param   status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED, PAID)
// @Param   attachable query bool false "Only unattached advances eligible for settlement attachment (requires driverID)"
// @Param   limit query int false "Max advances to return" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListAdvancesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list advances"
// @Security BearerAuth
// @Router /companies/{company_id}/advances [get]
func (h *advanceHandler) listAdvances(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var params dto.ListAdvancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAdvances", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.advanceService.ListAdvances(c.Request.Context(), companyID, requestingUserID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list advances")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getAdvance godoc
// @Summary Get an advance by ID
// @Description Retrieves details for a specific advance in the company.
// @Tags advances
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   advance_id path string true "Advance ID"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Advance not found"
// @Failure 500 {object} map[string]string "Failed to get advance"
// @Security BearerAuth
// @Router /companies/{company_id}/advances/{advance_id} [get]
func (h *advanceHandler) getAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	advanceID := c.Param("advance_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	advance, err := h.advanceService.GetAdvanceByID(c.Request.Context(), companyID, advanceID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get advance")
		return
	}

	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// approveAdvance godoc
// @Summary Approve an advance
// @Description Moves a pending advance to approved.
// @Tags advances
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   advance_id path string true "Advance ID"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Advance not found"
// @Failure 409 {object} map[string]string "Advance is not pending"
// @Failure 500 {object} map[string]string "Failed to approve advance"
// @Security BearerAuth
// @Router /companies/{company_id}/advances/{advance_id}/approve [post]
func (h *advanceHandler) approveAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	advanceID := c.Param("advance_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	advance, err := h.advanceService.ApproveAdvance(c.Request.Context(), companyID, advanceID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to approve advance")
		return
	}

	logger.Info("Advance approved", slog.String("advance_id", advanceID))
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// rejectAdvance godoc
// @Summary Reject an advance
// @Description Moves a pending advance to rejected. If the advance was attached to a settlement it is detached and the settlement totals are recomputed.
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   advance_id path string true "Advance ID"
// @Param   decision body dto.DecideAdvanceRequest false "Optional rejection note"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Advance not found"
// @Failure 409 {object} map[string]string "Advance cannot be rejected in its current status"
// @Failure 500 {object} map[string]string "Failed to reject advance"
// @Security BearerAuth
// @Router /companies/{company_id}/advances/{advance_id}/reject [post]
func (h *advanceHandler) rejectAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	advanceID := c.Param("advance_id")

	// The rejection note is optional, so an empty body is fine.
	var req dto.DecideAdvanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RejectAdvance", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	advance, err := h.advanceService.RejectAdvance(c.Request.Context(), companyID, advanceID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reject advance")
		return
	}

	logger.Info("Advance rejected", slog.String("advance_id", advanceID))
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// markAdvancePaid godoc
// @Summary Mark an advance as paid
// @Description Moves an approved advance to paid, meaning the cash was handed out.
// @Tags advances
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   advance_id path string true "Advance ID"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Advance not found"
// @Failure 409 {object} map[string]string "Advance is not approved"
// @Failure 500 {object} map[string]string "Failed to mark advance paid"
// @Security BearerAuth
// @Router /companies/{company_id}/advances/{advance_id}/pay [post]
func (h *advanceHandler) markAdvancePaid(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	advanceID := c.Param("advance_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	advance, err := h.advanceService.MarkAdvancePaid(c.Request.Context(), companyID, advanceID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to mark advance paid")
		return
	}

	logger.Info("Advance marked paid", slog.String("advance_id", advanceID))
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}
