package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// loadHandler handles HTTP requests related to loads within a company.
type loadHandler struct {
	loadService portssvc.LoadSvcFacade
}

// newLoadHandler creates a new loadHandler.
func newLoadHandler(ls portssvc.LoadSvcFacade) *loadHandler {
	return &loadHandler{
		loadService: ls,
	}
}

// registerLoadRoutes registers load routes nested under a company.
func registerLoadRoutes(rg *gin.RouterGroup, loadService portssvc.LoadSvcFacade) {
	h := newLoadHandler(loadService)

	loads := rg.Group("/loads")
	{
		loads.POST("", h.createLoad)
		loads.GET("", h.listLoads)
		loads.GET("/:load_id", h.getLoad)
		loads.PUT("/:load_id", h.updateLoad)
		loads.POST("/:load_id/mark-ready", h.markReadyForSettlement)
	}
}

// createLoad godoc
// @Summary Create a new load
// @Description Records a hauled load with its miles, revenue, and status.
// @Tags loads
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   load body dto.CreateLoadRequest true "Load details"
// @Success 201 {object} dto.LoadResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Load number already exists"
// @Failure 500 {object} map[string]string "Failed to create load"
// @Security BearerAuth
// @Router /companies/{company_id}/loads [post]
func (h *loadHandler) createLoad(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.CreateLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLoad", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	newLoad, err := h.loadService.CreateLoad(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create load")
		return
	}

	logger.Info("Load created successfully", slog.String("load_id", newLoad.LoadID), slog.String("load_number", newLoad.LoadNumber))
	c.JSON(http.StatusCreated, dto.ToLoadResponse(newLoad))
}

// listLoads godoc
// @Summary List loads in a company
// @Description Retrieves a token-paginated list of the company's loads, optionally filtered by driver.
// @Tags loads
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driverID query string false "Filter by driver"
// @Param   limit query int false "Max loads to return" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLoadsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list loads"
// @Security BearerAuth
// @Router /companies/{company_id}/loads [get]
func (h *loadHandler) listLoads(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var params dto.ListLoadsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListLoads", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.loadService.ListLoads(c.Request.Context(), companyID, requestingUserID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list loads")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getLoad godoc
// @Summary Get a load by ID
// @Description Retrieves details for a specific load in the company.
// @Tags loads
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   load_id path string true "Load ID"
// @Success 200 {object} dto.LoadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Load not found"
// @Failure 500 {object} map[string]string "Failed to get load"
// @Security BearerAuth
// @Router /companies/{company_id}/loads/{load_id} [get]
func (h *loadHandler) getLoad(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	loadID := c.Param("load_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	load, err := h.loadService.GetLoadByID(c.Request.Context(), companyID, loadID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get load")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoadResponse(load))
}

// updateLoad godoc
// @Summary Update a load
// @Description Updates a load's miles, revenue, status, or delivery timestamp.
// @Tags loads
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   load_id path string true "Load ID"
// @Param   load body dto.UpdateLoadRequest true "Fields to update"
// @Success 200 {object} dto.LoadResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Load not found"
// @Failure 409 {object} map[string]string "Load modified concurrently"
// @Failure 500 {object} map[string]string "Failed to update load"
// @Security BearerAuth
// @Router /companies/{company_id}/loads/{load_id} [put]
func (h *loadHandler) updateLoad(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	loadID := c.Param("load_id")

	var req dto.UpdateLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLoad", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.loadService.UpdateLoad(c.Request.Context(), companyID, loadID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update load")
		return
	}

	logger.Info("Load updated successfully", slog.String("load_id", loadID))
	c.JSON(http.StatusOK, dto.ToLoadResponse(updated))
}

// markReadyForSettlement godoc
// @Summary Mark a load ready for settlement
// @Description Flags a delivered load as settleable so settlement generation can pick it up.
// @Tags loads
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   load_id path string true "Load ID"
// @Success 200 {object} dto.LoadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Load not found"
// @Failure 409 {object} map[string]string "Load is not in a settleable status"
// @Failure 500 {object} map[string]string "Failed to mark load ready"
// @Security BearerAuth
// @Router /companies/{company_id}/loads/{load_id}/mark-ready [post]
func (h *loadHandler) markReadyForSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	loadID := c.Param("load_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.loadService.MarkReadyForSettlement(c.Request.Context(), companyID, loadID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to mark load ready for settlement")
		return
	}

	logger.Info("Load marked ready for settlement", slog.String("load_id", loadID))
	c.JSON(http.StatusOK, dto.ToLoadResponse(updated))
}
