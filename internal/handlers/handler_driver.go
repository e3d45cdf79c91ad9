package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// driverHandler handles HTTP requests related to drivers within a company.
type driverHandler struct {
	driverService portssvc.DriverSvcFacade
}

// newDriverHandler creates a new driverHandler.
func newDriverHandler(ds portssvc.DriverSvcFacade) *driverHandler {
	return &driverHandler{
		driverService: ds,
	}
}

// registerDriverRoutes registers driver routes nested under a company.
func registerDriverRoutes(rg *gin.RouterGroup, driverService portssvc.DriverSvcFacade) {
	h := newDriverHandler(driverService)

	drivers := rg.Group("/drivers")
	{
		drivers.POST("", h.createDriver)
		drivers.GET("", h.listDrivers)
		drivers.GET("/:driver_id", h.getDriver)
		drivers.PUT("/:driver_id", h.updateDriver)
		drivers.DELETE("/:driver_id", h.deactivateDriver)
	}
}

// createDriver godoc
// @Summary Create a new driver
// @Description Creates a driver in the company with a pay policy (pay type, rate, driver type).
// @Tags drivers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driver body dto.CreateDriverRequest true "Driver details"
// @Success 201 {object} dto.DriverResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create driver"
// @Security BearerAuth
// @Router /companies/{company_id}/drivers [post]
func (h *driverHandler) createDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDriver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	newDriver, err := h.driverService.CreateDriver(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create driver")
		return
	}

	logger.Info("Driver created successfully", slog.String("driver_id", newDriver.DriverID), slog.String("company_id", companyID))
	c.JSON(http.StatusCreated, dto.ToDriverResponse(newDriver))
}

// listDrivers godoc
// @Summary List drivers in a company
// @Description Retrieves a paginated list of the company's drivers.
// @Tags drivers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   includeInactive query bool false "Include deactivated drivers" default(false)
// @Param   limit query int false "Max drivers to return" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListDriversResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list drivers"
// @Security BearerAuth
// @Router /companies/{company_id}/drivers [get]
func (h *driverHandler) listDrivers(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var params dto.ListDriversParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListDrivers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	drivers, err := h.driverService.ListDrivers(c.Request.Context(), companyID, requestingUserID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list drivers")
		return
	}

	c.JSON(http.StatusOK, dto.ToListDriversResponse(drivers))
}

// getDriver godoc
// @Summary Get a driver by ID
// @Description Retrieves details for a specific driver in the company.
// @Tags drivers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driver_id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Driver not found"
// @Failure 500 {object} map[string]string "Failed to get driver"
// @Security BearerAuth
// @Router /companies/{company_id}/drivers/{driver_id} [get]
func (h *driverHandler) getDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	driverID := c.Param("driver_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	driver, err := h.driverService.GetDriverByID(c.Request.Context(), companyID, driverID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get driver")
		return
	}

	c.JSON(http.StatusOK, dto.ToDriverResponse(driver))
}

// updateDriver godoc
// @Summary Update a driver
// @Description Updates a driver's details, including pay policy changes. Policy changes never touch existing settlements.
// @Tags drivers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driver_id path string true "Driver ID"
// @Param   driver body dto.UpdateDriverRequest true "Fields to update"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Driver not found"
// @Failure 409 {object} map[string]string "Driver modified concurrently"
// @Failure 500 {object} map[string]string "Failed to update driver"
// @Security BearerAuth
// @Router /companies/{company_id}/drivers/{driver_id} [put]
func (h *driverHandler) updateDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	driverID := c.Param("driver_id")

	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDriver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.driverService.UpdateDriver(c.Request.Context(), companyID, driverID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update driver")
		return
	}

	logger.Info("Driver updated successfully", slog.String("driver_id", driverID))
	c.JSON(http.StatusOK, dto.ToDriverResponse(updated))
}

// deactivateDriver godoc
// @Summary Deactivate a driver
// @Description Marks a driver inactive. History is kept but the driver is excluded from settlement generation.
// @Tags drivers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   driver_id path string true "Driver ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Driver not found"
// @Failure 500 {object} map[string]string "Failed to deactivate driver"
// @Security BearerAuth
// @Router /companies/{company_id}/drivers/{driver_id} [delete]
func (h *driverHandler) deactivateDriver(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	driverID := c.Param("driver_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.driverService.DeactivateDriver(c.Request.Context(), companyID, driverID, requestingUserID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate driver")
		return
	}

	logger.Info("Driver deactivated", slog.String("driver_id", driverID))
	c.Status(http.StatusNoContent)
}
