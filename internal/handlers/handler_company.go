package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies and membership.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{
		companyService: cs,
	}
}

// registerCompanyRoutes registers routes for companies and their members. All
// driver, load, deduction rule, advance, and settlement routes are nested
// under a specific company.
func registerCompanyRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newCompanyHandler(services.Company)

	companiesTopLevel := rg.Group("/companies")
	{
		companiesTopLevel.POST("", h.createCompany)
		companiesTopLevel.GET("", h.listUserCompanies)
	}

	companySpecific := rg.Group("/companies/:company_id")
	{
		companySpecific.GET("", h.getCompany)
		companySpecific.PUT("", h.updateCompany)
		companySpecific.POST("/activate", h.activateCompany)
		companySpecific.POST("/deactivate", h.deactivateCompany)

		companyUsers := companySpecific.Group("/users")
		{
			companyUsers.POST("", h.addUserToCompany)
			companyUsers.GET("", h.listCompanyUsers)
			companyUsers.PUT("/:user_id/role", h.updateUserCompanyRole)
			companyUsers.DELETE("/:user_id", h.removeUserFromCompany)
		}

		registerDriverRoutes(companySpecific, services.Driver)
		registerLoadRoutes(companySpecific, services.Load)
		registerDeductionRuleRoutes(companySpecific, services.DeductionRule)
		registerAdvanceRoutes(companySpecific, services.Advance)
		registerSettlementRoutes(companySpecific, services.Settlement)
	}
}

// createCompany godoc
// @Summary Create a new company
// @Description Creates a new trucking company and assigns the creator as admin.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create company"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	newCompany, err := h.companyService.CreateCompany(c.Request.Context(), req.Name, req.DOTNumber, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create company")
		return
	}

	logger.Info("Company created successfully", slog.String("company_id", newCompany.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(newCompany))
}

// listUserCompanies godoc
// @Summary List companies for current user
// @Description Retrieves the companies the authenticated user belongs to.
// @Tags companies
// @Produce  json
// @Param   includeDisabled query bool false "Include deactivated companies" default(false)
// @Success 200 {object} dto.ListCompaniesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list companies"
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listUserCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	includeDisabled, _ := strconv.ParseBool(c.DefaultQuery("includeDisabled", "false"))

	companies, err := h.companyService.ListUserCompanies(c.Request.Context(), userID, includeDisabled)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list companies")
		return
	}

	c.JSON(http.StatusOK, dto.ToListCompaniesResponse(companies))
}

// getCompany godoc
// @Summary Get a company by ID
// @Description Retrieves details for a specific company.
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to get company"
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), companyID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get company")
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// updateCompany godoc
// @Summary Update a company
// @Description Updates a company's details (admin only).
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   company body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to update company"
// @Security BearerAuth
// @Router /companies/{company_id} [put]
func (h *companyHandler) updateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.companyService.UpdateCompany(c.Request.Context(), companyID, req.Name, req.DOTNumber, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update company")
		return
	}

	logger.Info("Company updated successfully", slog.String("company_id", companyID))
	c.JSON(http.StatusOK, dto.ToCompanyResponse(updated))
}

// activateCompany godoc
// @Summary Activate a company
// @Description Marks a deactivated company as active again (admin only).
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to activate company"
// @Security BearerAuth
// @Router /companies/{company_id}/activate [post]
func (h *companyHandler) activateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.ActivateCompany(c.Request.Context(), companyID, requestingUserID); err != nil {
		respondWithError(c, logger, err, "Failed to activate company")
		return
	}

	logger.Info("Company activated", slog.String("company_id", companyID))
	c.Status(http.StatusNoContent)
}

// deactivateCompany godoc
// @Summary Deactivate a company
// @Description Marks a company as inactive (admin only).
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to deactivate company"
// @Security BearerAuth
// @Router /companies/{company_id}/deactivate [post]
func (h *companyHandler) deactivateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.DeactivateCompany(c.Request.Context(), companyID, requestingUserID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate company")
		return
	}

	logger.Info("Company deactivated", slog.String("company_id", companyID))
	c.Status(http.StatusNoContent)
}

// addUserToCompany godoc
// @Summary Add a user to a company
// @Description Adds a specified user to a company with a given role (admin only).
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_details body dto.AddUserToCompanyRequest true "User ID and Role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (caller is not admin)"
// @Failure 404 {object} map[string]string "Company or User not found"
// @Failure 500 {object} map[string]string "Failed to add user"
// @Security BearerAuth
// @Router /companies/{company_id}/users [post]
func (h *companyHandler) addUserToCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.AddUserToCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Adding user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("adding_user_id", addingUserID), slog.String("company_id", companyID), slog.String("target_user_id", req.UserID))
	if err := h.companyService.AddUserToCompany(c.Request.Context(), addingUserID, req.UserID, companyID, req.Role); err != nil {
		respondWithError(c, logger, err, "Failed to add user to company")
		return
	}

	logger.Info("User added to company successfully", slog.String("role", string(req.Role)))
	c.Status(http.StatusNoContent)
}

// listCompanyUsers godoc
// @Summary List members of a company
// @Description Retrieves the users of a company and their roles (members only).
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {array} dto.UserCompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list members"
// @Security BearerAuth
// @Router /companies/{company_id}/users [get]
func (h *companyHandler) listCompanyUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.companyService.ListCompanyUsers(c.Request.Context(), companyID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list company members")
		return
	}

	c.JSON(http.StatusOK, dto.ToListUserCompanyResponse(members))
}

// updateUserCompanyRole godoc
// @Summary Change a member's role
// @Description Updates a user's role within a company (admin only).
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Target User ID"
// @Param   role body dto.UpdateUserCompanyRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to update role"
// @Security BearerAuth
// @Router /companies/{company_id}/users/{user_id}/role [put]
func (h *companyHandler) updateUserCompanyRole(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateUserCompanyRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateUserCompanyRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.UpdateUserCompanyRole(c.Request.Context(), requestingUserID, targetUserID, companyID, req.Role); err != nil {
		respondWithError(c, logger, err, "Failed to update member role")
		return
	}

	logger.Info("Member role updated", slog.String("company_id", companyID), slog.String("target_user_id", targetUserID), slog.String("role", string(req.Role)))
	c.Status(http.StatusNoContent)
}

// removeUserFromCompany godoc
// @Summary Remove a user from a company
// @Description Removes a member from a company (admin only).
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Target User ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to remove member"
// @Security BearerAuth
// @Router /companies/{company_id}/users/{user_id} [delete]
func (h *companyHandler) removeUserFromCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	targetUserID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.RemoveUserFromCompany(c.Request.Context(), requestingUserID, targetUserID, companyID); err != nil {
		respondWithError(c, logger, err, "Failed to remove member")
		return
	}

	logger.Info("Member removed", slog.String("company_id", companyID), slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}
