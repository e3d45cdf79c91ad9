package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// deductionRuleHandler handles HTTP requests related to deduction rule
// templates within a company.
type deductionRuleHandler struct {
	ruleService portssvc.DeductionRuleSvcFacade
}

// newDeductionRuleHandler creates a new deductionRuleHandler.
func newDeductionRuleHandler(rs portssvc.DeductionRuleSvcFacade) *deductionRuleHandler {
	return &deductionRuleHandler{
		ruleService: rs,
	}
}

// registerDeductionRuleRoutes registers template routes nested under a company.
func registerDeductionRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.DeductionRuleSvcFacade) {
	h := newDeductionRuleHandler(ruleService)

	rules := rg.Group("/deduction-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/:rule_id", h.getRule)
		rules.PUT("/:rule_id", h.updateRule)
		rules.DELETE("/:rule_id", h.deactivateRule)
	}
}

// createRule godoc
// @Summary Create a deduction rule template
// @Description Creates a recurring deduction or addition template that settlement generation applies automatically.
// @Tags deduction-rules
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   rule body dto.CreateDeductionRuleRequest true "Template details"
// @Success 201 {object} dto.DeductionRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Active template limit reached"
// @Failure 500 {object} map[string]string "Failed to create template"
// @Security BearerAuth
// @Router /companies/{company_id}/deduction-rules [post]
func (h *deductionRuleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var req dto.CreateDeductionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDeductionRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	newRule, err := h.ruleService.CreateRule(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create deduction rule")
		return
	}

	logger.Info("Deduction rule created successfully", slog.String("rule_id", newRule.RuleID), slog.String("company_id", companyID))
	c.JSON(http.StatusCreated, dto.ToDeductionRuleResponse(newRule))
}

// listRules godoc
// @Summary List deduction rule templates
// @Description Retrieves a paginated list of the company's templates.
// @Tags deduction-rules
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   includeInactive query bool false "Include deactivated templates" default(false)
// @Param   limit query int false "Max templates to return" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListDeductionRulesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list templates"
// @Security BearerAuth
// @Router /companies/{company_id}/deduction-rules [get]
func (h *deductionRuleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")

	var params dto.ListDeductionRulesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListDeductionRules", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), companyID, requestingUserID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list deduction rules")
		return
	}

	c.JSON(http.StatusOK, dto.ToListDeductionRulesResponse(rules))
}

// getRule godoc
// @Summary Get a deduction rule template by ID
// @Description Retrieves a specific template, including goal progress.
// @Tags deduction-rules
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   rule_id path string true "Rule ID"
// @Success 200 {object} dto.DeductionRuleResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to get template"
// @Security BearerAuth
// @Router /companies/{company_id}/deduction-rules/{rule_id} [get]
func (h *deductionRuleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	ruleID := c.Param("rule_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), companyID, ruleID, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get deduction rule")
		return
	}

	c.JSON(http.StatusOK, dto.ToDeductionRuleResponse(rule))
}

// updateRule godoc
// @Summary Update a deduction rule template
// @Description Updates a template's rate, bounds, goal, or active flag. Changes affect future settlements only.
// @Tags deduction-rules
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   rule_id path string true "Rule ID"
// @Param   rule body dto.UpdateDeductionRuleRequest true "Fields to update"
// @Success 200 {object} dto.DeductionRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 409 {object} map[string]string "Template modified concurrently"
// @Failure 500 {object} map[string]string "Failed to update template"
// @Security BearerAuth
// @Router /companies/{company_id}/deduction-rules/{rule_id} [put]
func (h *deductionRuleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	ruleID := c.Param("rule_id")

	var req dto.UpdateDeductionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDeductionRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	updated, err := h.ruleService.UpdateRule(c.Request.Context(), companyID, ruleID, req, requestingUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update deduction rule")
		return
	}

	logger.Info("Deduction rule updated successfully", slog.String("rule_id", ruleID))
	c.JSON(http.StatusOK, dto.ToDeductionRuleResponse(updated))
}

// deactivateRule godoc
// @Summary Deactivate a deduction rule template
// @Description Marks a template inactive so future settlement generation skips it. Goal progress is retained.
// @Tags deduction-rules
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   rule_id path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to deactivate template"
// @Security BearerAuth
// @Router /companies/{company_id}/deduction-rules/{rule_id} [delete]
func (h *deductionRuleHandler) deactivateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	companyID := c.Param("company_id")
	ruleID := c.Param("rule_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ruleService.DeactivateRule(c.Request.Context(), companyID, ruleID, requestingUserID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate deduction rule")
		return
	}

	logger.Info("Deduction rule deactivated", slog.String("rule_id", ruleID))
	c.Status(http.StatusNoContent)
}
