package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
	"github.com/haulbooks/settlements_backend/internal/middleware"
)

// --- Mock AdvanceService ---
type MockAdvanceService struct {
	mock.Mock
}

func (m *MockAdvanceService) GetAdvanceByID(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, advanceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverAdvance), args.Error(1)
}

func (m *MockAdvanceService) ListAdvances(ctx context.Context, companyID string, requestingUserID string, params dto.ListAdvancesParams) (*dto.ListAdvancesResponse, error) {
	args := m.Called(ctx, companyID, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAdvancesResponse), args.Error(1)
}

func (m *MockAdvanceService) RequestAdvance(ctx context.Context, companyID string, req dto.CreateAdvanceRequest, creatorUserID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverAdvance), args.Error(1)
}

func (m *MockAdvanceService) ApproveAdvance(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, advanceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverAdvance), args.Error(1)
}

func (m *MockAdvanceService) RejectAdvance(ctx context.Context, companyID, advanceID string, req dto.DecideAdvanceRequest, requestingUserID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, advanceID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverAdvance), args.Error(1)
}

func (m *MockAdvanceService) MarkAdvancePaid(ctx context.Context, companyID, advanceID string, requestingUserID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, advanceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverAdvance), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AdvanceSvcFacade = (*MockAdvanceService)(nil)

// --- Test Suite ---
type AdvanceHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAdvanceService *MockAdvanceService
	jwtSecret          string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *AdvanceHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "haulbooks-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AdvanceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockAdvanceService = new(MockAdvanceService)

	// Mimic the company-scoped grouping used in production route setup
	companyGroup := suite.router.Group("/api/v1/companies/:company_id")
	registerAdvanceRoutes(companyGroup, suite.mockAdvanceService)
}

func (suite *AdvanceHandlerTestSuite) authedRequest(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AdvanceHandlerTestSuite) TestRequestAdvance_Success() {
	companyID := uuid.NewString()
	driverID := uuid.NewString()
	userID := uuid.NewString()

	expected := &domain.DriverAdvance{
		AdvanceID:   uuid.NewString(),
		CompanyID:   companyID,
		DriverID:    driverID,
		Amount:      decimal.RequireFromString("500"),
		RequestDate: time.Now(),
		Status:      domain.AdvancePending,
		Notes:       "fuel money",
	}

	suite.mockAdvanceService.On("RequestAdvance",
		mock.Anything,
		companyID,
		mock.MatchedBy(func(req dto.CreateAdvanceRequest) bool {
			return req.DriverID == driverID && req.Amount.Equal(decimal.RequireFromString("500"))
		}),
		userID,
	).Return(expected, nil).Once()

	body := map[string]any{"driverID": driverID, "amount": "500", "notes": "fuel money"}
	w := suite.authedRequest(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/advances", companyID), body, userID)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AdvanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.AdvanceID, resp.AdvanceID)
	suite.Equal(domain.AdvancePending, resp.Status)
	suite.mockAdvanceService.AssertExpectations(suite.T())
}

func (suite *AdvanceHandlerTestSuite) TestRequestAdvance_MissingDriverID() {
	companyID := uuid.NewString()
	userID := uuid.NewString()

	body := map[string]any{"amount": "500"}
	w := suite.authedRequest(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/advances", companyID), body, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAdvanceService.AssertNotCalled(suite.T(), "RequestAdvance")
}

func (suite *AdvanceHandlerTestSuite) TestListAdvances_PassesFilters() {
	companyID := uuid.NewString()
	driverID := uuid.NewString()
	userID := uuid.NewString()

	expected := dto.ToListAdvancesResponse([]domain.DriverAdvance{
		{
			AdvanceID: uuid.NewString(),
			CompanyID: companyID,
			DriverID:  driverID,
			Amount:    decimal.RequireFromString("200"),
			Status:    domain.AdvanceApproved,
		},
	}, nil)

	suite.mockAdvanceService.On("ListAdvances",
		mock.Anything,
		companyID,
		userID,
		mock.MatchedBy(func(p dto.ListAdvancesParams) bool {
			return p.DriverID != nil && *p.DriverID == driverID && p.Attachable && p.Limit == 20
		}),
	).Return(&expected, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/advances?driverID=%s&attachable=true", companyID, driverID)
	w := suite.authedRequest(http.MethodGet, url, nil, userID)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListAdvancesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Advances, 1)
	suite.Equal(expected.Advances[0].AdvanceID, resp.Advances[0].AdvanceID)
	suite.mockAdvanceService.AssertExpectations(suite.T())
}

func (suite *AdvanceHandlerTestSuite) TestGetAdvance_NotFound() {
	companyID := uuid.NewString()
	advanceID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockAdvanceService.On("GetAdvanceByID", mock.Anything, companyID, advanceID, userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.authedRequest(http.MethodGet, fmt.Sprintf("/api/v1/companies/%s/advances/%s", companyID, advanceID), nil, userID)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAdvanceService.AssertExpectations(suite.T())
}

func (suite *AdvanceHandlerTestSuite) TestApproveAdvance_InvalidTransition() {
	companyID := uuid.NewString()
	advanceID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockAdvanceService.On("ApproveAdvance", mock.Anything, companyID, advanceID, userID).
		Return(nil, fmt.Errorf("%w: advance already decided", apperrors.ErrInvalidTransition)).Once()

	w := suite.authedRequest(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/advances/%s/approve", companyID, advanceID), nil, userID)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockAdvanceService.AssertExpectations(suite.T())
}

func (suite *AdvanceHandlerTestSuite) TestRejectAdvance_WithNote() {
	companyID := uuid.NewString()
	advanceID := uuid.NewString()
	userID := uuid.NewString()

	expected := &domain.DriverAdvance{
		AdvanceID: advanceID,
		CompanyID: companyID,
		Status:    domain.AdvanceRejected,
		Notes:     "not justified",
	}

	suite.mockAdvanceService.On("RejectAdvance",
		mock.Anything,
		companyID,
		advanceID,
		dto.DecideAdvanceRequest{Note: "not justified"},
		userID,
	).Return(expected, nil).Once()

	body := map[string]any{"note": "not justified"}
	w := suite.authedRequest(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/advances/%s/reject", companyID, advanceID), body, userID)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AdvanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.AdvanceRejected, resp.Status)
	suite.mockAdvanceService.AssertExpectations(suite.T())
}

func (suite *AdvanceHandlerTestSuite) TestMarkAdvancePaid_Unauthenticated() {
	companyID := uuid.NewString()
	advanceID := uuid.NewString()

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/companies/%s/advances/%s/pay", companyID, advanceID), nil)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAdvanceService.AssertNotCalled(suite.T(), "MarkAdvancePaid")
}

// --- Run Test Suite ---
func TestAdvanceHandler(t *testing.T) {
	suite.Run(t, new(AdvanceHandlerTestSuite))
}
