package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/core/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

// --- Mock CompanyAuthorizerSvc ---

type MockCompanyAuthorizer struct {
	mock.Mock
}

func (m *MockCompanyAuthorizer) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error {
	args := m.Called(ctx, userID, companyID, requiredRole)
	return args.Error(0)
}

// --- Mock DriverRepository ---

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	args := m.Called(ctx, driverID)
	var driver *domain.Driver
	if args.Get(0) != nil {
		driver = args.Get(0).(*domain.Driver)
	}
	return driver, args.Error(1)
}

func (m *MockDriverRepository) ListDriversByCompany(ctx context.Context, companyID string, includeInactive bool, limit, offset int) ([]domain.Driver, error) {
	args := m.Called(ctx, companyID, includeInactive, limit, offset)
	var drivers []domain.Driver
	if args.Get(0) != nil {
		drivers = args.Get(0).([]domain.Driver)
	}
	return drivers, args.Error(1)
}

func (m *MockDriverRepository) SaveDriver(ctx context.Context, driver domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) MarkDriverInactive(ctx context.Context, driverID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, driverID, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock LoadRepository ---

type MockLoadRepository struct {
	mock.Mock
}

func (m *MockLoadRepository) FindLoadByID(ctx context.Context, loadID string) (*domain.Load, error) {
	args := m.Called(ctx, loadID)
	var load *domain.Load
	if args.Get(0) != nil {
		load = args.Get(0).(*domain.Load)
	}
	return load, args.Error(1)
}

func (m *MockLoadRepository) FindLoadsByIDs(ctx context.Context, loadIDs []string) ([]domain.Load, error) {
	args := m.Called(ctx, loadIDs)
	var loads []domain.Load
	if args.Get(0) != nil {
		loads = args.Get(0).([]domain.Load)
	}
	return loads, args.Error(1)
}

func (m *MockLoadRepository) ListLoadsByCompany(ctx context.Context, companyID string, driverID *string, limit int, nextToken *string) ([]domain.Load, *string, error) {
	args := m.Called(ctx, companyID, driverID, limit, nextToken)
	var loads []domain.Load
	if args.Get(0) != nil {
		loads = args.Get(0).([]domain.Load)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return loads, token, args.Error(2)
}

func (m *MockLoadRepository) FindSettleableLoads(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time) ([]domain.Load, error) {
	args := m.Called(ctx, companyID, driverID, periodStart, periodEnd)
	var loads []domain.Load
	if args.Get(0) != nil {
		loads = args.Get(0).([]domain.Load)
	}
	return loads, args.Error(1)
}

func (m *MockLoadRepository) SaveLoad(ctx context.Context, load domain.Load) error {
	args := m.Called(ctx, load)
	return args.Error(0)
}

func (m *MockLoadRepository) UpdateLoad(ctx context.Context, load domain.Load) error {
	args := m.Called(ctx, load)
	return args.Error(0)
}

// --- Mock DeductionRuleRepository ---

type MockDeductionRuleRepository struct {
	mock.Mock
}

func (m *MockDeductionRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.DeductionRuleTemplate, error) {
	args := m.Called(ctx, ruleID)
	var rule *domain.DeductionRuleTemplate
	if args.Get(0) != nil {
		rule = args.Get(0).(*domain.DeductionRuleTemplate)
	}
	return rule, args.Error(1)
}

func (m *MockDeductionRuleRepository) ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool, limit, offset int) ([]domain.DeductionRuleTemplate, error) {
	args := m.Called(ctx, companyID, includeInactive, limit, offset)
	var rules []domain.DeductionRuleTemplate
	if args.Get(0) != nil {
		rules = args.Get(0).([]domain.DeductionRuleTemplate)
	}
	return rules, args.Error(1)
}

func (m *MockDeductionRuleRepository) FindActiveRulesByCompany(ctx context.Context, companyID string) ([]domain.DeductionRuleTemplate, error) {
	args := m.Called(ctx, companyID)
	var rules []domain.DeductionRuleTemplate
	if args.Get(0) != nil {
		rules = args.Get(0).([]domain.DeductionRuleTemplate)
	}
	return rules, args.Error(1)
}

func (m *MockDeductionRuleRepository) CountActiveRulesByCompany(ctx context.Context, companyID string) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeductionRuleRepository) SaveRule(ctx context.Context, rule domain.DeductionRuleTemplate) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockDeductionRuleRepository) UpdateRule(ctx context.Context, rule domain.DeductionRuleTemplate) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockDeductionRuleRepository) MarkRuleInactive(ctx context.Context, ruleID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, ruleID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockDeductionRuleRepository) FindRuleApplications(ctx context.Context, driverID string, ruleIDs []string) ([]domain.RuleApplication, error) {
	args := m.Called(ctx, driverID, ruleIDs)
	var apps []domain.RuleApplication
	if args.Get(0) != nil {
		apps = args.Get(0).([]domain.RuleApplication)
	}
	return apps, args.Error(1)
}

// --- Mock AdvanceRepository ---

type MockAdvanceRepository struct {
	mock.Mock
}

func (m *MockAdvanceRepository) FindAdvanceByID(ctx context.Context, advanceID string) (*domain.DriverAdvance, error) {
	args := m.Called(ctx, advanceID)
	var advance *domain.DriverAdvance
	if args.Get(0) != nil {
		advance = args.Get(0).(*domain.DriverAdvance)
	}
	return advance, args.Error(1)
}

func (m *MockAdvanceRepository) ListAdvancesByCompany(ctx context.Context, companyID string, driverID *string, status *domain.AdvanceStatus, limit int, nextToken *string) ([]domain.DriverAdvance, *string, error) {
	args := m.Called(ctx, companyID, driverID, status, limit, nextToken)
	var advances []domain.DriverAdvance
	if args.Get(0) != nil {
		advances = args.Get(0).([]domain.DriverAdvance)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return advances, token, args.Error(2)
}

func (m *MockAdvanceRepository) FindAdvancesBySettlementID(ctx context.Context, settlementID string) ([]domain.DriverAdvance, error) {
	args := m.Called(ctx, settlementID)
	var advances []domain.DriverAdvance
	if args.Get(0) != nil {
		advances = args.Get(0).([]domain.DriverAdvance)
	}
	return advances, args.Error(1)
}

func (m *MockAdvanceRepository) FindAttachableAdvances(ctx context.Context, companyID, driverID string) ([]domain.DriverAdvance, error) {
	args := m.Called(ctx, companyID, driverID)
	var advances []domain.DriverAdvance
	if args.Get(0) != nil {
		advances = args.Get(0).([]domain.DriverAdvance)
	}
	return advances, args.Error(1)
}

func (m *MockAdvanceRepository) SaveAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

func (m *MockAdvanceRepository) UpdateAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

func (m *MockAdvanceRepository) RejectAdvance(ctx context.Context, advance domain.DriverAdvance) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

// --- Mock SettlementRepository ---

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) ListSettlementsByCompany(ctx context.Context, companyID string, driverID *string, status *domain.SettlementStatus, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	args := m.Called(ctx, companyID, driverID, status, limit, nextToken)
	var settlements []domain.Settlement
	if args.Get(0) != nil {
		settlements = args.Get(0).([]domain.Settlement)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return settlements, token, args.Error(2)
}

func (m *MockSettlementRepository) FindLineItemsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementLineItem, error) {
	args := m.Called(ctx, settlementID)
	var items []domain.SettlementLineItem
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.SettlementLineItem)
	}
	return items, args.Error(1)
}

func (m *MockSettlementRepository) FindStatusEventsBySettlementID(ctx context.Context, settlementID string) ([]domain.SettlementStatusEvent, error) {
	args := m.Called(ctx, settlementID)
	var events []domain.SettlementStatusEvent
	if args.Get(0) != nil {
		events = args.Get(0).([]domain.SettlementStatusEvent)
	}
	return events, args.Error(1)
}

func (m *MockSettlementRepository) FindSettlementForPeriod(ctx context.Context, companyID, driverID string, periodStart, periodEnd time.Time, statuses []domain.SettlementStatus) (*domain.Settlement, error) {
	args := m.Called(ctx, companyID, driverID, periodStart, periodEnd, statuses)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement, lineItems []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) error {
	args := m.Called(ctx, settlement, lineItems, applications, ruleProgress)
	return args.Error(0)
}

func (m *MockSettlementRepository) AddLineItem(ctx context.Context, settlementID string, item domain.SettlementLineItem) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID, item)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) RemoveLineItem(ctx context.Context, settlementID, lineItemID, updatedBy string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID, lineItemID, updatedBy)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) AttachAdvance(ctx context.Context, settlementID string, advance domain.DriverAdvance, item domain.SettlementLineItem) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID, advance, item)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) DetachAdvance(ctx context.Context, settlementID, advanceID, updatedBy string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID, advanceID, updatedBy)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) ReplaceGeneratedLineItems(ctx context.Context, settlement domain.Settlement, generated []domain.SettlementLineItem, applications []domain.RuleApplication, ruleProgress map[string]decimal.Decimal) (*domain.Settlement, error) {
	args := m.Called(ctx, settlement, generated, applications, ruleProgress)
	var updated *domain.Settlement
	if args.Get(0) != nil {
		updated = args.Get(0).(*domain.Settlement)
	}
	return updated, args.Error(1)
}

func (m *MockSettlementRepository) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, event domain.SettlementStatusEvent) error {
	args := m.Called(ctx, settlement, event)
	return args.Error(0)
}

// --- Test Suite ---

type SettlementServiceTestSuite struct {
	suite.Suite
	mockSettlementRepo *MockSettlementRepository
	mockLoadRepo       *MockLoadRepository
	mockDriverRepo     *MockDriverRepository
	mockRuleRepo       *MockDeductionRuleRepository
	mockAdvanceRepo    *MockAdvanceRepository
	mockAuthorizer     *MockCompanyAuthorizer
	service            portssvc.SettlementSvcFacade

	companyID string
	userID    string
	driver    domain.Driver
}

func (s *SettlementServiceTestSuite) SetupTest() {
	s.mockSettlementRepo = new(MockSettlementRepository)
	s.mockLoadRepo = new(MockLoadRepository)
	s.mockDriverRepo = new(MockDriverRepository)
	s.mockRuleRepo = new(MockDeductionRuleRepository)
	s.mockAdvanceRepo = new(MockAdvanceRepository)
	s.mockAuthorizer = new(MockCompanyAuthorizer)
	s.service = services.NewSettlementService(
		s.mockSettlementRepo,
		s.mockLoadRepo,
		s.mockDriverRepo,
		s.mockRuleRepo,
		s.mockAdvanceRepo,
		s.mockAuthorizer,
	)

	s.companyID = uuid.NewString()
	s.userID = uuid.NewString()
	s.driver = domain.Driver{
		DriverID:   uuid.NewString(),
		CompanyID:  s.companyID,
		Name:       "Pat Miller",
		PayType:    domain.PayPerMile,
		PayRate:    dec("0.55"),
		DriverType: domain.CompanyDriver,
		IsActive:   true,
	}
}

func (s *SettlementServiceTestSuite) period() (time.Time, time.Time) {
	start := time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 6)
}

func (s *SettlementServiceTestSuite) expectAuthz(role domain.UserCompanyRole) {
	s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, role).Return(nil).Once()
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_Success() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	req := dto.GenerateSettlementRequest{DriverID: s.driver.DriverID, PeriodStart: periodStart, PeriodEnd: periodEnd}

	loads := []domain.Load{
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, LoadNumber: "L-1", TotalMiles: dec("1000"), Revenue: dec("2500"), Status: domain.LoadDelivered, ReadyForSettlement: true},
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, LoadNumber: "L-2", TotalMiles: dec("800"), Revenue: dec("2000"), Status: domain.LoadDelivered, ReadyForSettlement: true},
	}
	rules := []domain.DeductionRuleTemplate{{
		RuleID:          uuid.NewString(),
		CompanyID:       s.companyID,
		Name:            "Occupational insurance",
		Kind:            domain.KindInsurance,
		CalculationType: domain.CalcFixed,
		Amount:          decPtr("150"),
		Frequency:       domain.FreqPerSettlement,
		IsActive:        true,
	}}

	s.expectAuthz(domain.RoleMember)
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, s.driver.DriverID).Return(&s.driver, nil).Once()
	s.mockSettlementRepo.On("FindSettlementForPeriod", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd, domain.LiveStatuses()).Return(nil, nil).Once()
	s.mockLoadRepo.On("FindSettleableLoads", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd).Return(loads, nil).Once()
	s.mockRuleRepo.On("FindActiveRulesByCompany", mock.Anything, s.companyID).Return(rules, nil).Once()
	s.mockRuleRepo.On("FindRuleApplications", mock.Anything, s.driver.DriverID, []string{rules[0].RuleID}).Return(nil, nil).Once()
	s.mockSettlementRepo.On("SaveSettlement", mock.Anything, mock.AnythingOfType("domain.Settlement"), mock.AnythingOfType("[]domain.SettlementLineItem"), mock.AnythingOfType("[]domain.RuleApplication"), mock.AnythingOfType("map[string]decimal.Decimal")).Return(nil).Once()

	settlement, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(settlement)
	s.Equal(domain.SettlementDraft, settlement.Status)
	// 1800 miles at $0.55 = $990 gross.
	s.True(dec("990").Equal(settlement.GrossPay), "gross pay was %s", settlement.GrossPay)
	s.True(dec("150").Equal(settlement.TotalDeductions))
	s.True(dec("840").Equal(settlement.NetPay), "net pay was %s", settlement.NetPay)
	s.True(settlement.CarriedForward.IsZero())
	s.Len(settlement.LoadIDs, 2)
	s.Require().Len(settlement.LineItems, 1)
	s.Equal(rules[0].RuleID, *settlement.LineItems[0].SourceRuleID)
	s.Require().NotNil(settlement.CalcLog)
	s.Len(settlement.CalcLog.Entries, 2)
	s.NotEmpty(settlement.SettlementNumber)

	s.mockSettlementRepo.AssertExpectations(s.T())
	s.mockRuleRepo.AssertExpectations(s.T())
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_DuplicatePeriod() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	req := dto.GenerateSettlementRequest{DriverID: s.driver.DriverID, PeriodStart: periodStart, PeriodEnd: periodEnd}

	existing := &domain.Settlement{SettlementID: uuid.NewString(), SettlementNumber: "STL-20260815-ABCD1234", Status: domain.SettlementDraft}

	s.expectAuthz(domain.RoleMember)
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, s.driver.DriverID).Return(&s.driver, nil).Once()
	s.mockSettlementRepo.On("FindSettlementForPeriod", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd, domain.LiveStatuses()).Return(existing, nil).Once()

	_, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_InvertedPeriod() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	req := dto.GenerateSettlementRequest{DriverID: s.driver.DriverID, PeriodStart: periodEnd, PeriodEnd: periodStart}

	s.expectAuthz(domain.RoleMember)

	_, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_NoSettleableLoads() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	req := dto.GenerateSettlementRequest{DriverID: s.driver.DriverID, PeriodStart: periodStart, PeriodEnd: periodEnd}

	s.expectAuthz(domain.RoleMember)
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, s.driver.DriverID).Return(&s.driver, nil).Once()
	s.mockSettlementRepo.On("FindSettlementForPeriod", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd, domain.LiveStatuses()).Return(nil, nil).Once()
	s.mockLoadRepo.On("FindSettleableLoads", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd).Return(nil, nil).Once()

	_, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_NegativeNetCarriesForward() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	req := dto.GenerateSettlementRequest{DriverID: s.driver.DriverID, PeriodStart: periodStart, PeriodEnd: periodEnd}

	loads := []domain.Load{
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, LoadNumber: "L-1", TotalMiles: dec("200"), Status: domain.LoadDelivered, ReadyForSettlement: true},
	}
	// $110 gross against a $400 deduction.
	rules := []domain.DeductionRuleTemplate{{
		RuleID:          uuid.NewString(),
		CompanyID:       s.companyID,
		Name:            "Truck payment",
		Kind:            domain.KindTruckPayment,
		CalculationType: domain.CalcFixed,
		Amount:          decPtr("400"),
		Frequency:       domain.FreqPerSettlement,
		IsActive:        true,
	}}

	s.expectAuthz(domain.RoleMember)
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, s.driver.DriverID).Return(&s.driver, nil).Once()
	s.mockSettlementRepo.On("FindSettlementForPeriod", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd, domain.LiveStatuses()).Return(nil, nil).Once()
	s.mockLoadRepo.On("FindSettleableLoads", mock.Anything, s.companyID, s.driver.DriverID, periodStart, periodEnd).Return(loads, nil).Once()
	s.mockRuleRepo.On("FindActiveRulesByCompany", mock.Anything, s.companyID).Return(rules, nil).Once()
	s.mockRuleRepo.On("FindRuleApplications", mock.Anything, s.driver.DriverID, mock.Anything).Return(nil, nil).Once()
	s.mockSettlementRepo.On("SaveSettlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	settlement, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().NoError(err)
	s.True(settlement.NetPay.IsZero(), "net pay was %s", settlement.NetPay)
	s.True(dec("290").Equal(settlement.CarriedForward), "carried forward was %s", settlement.CarriedForward)
}

func (s *SettlementServiceTestSuite) TestGenerateSettlement_WeeklyDriverSingleEntry() {
	ctx := context.Background()
	periodStart, periodEnd := s.period()
	weekly := s.driver
	weekly.PayType = domain.PayWeekly
	weekly.PayRate = dec("1500")
	req := dto.GenerateSettlementRequest{DriverID: weekly.DriverID, PeriodStart: periodStart, PeriodEnd: periodEnd}

	loads := []domain.Load{
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: weekly.DriverID, LoadNumber: "L-1", TotalMiles: dec("600"), Revenue: dec("1500"), Status: domain.LoadDelivered, ReadyForSettlement: true},
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: weekly.DriverID, LoadNumber: "L-2", TotalMiles: dec("700"), Revenue: dec("1800"), Status: domain.LoadDelivered, ReadyForSettlement: true},
		{LoadID: uuid.NewString(), CompanyID: s.companyID, DriverID: weekly.DriverID, LoadNumber: "L-3", TotalMiles: dec("500"), Revenue: dec("1200"), Status: domain.LoadDelivered, ReadyForSettlement: true},
	}

	s.expectAuthz(domain.RoleMember)
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, weekly.DriverID).Return(&weekly, nil).Once()
	s.mockSettlementRepo.On("FindSettlementForPeriod", mock.Anything, s.companyID, weekly.DriverID, periodStart, periodEnd, domain.LiveStatuses()).Return(nil, nil).Once()
	s.mockLoadRepo.On("FindSettleableLoads", mock.Anything, s.companyID, weekly.DriverID, periodStart, periodEnd).Return(loads, nil).Once()
	s.mockRuleRepo.On("FindActiveRulesByCompany", mock.Anything, s.companyID).Return(nil, nil).Once()
	s.mockSettlementRepo.On("SaveSettlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	settlement, err := s.service.GenerateSettlement(ctx, s.companyID, req, s.userID)

	s.Require().NoError(err)
	s.True(dec("1500").Equal(settlement.GrossPay), "gross pay was %s", settlement.GrossPay)
	s.Len(settlement.LoadIDs, 3)
	s.Require().NotNil(settlement.CalcLog)
	// One flat entry for the whole settlement, not one per load.
	s.Require().Len(settlement.CalcLog.Entries, 1)
	s.Equal("flat weekly rate $1500", settlement.CalcLog.Entries[0].Formula)
	s.Empty(settlement.CalcLog.Warnings)
}

func (s *SettlementServiceTestSuite) TestAddLineItem_Success() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, DriverID: s.driver.DriverID, Status: domain.SettlementDraft}
	req := dto.AddLineItemRequest{Kind: domain.KindBonus, Description: "Safety bonus", Amount: dec("250")}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
	s.mockSettlementRepo.On("AddLineItem", mock.Anything, settlementID, mock.MatchedBy(func(item domain.SettlementLineItem) bool {
		return item.Kind == domain.KindBonus && item.Category == domain.CategoryAddition && item.Amount.Equal(dec("250"))
	})).Return(draft, nil).Once()

	_, err := s.service.AddLineItem(ctx, s.companyID, settlementID, req, s.userID)

	s.Require().NoError(err)
	s.mockSettlementRepo.AssertExpectations(s.T())
}

func (s *SettlementServiceTestSuite) TestAddLineItem_LockedSettlement() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	approved := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementApproved}
	req := dto.AddLineItemRequest{Kind: domain.KindBonus, Description: "Safety bonus", Amount: dec("250")}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(approved, nil).Once()

	_, err := s.service.AddLineItem(ctx, s.companyID, settlementID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrSettlementLocked)
}

func (s *SettlementServiceTestSuite) TestAddLineItem_OtherCompanyHidden() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	foreign := &domain.Settlement{SettlementID: settlementID, CompanyID: uuid.NewString(), Status: domain.SettlementDraft}
	req := dto.AddLineItemRequest{Kind: domain.KindBonus, Description: "Safety bonus", Amount: dec("250")}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(foreign, nil).Once()

	_, err := s.service.AddLineItem(ctx, s.companyID, settlementID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SettlementServiceTestSuite) TestRemoveLineItem_AdvanceLinkedRefused() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementDraft}
	advanceID := uuid.NewString()
	items := []domain.SettlementLineItem{{
		LineItemID:   uuid.NewString(),
		SettlementID: settlementID,
		Kind:         domain.KindCashAdvance,
		Category:     domain.CategoryDeduction,
		Amount:       dec("500"),
		AdvanceID:    &advanceID,
	}}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
	s.mockSettlementRepo.On("FindLineItemsBySettlementID", mock.Anything, settlementID).Return(items, nil).Once()

	_, err := s.service.RemoveLineItem(ctx, s.companyID, settlementID, items[0].LineItemID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *SettlementServiceTestSuite) TestAttachAdvance_Success() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, DriverID: s.driver.DriverID, Status: domain.SettlementDraft}
	advance := &domain.DriverAdvance{
		AdvanceID:   uuid.NewString(),
		CompanyID:   s.companyID,
		DriverID:    s.driver.DriverID,
		Amount:      dec("500"),
		RequestDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Status:      domain.AdvanceApproved,
	}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()
	s.mockSettlementRepo.On("AttachAdvance", mock.Anything, settlementID, mock.MatchedBy(func(adv domain.DriverAdvance) bool {
		return adv.SettlementID != nil && *adv.SettlementID == settlementID
	}), mock.MatchedBy(func(item domain.SettlementLineItem) bool {
		return item.Kind == domain.KindCashAdvance && item.AdvanceID != nil && *item.AdvanceID == advance.AdvanceID
	})).Return(draft, nil).Once()

	_, err := s.service.AttachAdvance(ctx, s.companyID, settlementID, advance.AdvanceID, s.userID)

	s.Require().NoError(err)
	s.mockSettlementRepo.AssertExpectations(s.T())
}

func (s *SettlementServiceTestSuite) TestAttachAdvance_WrongDriver() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, DriverID: s.driver.DriverID, Status: domain.SettlementDraft}
	advance := &domain.DriverAdvance{AdvanceID: uuid.NewString(), CompanyID: s.companyID, DriverID: uuid.NewString(), Amount: dec("500"), Status: domain.AdvancePending}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()

	_, err := s.service.AttachAdvance(ctx, s.companyID, settlementID, advance.AdvanceID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SettlementServiceTestSuite) TestAttachAdvance_RejectedAdvanceRefused() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, DriverID: s.driver.DriverID, Status: domain.SettlementDraft}
	advance := &domain.DriverAdvance{AdvanceID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, Amount: dec("500"), Status: domain.AdvanceRejected}

	s.expectAuthz(domain.RoleMember)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()

	_, err := s.service.AttachAdvance(ctx, s.companyID, settlementID, advance.AdvanceID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *SettlementServiceTestSuite) TestApprovalWorkflow() {
	ctx := context.Background()
	settlementID := uuid.NewString()

	s.Run("submit moves draft to pending approval", func() {
		draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementDraft}
		s.expectAuthz(domain.RoleMember)
		s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()
		s.mockSettlementRepo.On("UpdateSettlementStatus", mock.Anything, mock.MatchedBy(func(st domain.Settlement) bool {
			return st.Status == domain.SettlementPendingApproval
		}), mock.MatchedBy(func(ev domain.SettlementStatusEvent) bool {
			return ev.FromStatus == domain.SettlementDraft && ev.ToStatus == domain.SettlementPendingApproval && ev.ActorUserID == s.userID
		})).Return(nil).Once()

		updated, err := s.service.SubmitForApproval(ctx, s.companyID, settlementID, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.SettlementPendingApproval, updated.Status)
	})

	s.Run("approve records the payment method", func() {
		pending := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementPendingApproval}
		s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleAdmin).Return(nil).Once()
		s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(pending, nil).Once()
		s.mockSettlementRepo.On("UpdateSettlementStatus", mock.Anything, mock.MatchedBy(func(st domain.Settlement) bool {
			return st.Status == domain.SettlementApproved && st.PaymentMethod != nil && *st.PaymentMethod == "ACH"
		}), mock.AnythingOfType("domain.SettlementStatusEvent")).Return(nil).Once()

		updated, err := s.service.ApproveSettlement(ctx, s.companyID, settlementID, dto.ApproveSettlementRequest{PaymentMethod: "ACH"}, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.SettlementApproved, updated.Status)
	})

	s.Run("approve without payment method fails", func() {
		_, err := s.service.ApproveSettlement(ctx, s.companyID, settlementID, dto.ApproveSettlementRequest{}, s.userID)
		s.Require().Error(err)
		s.ErrorIs(err, apperrors.ErrValidation)
	})

	s.Run("reject requires a note", func() {
		_, err := s.service.RejectSettlement(ctx, s.companyID, settlementID, dto.RejectSettlementRequest{}, s.userID)
		s.Require().Error(err)
		s.ErrorIs(err, apperrors.ErrValidation)
	})

	s.Run("reject records the note on the event", func() {
		pending := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementPendingApproval}
		s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleAdmin).Return(nil).Once()
		s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(pending, nil).Once()
		s.mockSettlementRepo.On("UpdateSettlementStatus", mock.Anything, mock.AnythingOfType("domain.Settlement"), mock.MatchedBy(func(ev domain.SettlementStatusEvent) bool {
			return ev.ToStatus == domain.SettlementRejected && ev.Reason == "missing fuel receipts"
		})).Return(nil).Once()

		updated, err := s.service.RejectSettlement(ctx, s.companyID, settlementID, dto.RejectSettlementRequest{Note: "missing fuel receipts"}, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.SettlementRejected, updated.Status)
	})

	s.Run("paying a draft is an invalid transition", func() {
		draft := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementDraft}
		s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleAdmin).Return(nil).Once()
		s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(draft, nil).Once()

		_, err := s.service.MarkSettlementPaid(ctx, s.companyID, settlementID, s.userID)
		s.Require().Error(err)
		s.ErrorIs(err, apperrors.ErrInvalidTransition)
	})

	s.Run("reopen moves rejected back to draft", func() {
		rejected := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementRejected}
		s.expectAuthz(domain.RoleMember)
		s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(rejected, nil).Once()
		s.mockSettlementRepo.On("UpdateSettlementStatus", mock.Anything, mock.MatchedBy(func(st domain.Settlement) bool {
			return st.Status == domain.SettlementDraft
		}), mock.AnythingOfType("domain.SettlementStatusEvent")).Return(nil).Once()

		updated, err := s.service.ReopenSettlement(ctx, s.companyID, settlementID, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.SettlementDraft, updated.Status)
	})
}

func (s *SettlementServiceTestSuite) TestGetSettlementByID_LoadsLineItems() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	settlement := &domain.Settlement{SettlementID: settlementID, CompanyID: s.companyID, Status: domain.SettlementDraft}
	items := []domain.SettlementLineItem{{LineItemID: uuid.NewString(), SettlementID: settlementID, Kind: domain.KindInsurance, Category: domain.CategoryDeduction, Amount: dec("150")}}

	s.expectAuthz(domain.RoleReadOnly)
	s.mockSettlementRepo.On("FindSettlementByID", mock.Anything, settlementID).Return(settlement, nil).Once()
	s.mockSettlementRepo.On("FindLineItemsBySettlementID", mock.Anything, settlementID).Return(items, nil).Once()

	got, err := s.service.GetSettlementByID(ctx, s.companyID, settlementID, s.userID)

	s.Require().NoError(err)
	s.Len(got.LineItems, 1)
}

func (s *SettlementServiceTestSuite) TestAuthorizationFailurePropagates() {
	ctx := context.Background()
	s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleReadOnly).Return(apperrors.ErrForbidden).Once()

	_, err := s.service.GetSettlementByID(ctx, s.companyID, uuid.NewString(), s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}
