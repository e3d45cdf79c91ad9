package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/haulbooks/settlements_backend/internal/core/domain"
	portssvc "github.com/haulbooks/settlements_backend/internal/core/ports/services"
	"github.com/haulbooks/settlements_backend/internal/core/services"
	"github.com/haulbooks/settlements_backend/internal/dto"
)

type AdvanceServiceTestSuite struct {
	suite.Suite
	mockAdvanceRepo *MockAdvanceRepository
	mockDriverRepo  *MockDriverRepository
	mockAuthorizer  *MockCompanyAuthorizer
	service         portssvc.AdvanceSvcFacade

	companyID string
	userID    string
	driver    domain.Driver
}

func (s *AdvanceServiceTestSuite) SetupTest() {
	s.mockAdvanceRepo = new(MockAdvanceRepository)
	s.mockDriverRepo = new(MockDriverRepository)
	s.mockAuthorizer = new(MockCompanyAuthorizer)
	s.service = services.NewAdvanceService(s.mockAdvanceRepo, s.mockDriverRepo, s.mockAuthorizer)

	s.companyID = uuid.NewString()
	s.userID = uuid.NewString()
	s.driver = domain.Driver{
		DriverID:  uuid.NewString(),
		CompanyID: s.companyID,
		Name:      "Sam Reyes",
		PayType:   domain.PayPerMile,
		PayRate:   dec("0.55"),
		IsActive:  true,
	}
}

func (s *AdvanceServiceTestSuite) expectMemberAuthz() {
	s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleMember).Return(nil).Once()
}

func (s *AdvanceServiceTestSuite) TestRequestAdvance_Success() {
	ctx := context.Background()
	req := dto.CreateAdvanceRequest{DriverID: s.driver.DriverID, Amount: dec("500"), Notes: "fuel money"}

	s.expectMemberAuthz()
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, s.driver.DriverID).Return(&s.driver, nil).Once()
	s.mockAdvanceRepo.On("SaveAdvance", mock.Anything, mock.MatchedBy(func(adv domain.DriverAdvance) bool {
		return adv.Status == domain.AdvancePending && adv.Amount.Equal(dec("500")) && adv.DriverID == s.driver.DriverID
	})).Return(nil).Once()

	advance, err := s.service.RequestAdvance(ctx, s.companyID, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(advance)
	s.Equal(domain.AdvancePending, advance.Status)
	s.NotEmpty(advance.AdvanceID)
	s.Equal(s.userID, advance.CreatedBy)
	s.mockAdvanceRepo.AssertExpectations(s.T())
}

func (s *AdvanceServiceTestSuite) TestRequestAdvance_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateAdvanceRequest{DriverID: s.driver.DriverID, Amount: dec("0")}

	s.expectMemberAuthz()

	_, err := s.service.RequestAdvance(ctx, s.companyID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AdvanceServiceTestSuite) TestRequestAdvance_ForeignDriver() {
	ctx := context.Background()
	foreign := domain.Driver{DriverID: uuid.NewString(), CompanyID: uuid.NewString()}
	req := dto.CreateAdvanceRequest{DriverID: foreign.DriverID, Amount: dec("500")}

	s.expectMemberAuthz()
	s.mockDriverRepo.On("FindDriverByID", mock.Anything, foreign.DriverID).Return(&foreign, nil).Once()

	_, err := s.service.RequestAdvance(ctx, s.companyID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AdvanceServiceTestSuite) TestApproveAdvance_Success() {
	ctx := context.Background()
	advance := &domain.DriverAdvance{
		AdvanceID: uuid.NewString(),
		CompanyID: s.companyID,
		DriverID:  s.driver.DriverID,
		Amount:    dec("500"),
		Status:    domain.AdvancePending,
	}

	s.expectMemberAuthz()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()
	s.mockAdvanceRepo.On("UpdateAdvance", mock.Anything, mock.MatchedBy(func(adv domain.DriverAdvance) bool {
		return adv.Status == domain.AdvanceApproved && adv.DecidedBy != nil && *adv.DecidedBy == s.userID
	})).Return(nil).Once()

	updated, err := s.service.ApproveAdvance(ctx, s.companyID, advance.AdvanceID, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.AdvanceApproved, updated.Status)
	s.Require().NotNil(updated.DecidedAt)
	s.mockAdvanceRepo.AssertExpectations(s.T())
}

func (s *AdvanceServiceTestSuite) TestApproveAdvance_AlreadyDecided() {
	ctx := context.Background()
	advance := &domain.DriverAdvance{
		AdvanceID: uuid.NewString(),
		CompanyID: s.companyID,
		Status:    domain.AdvanceRejected,
	}

	s.expectMemberAuthz()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()

	_, err := s.service.ApproveAdvance(ctx, s.companyID, advance.AdvanceID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *AdvanceServiceTestSuite) TestRejectAdvance_DetachesFromSettlement() {
	ctx := context.Background()
	settlementID := uuid.NewString()
	advance := &domain.DriverAdvance{
		AdvanceID:    uuid.NewString(),
		CompanyID:    s.companyID,
		DriverID:     s.driver.DriverID,
		Amount:       dec("500"),
		Status:       domain.AdvancePending,
		SettlementID: &settlementID,
	}

	s.expectMemberAuthz()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()
	s.mockAdvanceRepo.On("RejectAdvance", mock.Anything, mock.MatchedBy(func(adv domain.DriverAdvance) bool {
		return adv.Status == domain.AdvanceRejected && adv.Notes == "not justified"
	})).Return(nil).Once()

	updated, err := s.service.RejectAdvance(ctx, s.companyID, advance.AdvanceID, dto.DecideAdvanceRequest{Note: "not justified"}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.AdvanceRejected, updated.Status)
	s.Nil(updated.SettlementID)
	s.mockAdvanceRepo.AssertExpectations(s.T())
}

func (s *AdvanceServiceTestSuite) TestMarkAdvancePaid() {
	ctx := context.Background()

	s.Run("approved advance can be paid", func() {
		advance := &domain.DriverAdvance{AdvanceID: uuid.NewString(), CompanyID: s.companyID, Status: domain.AdvanceApproved}
		s.expectMemberAuthz()
		s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()
		s.mockAdvanceRepo.On("UpdateAdvance", mock.Anything, mock.MatchedBy(func(adv domain.DriverAdvance) bool {
			return adv.Status == domain.AdvancePaid
		})).Return(nil).Once()

		updated, err := s.service.MarkAdvancePaid(ctx, s.companyID, advance.AdvanceID, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.AdvancePaid, updated.Status)
	})

	s.Run("pending advance cannot be paid", func() {
		advance := &domain.DriverAdvance{AdvanceID: uuid.NewString(), CompanyID: s.companyID, Status: domain.AdvancePending}
		s.expectMemberAuthz()
		s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()

		_, err := s.service.MarkAdvancePaid(ctx, s.companyID, advance.AdvanceID, s.userID)
		s.Require().Error(err)
		s.ErrorIs(err, apperrors.ErrInvalidTransition)
	})
}

func (s *AdvanceServiceTestSuite) TestListAdvances_AttachableFilter() {
	ctx := context.Background()

	s.Run("returns unattached advances for the driver", func() {
		attachable := []domain.DriverAdvance{
			{AdvanceID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, Amount: dec("200"), Status: domain.AdvanceApproved},
		}
		s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleReadOnly).Return(nil).Once()
		s.mockAdvanceRepo.On("FindAttachableAdvances", mock.Anything, s.companyID, s.driver.DriverID).Return(attachable, nil).Once()

		resp, err := s.service.ListAdvances(ctx, s.companyID, s.userID, dto.ListAdvancesParams{
			DriverID:   &s.driver.DriverID,
			Attachable: true,
		})

		s.Require().NoError(err)
		s.Require().Len(resp.Advances, 1)
		s.Equal(attachable[0].AdvanceID, resp.Advances[0].AdvanceID)
		s.Nil(resp.NextToken)
		s.mockAdvanceRepo.AssertExpectations(s.T())
	})

	s.Run("requires a driver filter", func() {
		s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleReadOnly).Return(nil).Once()

		_, err := s.service.ListAdvances(ctx, s.companyID, s.userID, dto.ListAdvancesParams{Attachable: true})

		s.Require().Error(err)
		s.ErrorIs(err, apperrors.ErrValidation)
	})
}

func (s *AdvanceServiceTestSuite) TestListAdvances_PagesWithToken() {
	ctx := context.Background()
	page := []domain.DriverAdvance{
		{AdvanceID: uuid.NewString(), CompanyID: s.companyID, DriverID: s.driver.DriverID, Amount: dec("100"), Status: domain.AdvancePending},
	}
	token := "b2xkZXItcGFnZQ=="
	next := "ZXZlbi1vbGRlcg=="

	s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleReadOnly).Return(nil).Once()
	s.mockAdvanceRepo.On("ListAdvancesByCompany", mock.Anything, s.companyID, (*string)(nil), (*domain.AdvanceStatus)(nil), 20, &token).Return(page, &next, nil).Once()

	resp, err := s.service.ListAdvances(ctx, s.companyID, s.userID, dto.ListAdvancesParams{NextToken: &token})

	s.Require().NoError(err)
	s.Require().Len(resp.Advances, 1)
	s.Require().NotNil(resp.NextToken)
	s.Equal(next, *resp.NextToken)
	s.mockAdvanceRepo.AssertExpectations(s.T())
}

func (s *AdvanceServiceTestSuite) TestGetAdvanceByID_OtherCompanyHidden() {
	ctx := context.Background()
	advance := &domain.DriverAdvance{AdvanceID: uuid.NewString(), CompanyID: uuid.NewString(), Status: domain.AdvancePending}

	s.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, s.userID, s.companyID, domain.RoleReadOnly).Return(nil).Once()
	s.mockAdvanceRepo.On("FindAdvanceByID", mock.Anything, advance.AdvanceID).Return(advance, nil).Once()

	_, err := s.service.GetAdvanceByID(ctx, s.companyID, advance.AdvanceID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAdvanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdvanceServiceTestSuite))
}
