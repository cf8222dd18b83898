package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"poolledger/internal/config"
	"poolledger/internal/models"
	"poolledger/internal/services"

	"github.com/rs/zerolog"
)

type stubService struct {
	ensureInvestorFn    func(ctx context.Context, profileID string, now time.Time) (*models.Investor, error)
	ensureActiveCycleFn func(ctx context.Context, now time.Time) (*models.FundCycle, error)
	getActiveCycleFn    func(ctx context.Context) (*models.FundCycle, error)
	getCycleFn          func(ctx context.Context, cycleID string) (*models.FundCycle, error)
	recordDepositFn     func(ctx context.Context, req services.DepositRequest, now time.Time) (*models.InvestorDeposit, services.RecomputeResult, error)
	recomputeSharesFn   func(ctx context.Context, cycleID string, now time.Time) (services.RecomputeResult, error)
	closeCycleFn        func(ctx context.Context, cycleID string, input services.SettlementInput) (*models.FundCycle, error)
	requestWithdrawalFn func(ctx context.Context, req services.WithdrawalRequest, now time.Time) (*models.InvestorWithdrawal, error)
	updateWithdrawalFn  func(ctx context.Context, withdrawalID string, change services.WithdrawalChange, now time.Time) (*models.InvestorWithdrawal, error)
	findWithdrawalFn    func(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error)
	listDepositsFn      func(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error)
	listWithdrawalsFn   func(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error)
}

func (s stubService) EnsureInvestor(ctx context.Context, profileID string, now time.Time) (*models.Investor, error) {
	if s.ensureInvestorFn == nil {
		return &models.Investor{ID: "inv-1", ProfileID: profileID}, nil
	}
	return s.ensureInvestorFn(ctx, profileID, now)
}

func (s stubService) EnsureActiveCycle(ctx context.Context, now time.Time) (*models.FundCycle, error) {
	if s.ensureActiveCycleFn == nil {
		return &models.FundCycle{ID: "cycle-1", Status: models.CycleStatusActive}, nil
	}
	return s.ensureActiveCycleFn(ctx, now)
}

func (s stubService) GetActiveCycle(ctx context.Context) (*models.FundCycle, error) {
	if s.getActiveCycleFn == nil {
		return nil, nil
	}
	return s.getActiveCycleFn(ctx)
}

func (s stubService) GetCycle(ctx context.Context, cycleID string) (*models.FundCycle, error) {
	if s.getCycleFn == nil {
		return nil, nil
	}
	return s.getCycleFn(ctx, cycleID)
}

func (s stubService) RecordDeposit(ctx context.Context, req services.DepositRequest, now time.Time) (*models.InvestorDeposit, services.RecomputeResult, error) {
	if s.recordDepositFn == nil {
		return &models.InvestorDeposit{ID: "dep-1"}, services.RecomputeResult{}, nil
	}
	return s.recordDepositFn(ctx, req, now)
}

func (s stubService) RecomputeShares(ctx context.Context, cycleID string, now time.Time) (services.RecomputeResult, error) {
	if s.recomputeSharesFn == nil {
		return services.RecomputeResult{}, nil
	}
	return s.recomputeSharesFn(ctx, cycleID, now)
}

func (s stubService) CloseCycle(ctx context.Context, cycleID string, input services.SettlementInput) (*models.FundCycle, error) {
	if s.closeCycleFn == nil {
		return &models.FundCycle{ID: cycleID, Status: models.CycleStatusSettled}, nil
	}
	return s.closeCycleFn(ctx, cycleID, input)
}

func (s stubService) RequestWithdrawal(ctx context.Context, req services.WithdrawalRequest, now time.Time) (*models.InvestorWithdrawal, error) {
	if s.requestWithdrawalFn == nil {
		return &models.InvestorWithdrawal{ID: "wd-1", Status: models.WithdrawalStatusPending}, nil
	}
	return s.requestWithdrawalFn(ctx, req, now)
}

func (s stubService) UpdateWithdrawal(ctx context.Context, withdrawalID string, change services.WithdrawalChange, now time.Time) (*models.InvestorWithdrawal, error) {
	if s.updateWithdrawalFn == nil {
		return nil, nil
	}
	return s.updateWithdrawalFn(ctx, withdrawalID, change, now)
}

func (s stubService) FindWithdrawal(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error) {
	if s.findWithdrawalFn == nil {
		return nil, nil
	}
	return s.findWithdrawalFn(ctx, withdrawalID)
}

func (s stubService) ListInvestorDeposits(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error) {
	if s.listDepositsFn == nil {
		return nil, nil
	}
	return s.listDepositsFn(ctx, investorID, cycleID)
}

func (s stubService) ListInvestorWithdrawals(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error) {
	if s.listWithdrawalsFn == nil {
		return nil, nil
	}
	return s.listWithdrawalsFn(ctx, investorID)
}

type stubShareReader struct {
	listFn func(ctx context.Context, cycleID string) ([]models.InvestorShare, error)
	getFn  func(ctx context.Context, investorID, cycleID string) (*models.InvestorShare, error)
}

func (s stubShareReader) ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorShare, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, cycleID)
}

func (s stubShareReader) GetByInvestorAndCycle(ctx context.Context, investorID, cycleID string) (*models.InvestorShare, error) {
	if s.getFn == nil {
		return nil, nil
	}
	return s.getFn(ctx, investorID, cycleID)
}

type stubResolver struct {
	profile *models.Profile
	isAdmin bool
}

func (s stubResolver) ResolveProfile(context.Context, string, string) (*models.Profile, error) {
	return s.profile, nil
}

func (s stubResolver) RequireAdmin(context.Context, string) (bool, error) {
	return s.isAdmin, nil
}

func newTestHandler(service stubService, shares stubShareReader, resolver stubResolver) *Handler {
	return New(config.Load(), service, shares, resolver, resolver, zerolog.Nop())
}

func doRequest(handler *Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request.Header.Set("Authorization", "Bearer test-token")
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}
