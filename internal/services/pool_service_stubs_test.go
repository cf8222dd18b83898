package services

import (
	"context"
	"time"

	"poolledger/internal/models"
	"poolledger/internal/store"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubInvestorStore struct {
	getByProfileFn func(ctx context.Context, profileID string) (*models.Investor, error)
	createFn       func(ctx context.Context, id, profileID, status string, joinedAt time.Time) error
}

func (s stubInvestorStore) GetByProfile(ctx context.Context, profileID string) (*models.Investor, error) {
	if s.getByProfileFn == nil {
		return nil, nil
	}
	return s.getByProfileFn(ctx, profileID)
}

func (s stubInvestorStore) Create(ctx context.Context, id, profileID, status string, joinedAt time.Time) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, id, profileID, status, joinedAt)
}

type stubCycleStore struct {
	getActiveFn func(ctx context.Context) (*models.FundCycle, error)
	getByIDFn   func(ctx context.Context, cycleID string) (*models.FundCycle, error)
	createFn    func(ctx context.Context, id string, month, year int, openedAt time.Time) error
	closeFn     func(ctx context.Context, tx store.Execer, cycleID, expectedStatus string, input store.CycleSettlementInput) (bool, error)
}

func (s stubCycleStore) GetActive(ctx context.Context) (*models.FundCycle, error) {
	if s.getActiveFn == nil {
		return nil, nil
	}
	return s.getActiveFn(ctx)
}

func (s stubCycleStore) GetByID(ctx context.Context, cycleID string) (*models.FundCycle, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, cycleID)
}

func (s stubCycleStore) Create(ctx context.Context, id string, month, year int, openedAt time.Time) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, id, month, year, openedAt)
}

func (s stubCycleStore) Close(ctx context.Context, tx store.Execer, cycleID, expectedStatus string, input store.CycleSettlementInput) (bool, error) {
	if s.closeFn == nil {
		return true, nil
	}
	return s.closeFn(ctx, tx, cycleID, expectedStatus, input)
}

type stubDepositStore struct {
	createFn         func(ctx context.Context, tx store.Execer, input store.DepositInput) error
	listByCycleFn    func(ctx context.Context, cycleID string) ([]models.InvestorDeposit, error)
	listByInvestorFn func(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error)
}

func (s stubDepositStore) Create(ctx context.Context, tx store.Execer, input store.DepositInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubDepositStore) ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorDeposit, error) {
	if s.listByCycleFn == nil {
		return nil, nil
	}
	return s.listByCycleFn(ctx, cycleID)
}

func (s stubDepositStore) ListByInvestorAndCycle(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error) {
	if s.listByInvestorFn == nil {
		return nil, nil
	}
	return s.listByInvestorFn(ctx, investorID, cycleID)
}

type stubWithdrawalStore struct {
	createFn         func(ctx context.Context, input store.WithdrawalInput) error
	getByIDFn        func(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error)
	updateStatusFn   func(ctx context.Context, withdrawalID, expectedStatus, newStatus string, fulfilledAt *time.Time, adminNotes *string) (bool, error)
	listFn           func(ctx context.Context, cycleID string, statuses []string) ([]models.InvestorWithdrawal, error)
	listByInvestorFn func(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error)
}

func (s stubWithdrawalStore) Create(ctx context.Context, input store.WithdrawalInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, input)
}

func (s stubWithdrawalStore) GetByID(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, withdrawalID)
}

func (s stubWithdrawalStore) UpdateStatus(ctx context.Context, withdrawalID, expectedStatus, newStatus string, fulfilledAt *time.Time, adminNotes *string) (bool, error) {
	if s.updateStatusFn == nil {
		return true, nil
	}
	return s.updateStatusFn(ctx, withdrawalID, expectedStatus, newStatus, fulfilledAt, adminNotes)
}

func (s stubWithdrawalStore) ListByCycleStatuses(ctx context.Context, cycleID string, statuses []string) ([]models.InvestorWithdrawal, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, cycleID, statuses)
}

func (s stubWithdrawalStore) ListByInvestor(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error) {
	if s.listByInvestorFn == nil {
		return nil, nil
	}
	return s.listByInvestorFn(ctx, investorID)
}

type stubShareStore struct {
	listByCycleFn func(ctx context.Context, cycleID string) ([]models.InvestorShare, error)
	upsertFn      func(ctx context.Context, tx store.Execer, shares []models.InvestorShare) error
}

func (s stubShareStore) ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorShare, error) {
	if s.listByCycleFn == nil {
		return nil, nil
	}
	return s.listByCycleFn(ctx, cycleID)
}

func (s stubShareStore) UpsertBatch(ctx context.Context, tx store.Execer, shares []models.InvestorShare) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, shares)
}
