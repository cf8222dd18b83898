package handlers

import (
	"context"
	"time"

	"poolledger/internal/models"
	"poolledger/internal/services"
)

type PoolService interface {
	EnsureInvestor(ctx context.Context, profileID string, now time.Time) (*models.Investor, error)
	EnsureActiveCycle(ctx context.Context, now time.Time) (*models.FundCycle, error)
	GetActiveCycle(ctx context.Context) (*models.FundCycle, error)
	GetCycle(ctx context.Context, cycleID string) (*models.FundCycle, error)
	RecordDeposit(ctx context.Context, req services.DepositRequest, now time.Time) (*models.InvestorDeposit, services.RecomputeResult, error)
	RecomputeShares(ctx context.Context, cycleID string, now time.Time) (services.RecomputeResult, error)
	CloseCycle(ctx context.Context, cycleID string, input services.SettlementInput) (*models.FundCycle, error)
	RequestWithdrawal(ctx context.Context, req services.WithdrawalRequest, now time.Time) (*models.InvestorWithdrawal, error)
	UpdateWithdrawal(ctx context.Context, withdrawalID string, change services.WithdrawalChange, now time.Time) (*models.InvestorWithdrawal, error)
	FindWithdrawal(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error)
	ListInvestorDeposits(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error)
	ListInvestorWithdrawals(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error)
}

type ShareReader interface {
	ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorShare, error)
	GetByInvestorAndCycle(ctx context.Context, investorID, cycleID string) (*models.InvestorShare, error)
}

type AdminChecker interface {
	RequireAdmin(ctx context.Context, profileID string) (bool, error)
}
