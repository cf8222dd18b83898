package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"poolledger/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type WithdrawalStore struct {
	db DB
}

func NewWithdrawalStore(db DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

const withdrawalColumns = `
	id, investor_id, cycle_id, amount_usdt, net_amount_usdt, reinvested_amount_usdt,
	status, requested_at, notice_expires_at, fulfilled_at, admin_notes
`

type WithdrawalInput struct {
	ID                   string
	InvestorID           string
	CycleID              string
	AmountUSDT           decimal.Decimal
	NetAmountUSDT        decimal.Decimal
	ReinvestedAmountUSDT decimal.Decimal
	Status               string
	RequestedAt          time.Time
	NoticeExpiresAt      *time.Time
}

func (s *WithdrawalStore) Create(ctx context.Context, input WithdrawalInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investor_withdrawals
			(id, investor_id, cycle_id, amount_usdt, net_amount_usdt, reinvested_amount_usdt, status, requested_at, notice_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, input.ID, input.InvestorID, input.CycleID, input.AmountUSDT,
		input.NetAmountUSDT, input.ReinvestedAmountUSDT, input.Status,
		input.RequestedAt, input.NoticeExpiresAt)
	return wrapErr("withdrawal create", err)
}

func (s *WithdrawalStore) GetByID(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error) {
	var row models.InvestorWithdrawal
	err := s.db.GetContext(ctx, &row, `
		SELECT `+withdrawalColumns+`
		FROM investor_withdrawals
		WHERE id = $1
	`, withdrawalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("withdrawal get by id", err)
	}
	return &row, nil
}

// UpdateStatus transitions a withdrawal only when it still holds
// expectedStatus, so concurrent admin actions cannot silently overwrite each
// other. Returns false when the guard did not match.
func (s *WithdrawalStore) UpdateStatus(ctx context.Context, withdrawalID, expectedStatus, newStatus string, fulfilledAt *time.Time, adminNotes *string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE investor_withdrawals
		SET status = $1,
		    fulfilled_at = COALESCE($2, fulfilled_at),
		    admin_notes = COALESCE($3, admin_notes)
		WHERE id = $4 AND status = $5
	`, newStatus, fulfilledAt, adminNotes, withdrawalID, expectedStatus)
	if err != nil {
		return false, wrapErr("withdrawal update status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrapErr("withdrawal update status", err)
	}
	return affected == 1, nil
}

// ListByCycleStatuses returns the cycle's withdrawals in any of the given
// statuses; share recomputation feeds it the contribution-affecting set.
func (s *WithdrawalStore) ListByCycleStatuses(ctx context.Context, cycleID string, statuses []string) ([]models.InvestorWithdrawal, error) {
	var rows []models.InvestorWithdrawal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+withdrawalColumns+`
		FROM investor_withdrawals
		WHERE cycle_id = $1 AND status = ANY($2)
		ORDER BY requested_at
	`, cycleID, pq.Array(statuses))
	if err != nil {
		return nil, wrapErr("withdrawal list by cycle", err)
	}
	return rows, nil
}

func (s *WithdrawalStore) ListByInvestor(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error) {
	var rows []models.InvestorWithdrawal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+withdrawalColumns+`
		FROM investor_withdrawals
		WHERE investor_id = $1
		ORDER BY requested_at DESC
	`, investorID)
	if err != nil {
		return nil, wrapErr("withdrawal list by investor", err)
	}
	return rows, nil
}
