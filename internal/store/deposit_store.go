package store

import (
	"context"
	"time"

	"poolledger/internal/models"

	"github.com/shopspring/decimal"
)

type DepositStore struct {
	db DB
}

func NewDepositStore(db DB) *DepositStore {
	return &DepositStore{db: db}
}

type DepositInput struct {
	ID         string
	InvestorID string
	CycleID    string
	AmountUSDT decimal.Decimal
	Type       string
	TxHash     *string
	Notes      *string
	CreatedAt  time.Time
}

func (s *DepositStore) Create(ctx context.Context, tx Execer, input DepositInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investor_deposits (id, investor_id, cycle_id, amount_usdt, deposit_type, tx_hash, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.InvestorID, input.CycleID, input.AmountUSDT, input.Type,
		input.TxHash, input.Notes, input.CreatedAt)
	return wrapErr("deposit create", err)
}

func (s *DepositStore) ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorDeposit, error) {
	var rows []models.InvestorDeposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, investor_id, cycle_id, amount_usdt, deposit_type, tx_hash, notes, created_at
		FROM investor_deposits
		WHERE cycle_id = $1
		ORDER BY created_at
	`, cycleID)
	if err != nil {
		return nil, wrapErr("deposit list by cycle", err)
	}
	return rows, nil
}

func (s *DepositStore) ListByInvestorAndCycle(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error) {
	var rows []models.InvestorDeposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, investor_id, cycle_id, amount_usdt, deposit_type, tx_hash, notes, created_at
		FROM investor_deposits
		WHERE investor_id = $1 AND cycle_id = $2
		ORDER BY created_at
	`, investorID, cycleID)
	if err != nil {
		return nil, wrapErr("deposit list by investor", err)
	}
	return rows, nil
}
