package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"poolledger/internal/db"
	"poolledger/internal/models"
	"poolledger/internal/money"
	"poolledger/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidDepositType  = errors.New("unknown deposit type")
	ErrAmountSplitMismatch = errors.New("net and reinvested amounts must sum to the requested amount")
	ErrCycleNotFound       = errors.New("cycle not found")
	ErrCycleAlreadySettled = errors.New("cycle is already settled")
	ErrSettlementImbalance = errors.New("settlement totals do not reconcile")
	ErrIllegalTransition   = errors.New("illegal withdrawal status transition")
	ErrTransitionConflict  = errors.New("withdrawal status changed concurrently")
	ErrNoticeActive        = errors.New("withdrawal notice period has not expired")
	ErrInvalidStatus       = errors.New("unknown withdrawal status")
)

type InvestorStore interface {
	GetByProfile(ctx context.Context, profileID string) (*models.Investor, error)
	Create(ctx context.Context, id, profileID, status string, joinedAt time.Time) error
}

type CycleStore interface {
	GetActive(ctx context.Context) (*models.FundCycle, error)
	GetByID(ctx context.Context, cycleID string) (*models.FundCycle, error)
	Create(ctx context.Context, id string, month, year int, openedAt time.Time) error
	Close(ctx context.Context, tx store.Execer, cycleID, expectedStatus string, input store.CycleSettlementInput) (bool, error)
}

type DepositStore interface {
	Create(ctx context.Context, tx store.Execer, input store.DepositInput) error
	ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorDeposit, error)
	ListByInvestorAndCycle(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error)
}

type WithdrawalStore interface {
	Create(ctx context.Context, input store.WithdrawalInput) error
	GetByID(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error)
	UpdateStatus(ctx context.Context, withdrawalID, expectedStatus, newStatus string, fulfilledAt *time.Time, adminNotes *string) (bool, error)
	ListByCycleStatuses(ctx context.Context, cycleID string, statuses []string) ([]models.InvestorWithdrawal, error)
	ListByInvestor(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error)
}

type ShareStore interface {
	ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorShare, error)
	UpsertBatch(ctx context.Context, tx store.Execer, shares []models.InvestorShare) error
}

// PoolService owns the private pool ledger: investor and cycle bootstrapping,
// deposits, the withdrawal lifecycle, share recomputation and settlement.
type PoolService struct {
	txRunner    db.TxRunner
	investors   InvestorStore
	cycles      CycleStore
	deposits    DepositStore
	withdrawals WithdrawalStore
	shares      ShareStore
	log         zerolog.Logger
}

func NewPoolService(txRunner db.TxRunner, investors InvestorStore, cycles CycleStore, deposits DepositStore, withdrawals WithdrawalStore, shares ShareStore, log zerolog.Logger) *PoolService {
	return &PoolService{
		txRunner:    txRunner,
		investors:   investors,
		cycles:      cycles,
		deposits:    deposits,
		withdrawals: withdrawals,
		shares:      shares,
		log:         log,
	}
}

// CycleMonthYear derives the accounting period from a point in time, in UTC.
func CycleMonthYear(t time.Time) (int, int) {
	u := t.UTC()
	return int(u.Month()), u.Year()
}

// NextCycle returns the calendar period following (month, year); December
// wraps to January of the next year.
func NextCycle(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// EnsureInvestor returns the profile's investor record, creating it on first
// pool interaction. Losing the create race to a concurrent request is
// resolved by re-reading the winner's row.
func (s *PoolService) EnsureInvestor(ctx context.Context, profileID string, now time.Time) (*models.Investor, error) {
	existing, err := s.investors.GetByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	investor := &models.Investor{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Status:    models.InvestorStatusActive,
		JoinedAt:  now,
	}
	err = s.investors.Create(ctx, investor.ID, investor.ProfileID, investor.Status, investor.JoinedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return s.investors.GetByProfile(ctx, profileID)
		}
		return nil, err
	}
	s.log.Info().Str("investor_id", investor.ID).Str("profile_id", profileID).Msg("investor created")
	return investor, nil
}

// EnsureActiveCycle returns the open accounting period, opening one for the
// current UTC month when none exists. The partial unique index on active
// cycles turns a concurrent open into a safe re-read.
func (s *PoolService) EnsureActiveCycle(ctx context.Context, now time.Time) (*models.FundCycle, error) {
	existing, err := s.cycles.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	month, year := CycleMonthYear(now)
	cycle := &models.FundCycle{
		ID:         uuid.NewString(),
		CycleMonth: month,
		CycleYear:  year,
		Status:     models.CycleStatusActive,
		OpenedAt:   now,
	}
	err = s.cycles.Create(ctx, cycle.ID, month, year, now)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return s.cycles.GetActive(ctx)
		}
		return nil, err
	}
	s.log.Info().Str("cycle_id", cycle.ID).Int("month", month).Int("year", year).Msg("cycle opened")
	return cycle, nil
}

func (s *PoolService) GetActiveCycle(ctx context.Context) (*models.FundCycle, error) {
	return s.cycles.GetActive(ctx)
}

func (s *PoolService) GetCycle(ctx context.Context, cycleID string) (*models.FundCycle, error) {
	return s.cycles.GetByID(ctx, cycleID)
}

type DepositRequest struct {
	InvestorID string
	CycleID    string
	AmountUSDT decimal.Decimal
	Type       string
	TxHash     *string
	Notes      *string
}

// RecordDeposit stores an inbound capital event and recomputes the cycle's
// shares. Deposits are immutable once written.
func (s *PoolService) RecordDeposit(ctx context.Context, req DepositRequest, now time.Time) (*models.InvestorDeposit, RecomputeResult, error) {
	if !req.AmountUSDT.IsPositive() {
		return nil, RecomputeResult{}, ErrInvalidAmount
	}
	if req.Type == "" {
		req.Type = models.DepositTypeExternal
	}
	if !validDepositType(req.Type) {
		return nil, RecomputeResult{}, ErrInvalidDepositType
	}
	deposit := &models.InvestorDeposit{
		ID:         uuid.NewString(),
		InvestorID: req.InvestorID,
		CycleID:    req.CycleID,
		AmountUSDT: money.RoundAmount(req.AmountUSDT),
		Type:       req.Type,
		TxHash:     req.TxHash,
		Notes:      req.Notes,
		CreatedAt:  now,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.deposits.Create(ctx, tx, store.DepositInput{
			ID:         deposit.ID,
			InvestorID: deposit.InvestorID,
			CycleID:    deposit.CycleID,
			AmountUSDT: deposit.AmountUSDT,
			Type:       deposit.Type,
			TxHash:     deposit.TxHash,
			Notes:      deposit.Notes,
			CreatedAt:  deposit.CreatedAt,
		})
	})
	if err != nil {
		return nil, RecomputeResult{}, err
	}
	result, err := s.RecomputeShares(ctx, req.CycleID, now)
	if err != nil {
		return nil, RecomputeResult{}, err
	}
	return deposit, result, nil
}

type RecomputeResult struct {
	TotalContribution decimal.Decimal
	Contributions     map[string]decimal.Decimal
	Records           []models.InvestorShare
}

// RecomputeShares rebuilds the cycle's ownership table from source events.
// Contribution is always derived from deposits and approved/fulfilled
// withdrawals rather than kept as a running total, so the call is idempotent
// and safe to repeat after any contribution-affecting mutation.
func (s *PoolService) RecomputeShares(ctx context.Context, cycleID string, now time.Time) (RecomputeResult, error) {
	deposits, err := s.deposits.ListByCycle(ctx, cycleID)
	if err != nil {
		return RecomputeResult{}, err
	}
	contributions := make(map[string]decimal.Decimal)
	for _, deposit := range deposits {
		contributions[deposit.InvestorID] = contributions[deposit.InvestorID].Add(deposit.AmountUSDT)
	}

	withdrawals, err := s.withdrawals.ListByCycleStatuses(ctx, cycleID, []string{
		models.WithdrawalStatusApproved,
		models.WithdrawalStatusFulfilled,
	})
	if err != nil {
		return RecomputeResult{}, err
	}
	for _, withdrawal := range withdrawals {
		// A withdrawal can net a contribution to exactly zero, never below.
		// Over-withdrawal is rejected upstream, not here.
		remaining := contributions[withdrawal.InvestorID].Sub(withdrawal.NetAmountUSDT)
		contributions[withdrawal.InvestorID] = money.FloorZero(remaining)
	}

	existing, err := s.shares.ListByCycle(ctx, cycleID)
	if err != nil {
		return RecomputeResult{}, err
	}
	// The universe to rewrite is every investor with a computed contribution
	// plus every investor holding a prior share row, so a contribution that
	// falls to zero produces a zero row instead of silently vanishing.
	universe := make(map[string]struct{}, len(contributions)+len(existing))
	for investorID := range contributions {
		universe[investorID] = struct{}{}
	}
	for _, share := range existing {
		universe[share.InvestorID] = struct{}{}
	}

	total := decimal.Zero
	for _, contribution := range contributions {
		total = total.Add(contribution)
	}

	investorIDs := make([]string, 0, len(universe))
	for investorID := range universe {
		investorIDs = append(investorIDs, investorID)
	}
	sort.Strings(investorIDs)

	records := make([]models.InvestorShare, 0, len(investorIDs))
	for _, investorID := range investorIDs {
		contribution := contributions[investorID]
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = contribution.Div(total).Mul(decimal.NewFromInt(100))
		}
		records = append(records, models.InvestorShare{
			InvestorID:       investorID,
			CycleID:          cycleID,
			SharePercentage:  money.RoundPercent(percentage),
			ContributionUSDT: money.RoundAmount(contribution),
			UpdatedAt:        now,
		})
	}

	if len(records) > 0 {
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.shares.UpsertBatch(ctx, tx, records)
		})
		if err != nil {
			return RecomputeResult{}, err
		}
	}

	s.log.Debug().Str("cycle_id", cycleID).Int("investors", len(records)).
		Str("total_contribution", total.String()).Msg("shares recomputed")
	return RecomputeResult{
		TotalContribution: total,
		Contributions:     contributions,
		Records:           records,
	}, nil
}

type SettlementInput struct {
	Status              string
	ProfitTotalUSDT     decimal.Decimal
	InvestorPayoutUSDT  decimal.Decimal
	ReinvestedTotalUSDT decimal.Decimal
	PerformanceFeeUSDT  decimal.Decimal
	PayoutSummary       json.RawMessage
	Notes               *string
	ClosedAt            time.Time
}

// settlementEpsilon is one cent of tolerance when reconciling caller-supplied
// settlement totals.
var settlementEpsilon = decimal.New(1, -2)

// CloseCycle transitions a cycle to its settled state, recording the final
// totals handed over by the external reconciliation process. The ledger does
// not derive these from market data, but it refuses totals that do not
// reconcile: payout + reinvested + fee must equal the profit total.
func (s *PoolService) CloseCycle(ctx context.Context, cycleID string, input SettlementInput) (*models.FundCycle, error) {
	cycle, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	if cycle.Status == models.CycleStatusSettled {
		return nil, ErrCycleAlreadySettled
	}
	if input.Status == "" {
		input.Status = models.CycleStatusSettled
	}
	allocated := input.InvestorPayoutUSDT.Add(input.ReinvestedTotalUSDT).Add(input.PerformanceFeeUSDT)
	if allocated.Sub(input.ProfitTotalUSDT).Abs().GreaterThan(settlementEpsilon) {
		return nil, ErrSettlementImbalance
	}
	summary := input.PayoutSummary
	if len(summary) == 0 {
		summary = json.RawMessage(`{}`)
	}
	closedAt := input.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}
	var closed bool
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		closed, txErr = s.cycles.Close(ctx, tx, cycleID, cycle.Status, store.CycleSettlementInput{
			Status:              input.Status,
			ProfitTotalUSDT:     money.RoundAmount(input.ProfitTotalUSDT),
			InvestorPayoutUSDT:  money.RoundAmount(input.InvestorPayoutUSDT),
			ReinvestedTotalUSDT: money.RoundAmount(input.ReinvestedTotalUSDT),
			PerformanceFeeUSDT:  money.RoundAmount(input.PerformanceFeeUSDT),
			PayoutSummary:       summary,
			Notes:               input.Notes,
			ClosedAt:            closedAt,
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, ErrCycleAlreadySettled
	}
	s.log.Info().Str("cycle_id", cycleID).Str("status", input.Status).
		Str("profit_total", input.ProfitTotalUSDT.String()).Msg("cycle settled")
	return s.cycles.GetByID(ctx, cycleID)
}

type WithdrawalRequest struct {
	InvestorID           string
	CycleID              string
	AmountUSDT           decimal.Decimal
	NetAmountUSDT        decimal.Decimal
	ReinvestedAmountUSDT decimal.Decimal
	NoticeExpiresAt      *time.Time
}

// RequestWithdrawal opens a pending withdrawal. The net portion leaves the
// pool on fulfillment; the reinvested remainder stays. Both must sum to the
// requested amount.
func (s *PoolService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest, now time.Time) (*models.InvestorWithdrawal, error) {
	if !req.AmountUSDT.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.NetAmountUSDT.IsNegative() || req.ReinvestedAmountUSDT.IsNegative() {
		return nil, ErrAmountSplitMismatch
	}
	if !req.NetAmountUSDT.Add(req.ReinvestedAmountUSDT).Equal(req.AmountUSDT) {
		return nil, ErrAmountSplitMismatch
	}
	withdrawal := &models.InvestorWithdrawal{
		ID:                   uuid.NewString(),
		InvestorID:           req.InvestorID,
		CycleID:              req.CycleID,
		AmountUSDT:           money.RoundAmount(req.AmountUSDT),
		NetAmountUSDT:        money.RoundAmount(req.NetAmountUSDT),
		ReinvestedAmountUSDT: money.RoundAmount(req.ReinvestedAmountUSDT),
		Status:               models.WithdrawalStatusPending,
		RequestedAt:          now,
		NoticeExpiresAt:      req.NoticeExpiresAt,
	}
	err := s.withdrawals.Create(ctx, store.WithdrawalInput{
		ID:                   withdrawal.ID,
		InvestorID:           withdrawal.InvestorID,
		CycleID:              withdrawal.CycleID,
		AmountUSDT:           withdrawal.AmountUSDT,
		NetAmountUSDT:        withdrawal.NetAmountUSDT,
		ReinvestedAmountUSDT: withdrawal.ReinvestedAmountUSDT,
		Status:               withdrawal.Status,
		RequestedAt:          withdrawal.RequestedAt,
		NoticeExpiresAt:      withdrawal.NoticeExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("withdrawal_id", withdrawal.ID).Str("investor_id", req.InvestorID).
		Str("amount", withdrawal.AmountUSDT.String()).Msg("withdrawal requested")
	return withdrawal, nil
}

// legalTransitions is the withdrawal state machine: denied and fulfilled are
// terminal.
var legalTransitions = map[string][]string{
	models.WithdrawalStatusPending:  {models.WithdrawalStatusApproved, models.WithdrawalStatusDenied},
	models.WithdrawalStatusApproved: {models.WithdrawalStatusFulfilled},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type WithdrawalChange struct {
	Status     string
	AdminNotes *string
}

// UpdateWithdrawal applies an admin status transition. Illegal transitions
// are rejected, the update is guarded on the expected current status so a
// concurrent transition surfaces as a conflict, and fulfillment inside the
// notice window is refused. Returns nil when the id does not exist.
func (s *PoolService) UpdateWithdrawal(ctx context.Context, withdrawalID string, change WithdrawalChange, now time.Time) (*models.InvestorWithdrawal, error) {
	switch change.Status {
	case models.WithdrawalStatusApproved, models.WithdrawalStatusDenied, models.WithdrawalStatusFulfilled:
	default:
		return nil, ErrInvalidStatus
	}
	current, err := s.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !transitionAllowed(current.Status, change.Status) {
		return nil, ErrIllegalTransition
	}
	var fulfilledAt *time.Time
	if change.Status == models.WithdrawalStatusFulfilled {
		if current.NoticeExpiresAt != nil && now.Before(*current.NoticeExpiresAt) {
			return nil, ErrNoticeActive
		}
		fulfilledAt = &now
	}
	ok, err := s.withdrawals.UpdateStatus(ctx, withdrawalID, current.Status, change.Status, fulfilledAt, change.AdminNotes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTransitionConflict
	}
	// Approved and fulfilled withdrawals count against contributions.
	if change.Status == models.WithdrawalStatusApproved || change.Status == models.WithdrawalStatusFulfilled {
		if _, err := s.RecomputeShares(ctx, current.CycleID, now); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("withdrawal_id", withdrawalID).
		Str("from", current.Status).Str("to", change.Status).Msg("withdrawal transitioned")
	return s.withdrawals.GetByID(ctx, withdrawalID)
}

func (s *PoolService) FindWithdrawal(ctx context.Context, withdrawalID string) (*models.InvestorWithdrawal, error) {
	return s.withdrawals.GetByID(ctx, withdrawalID)
}

// ListInvestorDeposits returns an investor's capital events within one cycle.
func (s *PoolService) ListInvestorDeposits(ctx context.Context, investorID, cycleID string) ([]models.InvestorDeposit, error) {
	return s.deposits.ListByInvestorAndCycle(ctx, investorID, cycleID)
}

// ListInvestorWithdrawals returns an investor's withdrawal history across all
// cycles, newest first.
func (s *PoolService) ListInvestorWithdrawals(ctx context.Context, investorID string) ([]models.InvestorWithdrawal, error) {
	return s.withdrawals.ListByInvestor(ctx, investorID)
}

func validDepositType(depositType string) bool {
	switch depositType {
	case models.DepositTypeExternal, models.DepositTypeReinvestment,
		models.DepositTypeCarryover, models.DepositTypeAdjustment:
		return true
	}
	return false
}
