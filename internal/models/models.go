package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	CycleStatusActive            = "active"
	CycleStatusPendingSettlement = "pending_settlement"
	CycleStatusSettled           = "settled"
)

const (
	DepositTypeExternal     = "external"
	DepositTypeReinvestment = "reinvestment"
	DepositTypeCarryover    = "carryover"
	DepositTypeAdjustment   = "adjustment"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusDenied    = "denied"
	WithdrawalStatusFulfilled = "fulfilled"
)

const InvestorStatusActive = "active"

type Profile struct {
	ID          string    `db:"id" json:"id"`
	Role        string    `db:"role" json:"role"`
	TelegramID  *int64    `db:"telegram_id" json:"telegram_id,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Investor struct {
	ID        string    `db:"id" json:"id"`
	ProfileID string    `db:"profile_id" json:"profile_id"`
	Status    string    `db:"status" json:"status"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}

type FundCycle struct {
	ID                  string           `db:"id" json:"id"`
	CycleMonth          int              `db:"cycle_month" json:"cycle_month"`
	CycleYear           int              `db:"cycle_year" json:"cycle_year"`
	Status              string           `db:"status" json:"status"`
	ProfitTotalUSDT     *decimal.Decimal `db:"profit_total_usdt" json:"profit_total_usdt,omitempty"`
	InvestorPayoutUSDT  *decimal.Decimal `db:"investor_payout_usdt" json:"investor_payout_usdt,omitempty"`
	ReinvestedTotalUSDT *decimal.Decimal `db:"reinvested_total_usdt" json:"reinvested_total_usdt,omitempty"`
	PerformanceFeeUSDT  *decimal.Decimal `db:"performance_fee_usdt" json:"performance_fee_usdt,omitempty"`
	PayoutSummary       []byte           `db:"payout_summary" json:"payout_summary,omitempty"`
	Notes               *string          `db:"notes" json:"notes,omitempty"`
	OpenedAt            time.Time        `db:"opened_at" json:"opened_at"`
	ClosedAt            *time.Time       `db:"closed_at" json:"closed_at,omitempty"`
}

type InvestorDeposit struct {
	ID         string          `db:"id" json:"id"`
	InvestorID string          `db:"investor_id" json:"investor_id"`
	CycleID    string          `db:"cycle_id" json:"cycle_id"`
	AmountUSDT decimal.Decimal `db:"amount_usdt" json:"amount_usdt"`
	Type       string          `db:"deposit_type" json:"deposit_type"`
	TxHash     *string         `db:"tx_hash" json:"tx_hash,omitempty"`
	Notes      *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type InvestorWithdrawal struct {
	ID                   string          `db:"id" json:"id"`
	InvestorID           string          `db:"investor_id" json:"investor_id"`
	CycleID              string          `db:"cycle_id" json:"cycle_id"`
	AmountUSDT           decimal.Decimal `db:"amount_usdt" json:"amount_usdt"`
	NetAmountUSDT        decimal.Decimal `db:"net_amount_usdt" json:"net_amount_usdt"`
	ReinvestedAmountUSDT decimal.Decimal `db:"reinvested_amount_usdt" json:"reinvested_amount_usdt"`
	Status               string          `db:"status" json:"status"`
	RequestedAt          time.Time       `db:"requested_at" json:"requested_at"`
	NoticeExpiresAt      *time.Time      `db:"notice_expires_at" json:"notice_expires_at,omitempty"`
	FulfilledAt          *time.Time      `db:"fulfilled_at" json:"fulfilled_at,omitempty"`
	AdminNotes           *string         `db:"admin_notes" json:"admin_notes,omitempty"`
}

type InvestorShare struct {
	InvestorID       string          `db:"investor_id" json:"investor_id"`
	CycleID          string          `db:"cycle_id" json:"cycle_id"`
	SharePercentage  decimal.Decimal `db:"share_percentage" json:"share_percentage"`
	ContributionUSDT decimal.Decimal `db:"contribution_usdt" json:"contribution_usdt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
