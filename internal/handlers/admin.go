package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"poolledger/internal/services"
	"poolledger/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) CycleShares(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	cycle, err := h.service.GetCycle(r.Context(), cycleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	if cycle == nil {
		respondError(w, http.StatusNotFound, "cycle not found")
		return
	}
	shares, err := h.shares.ListByCycle(r.Context(), cycleID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load shares")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cycle":  cycle,
		"shares": shares,
	})
}

func (h *Handler) RecomputeCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	result, err := h.service.RecomputeShares(r.Context(), cycleID, time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Str("cycle_id", cycleID).Msg("recompute failed")
		respondError(w, http.StatusInternalServerError, "recompute failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_contribution": result.TotalContribution,
		"shares":             result.Records,
	})
}

type settleRequest struct {
	Status           string          `json:"status"`
	ProfitTotal      string          `json:"profit_total_usdt"`
	InvestorPayout   string          `json:"investor_payout_usdt"`
	ReinvestedTotal  string          `json:"reinvested_total_usdt"`
	PerformanceFee   string          `json:"performance_fee_usdt"`
	PayoutSummary    json.RawMessage `json:"payout_summary"`
	Notes            *string         `json:"notes"`
}

func (h *Handler) SettleCycle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	profit, err := parseSettlementAmount(req.ProfitTotal)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid profit_total_usdt")
		return
	}
	payout, err := parseSettlementAmount(req.InvestorPayout)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid investor_payout_usdt")
		return
	}
	reinvested, err := parseSettlementAmount(req.ReinvestedTotal)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid reinvested_total_usdt")
		return
	}
	fee, err := parseSettlementAmount(req.PerformanceFee)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid performance_fee_usdt")
		return
	}
	cycle, err := h.service.CloseCycle(r.Context(), chi.URLParam(r, "id"), services.SettlementInput{
		Status:              req.Status,
		ProfitTotalUSDT:     profit,
		InvestorPayoutUSDT:  payout,
		ReinvestedTotalUSDT: reinvested,
		PerformanceFeeUSDT:  fee,
		PayoutSummary:       req.PayoutSummary,
		Notes:               req.Notes,
		ClosedAt:            time.Now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCycleNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrCycleAlreadySettled):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrSettlementImbalance):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Msg("settlement failed")
			respondError(w, http.StatusInternalServerError, "settlement failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

type withdrawalStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes"`
}

func (h *Handler) UpdateWithdrawalStatus(w http.ResponseWriter, r *http.Request) {
	var req withdrawalStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	withdrawal, err := h.service.UpdateWithdrawal(r.Context(), chi.URLParam(r, "id"), services.WithdrawalChange{
		Status:     req.Status,
		AdminNotes: req.AdminNotes,
	}, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrIllegalTransition):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrTransitionConflict):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrNoticeActive):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Msg("withdrawal update failed")
			respondError(w, http.StatusInternalServerError, "withdrawal update failed")
		}
		return
	}
	if withdrawal == nil {
		respondError(w, http.StatusNotFound, "withdrawal not found")
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

// Settlement totals default to zero when omitted; negatives are legitimate
// (a losing month records a negative profit total).
func parseSettlementAmount(input string) (decimal.Decimal, error) {
	if input == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, validator.ErrInvalidAmount
	}
	return amount, nil
}
