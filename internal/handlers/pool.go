package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"poolledger/internal/middleware"
	"poolledger/internal/services"
	"poolledger/internal/validator"

	"github.com/go-chi/chi/v5"
)

// Me returns the caller's investor record, the active cycle and the caller's
// current share, bootstrapping investor and cycle on first interaction.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		h.log.Error().Err(err).Msg("ensure investor failed")
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	cycle, err := h.service.EnsureActiveCycle(r.Context(), now)
	if err != nil {
		h.log.Error().Err(err).Msg("ensure cycle failed")
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	share, err := h.shares.GetByInvestorAndCycle(r.Context(), investor.ID, cycle.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load share")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"investor": investor,
		"cycle":    cycle,
		"share":    share,
	})
}

func (h *Handler) ActiveCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.service.GetActiveCycle(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	if cycle == nil {
		respondError(w, http.StatusNotFound, "no active cycle")
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

type depositRequest struct {
	Amount string  `json:"amount_usdt"`
	Type   string  `json:"deposit_type"`
	TxHash *string `json:"tx_hash"`
	Notes  *string `json:"notes"`
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := validator.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	cycle, err := h.service.EnsureActiveCycle(r.Context(), now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	deposit, result, err := h.service.RecordDeposit(r.Context(), services.DepositRequest{
		InvestorID: investor.ID,
		CycleID:    cycle.ID,
		AmountUSDT: amount,
		Type:       req.Type,
		TxHash:     req.TxHash,
		Notes:      req.Notes,
	}, now)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidDepositType):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("deposit failed")
			respondError(w, http.StatusInternalServerError, "deposit failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"deposit":            deposit,
		"total_contribution": result.TotalContribution,
		"shares":             result.Records,
	})
}

type withdrawalRequest struct {
	Amount           string     `json:"amount_usdt"`
	NetAmount        string     `json:"net_amount_usdt"`
	ReinvestedAmount string     `json:"reinvested_amount_usdt"`
	NoticeExpiresAt  *time.Time `json:"notice_expires_at"`
}

func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := validator.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	netAmount, err := validator.ParseOptionalAmount(req.NetAmount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reinvested, err := validator.ParseOptionalAmount(req.ReinvestedAmount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Full cash-out unless the caller names a split.
	if req.NetAmount == "" && req.ReinvestedAmount == "" {
		netAmount = amount
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	cycle, err := h.service.EnsureActiveCycle(r.Context(), now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	notice := req.NoticeExpiresAt
	if notice == nil && h.cfg.NoticePeriod > 0 {
		expires := now.Add(h.cfg.NoticePeriod)
		notice = &expires
	}
	withdrawal, err := h.service.RequestWithdrawal(r.Context(), services.WithdrawalRequest{
		InvestorID:           investor.ID,
		CycleID:              cycle.ID,
		AmountUSDT:           amount,
		NetAmountUSDT:        netAmount,
		ReinvestedAmountUSDT: reinvested,
		NoticeExpiresAt:      notice,
	}, now)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrAmountSplitMismatch):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("withdrawal request failed")
			respondError(w, http.StatusInternalServerError, "withdrawal request failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, withdrawal)
}

// MyDeposits lists the caller's deposits within the active cycle.
func (h *Handler) MyDeposits(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	cycle, err := h.service.EnsureActiveCycle(r.Context(), now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cycle")
		return
	}
	deposits, err := h.service.ListInvestorDeposits(r.Context(), investor.ID, cycle.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load deposits")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cycle":    cycle,
		"deposits": deposits,
	})
}

// MyWithdrawals lists the caller's withdrawal history across all cycles.
func (h *Handler) MyWithdrawals(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	withdrawals, err := h.service.ListInvestorWithdrawals(r.Context(), investor.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load withdrawals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"withdrawals": withdrawals})
}

func (h *Handler) GetWithdrawal(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	withdrawal, err := h.service.FindWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load withdrawal")
		return
	}
	if withdrawal == nil {
		respondError(w, http.StatusNotFound, "withdrawal not found")
		return
	}
	now := time.Now().UTC()
	investor, err := h.service.EnsureInvestor(r.Context(), profile.ID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load investor")
		return
	}
	if withdrawal.InvestorID != investor.ID {
		isAdmin, err := h.admin.RequireAdmin(r.Context(), profile.ID)
		if err != nil || !isAdmin {
			respondError(w, http.StatusForbidden, "not your withdrawal")
			return
		}
	}
	respondJSON(w, http.StatusOK, withdrawal)
}
