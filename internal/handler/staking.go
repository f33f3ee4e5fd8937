package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ddream/internal/chain"
	"ddream/internal/models"
	"ddream/internal/service"
	"ddream/internal/txbuilder"
)

type StakingHandler struct {
	View     *service.StakingViewService
	Builder  *txbuilder.Builder
	Chain    *chain.Client
	Explorer *chain.Explorer
	Logger   *zap.Logger
}

func (h *StakingHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/games/:ticker/staking")
	group.GET("", h.stakingView)
	group.POST("/stake", h.stake)
	group.POST("/unstake", h.unstake)
	group.POST("/claim", h.claim)
}

// @Summary Per-account staking view for one game
// @Tags staking
// @Param ticker path string true "game ticker"
// @Param account query string true "account address"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/staking [get]
func (h *StakingHandler) stakingView(c *gin.Context) {
	account := strings.TrimSpace(c.Query("account"))
	if account == "" {
		Error(c, http.StatusBadRequest, "account is required", nil)
		return
	}
	ticker := chain.NormalizeTicker(c.Param("ticker"))
	view, err := h.View.View(c.Request.Context(), ticker, account)
	if err != nil {
		switch {
		case errors.Is(err, chain.ErrBusy):
			Error(c, http.StatusConflict, "staking data refresh already in progress", nil)
		case chain.IsAbsence(err):
			Error(c, http.StatusNotFound, "game not found", nil)
		default:
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return
	}
	Ok(c, view, nil)
}

type stakeRequest struct {
	Account  string `json:"account" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Referrer string `json:"referrer"`
}

// @Summary Stake native tokens into a game
// @Tags staking
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body stakeRequest true "stake request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/staking/stake [post]
func (h *StakingHandler) stake(c *gin.Context) {
	var req stakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	record, ok := h.stakeableGame(c)
	if !ok {
		return
	}
	result, err := h.Builder.Stake(c.Request.Context(), req.Account, record.Contract, req.Amount, req.Referrer)
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
	}, nil)
}

type unstakeRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// @Summary Start unbonding a staked amount
// @Tags staking
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body unstakeRequest true "unstake request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/staking/unstake [post]
func (h *StakingHandler) unstake(c *gin.Context) {
	var req unstakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	record, ok := h.stakeableGame(c)
	if !ok {
		return
	}
	result, err := h.Builder.Unstake(c.Request.Context(), req.Account, record.Contract, req.Amount)
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
	}, nil)
}

type claimRequest struct {
	Account string `json:"account" binding:"required"`
}

// @Summary Claim all matured unbonds in one call
// @Tags staking
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body claimRequest true "claim request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/staking/claim [post]
func (h *StakingHandler) claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	record, ok := h.stakeableGame(c)
	if !ok {
		return
	}
	result, err := h.Builder.ClaimAll(c.Request.Context(), req.Account, record.Contract)
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
	}, nil)
}

// stakeableGame resolves the path ticker to a game that is still in its
// staking phase, writing the error response itself when it is not.
func (h *StakingHandler) stakeableGame(c *gin.Context) (*models.GameRecord, bool) {
	ticker := chain.NormalizeTicker(c.Param("ticker"))
	game, err := h.Chain.GameInfo(c.Request.Context(), ticker)
	if err != nil {
		if chain.IsAbsence(err) {
			Error(c, http.StatusNotFound, "game not found", nil)
		} else {
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return nil, false
	}
	if game.Phase.Launched() {
		Error(c, http.StatusConflict, "token already launched; staking is closed for this game", nil)
		return nil, false
	}
	if game.Contract == "" {
		Error(c, http.StatusBadGateway, "game contract address missing", nil)
		return nil, false
	}
	return game, true
}

// statusFor maps builder errors to response codes: validation failures
// are the caller's problem, everything else is surfaced verbatim as a
// gateway failure so the UI can show the rejection text.
func statusFor(err error) int {
	var qe *chain.QueryError
	switch {
	case errors.As(err, &qe):
		return http.StatusBadGateway
	case errors.Is(err, chain.ErrUnavailable), errors.Is(err, chain.ErrPhaseMismatch):
		return http.StatusConflict
	case isValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func isValidation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "minimum stake") ||
		strings.Contains(msg, "amount must be positive")
}
