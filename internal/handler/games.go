package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ddream/internal/chain"
	"ddream/internal/models"
	"ddream/internal/registry"
	"ddream/internal/service"
	"ddream/internal/txbuilder"
)

type GamesHandler struct {
	View     *service.GameViewService
	Builder  *txbuilder.Builder
	Registry *registry.Store
	Chain    *chain.Client
	Explorer *chain.Explorer
	Logger   *zap.Logger
}

func (h *GamesHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/games")
	group.GET("", h.listGames)
	group.POST("", h.createGame)
	group.POST("/add", h.addExisting)
	group.GET("/:ticker", h.getGame)
	group.POST("/:ticker/launch", h.launchToken)
	group.POST("/:ticker/buy", h.buy)
	group.POST("/:ticker/sell", h.sell)
}

// @Summary List games with filtering and sorting
// @Tags games
// @Param q query string false "substring match on ticker or name"
// @Param status query string false "all | launched | unlaunched"
// @Param sort query string false "name | market_cap | price"
// @Param account query string false "filter to games created by account when mine=true"
// @Param mine query bool false "only games whose cached creator equals account"
// @Success 200 {object} apiResponse
// @Router /api/v1/games [get]
func (h *GamesHandler) listGames(c *gin.Context) {
	views, err := h.View.Refresh(c.Request.Context())
	if err != nil {
		// Serve the last snapshot when the chain is unreachable; an empty
		// snapshot means there is nothing useful to degrade to.
		views = h.View.Snapshot()
		if len(views) == 0 {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("game refresh failed, serving snapshot", zap.Error(err))
		}
	}

	opts := service.ListOptions{
		Search:  c.Query("q"),
		Status:  strings.TrimSpace(c.Query("status")),
		SortBy:  strings.TrimSpace(c.Query("sort")),
		Account: strings.TrimSpace(c.Query("account")),
		Mine:    c.Query("mine") == "true",
	}
	filtered := service.FilterSort(views, opts)
	totals := service.Totals(views)
	Ok(c, filtered, map[string]any{
		"total":            totals.Games,
		"launched":         totals.Launched,
		"total_market_cap": totals.TotalMarketCap,
	})
}

// @Summary Game detail with live market snapshot
// @Tags games
// @Param ticker path string true "game ticker"
// @Param account query string false "include this account's token balance"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker} [get]
func (h *GamesHandler) getGame(c *gin.Context) {
	ticker := chain.NormalizeTicker(c.Param("ticker"))
	record, err := h.Chain.GameInfo(c.Request.Context(), ticker)
	if err != nil {
		if chain.IsAbsence(err) {
			Error(c, http.StatusNotFound, "game not found", nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	view := models.GameView{
		Ticker:   record.Ticker,
		Name:     record.Name,
		Contract: record.Contract,
		Phase:    record.Phase,
		Launched: record.Phase.Launched(),
		Creator:  record.Creator,
	}
	if meta, ok := h.Registry.Get(c.Request.Context(), ticker); ok {
		view.CreationTx = meta.CreationTx
		if view.Creator == "" {
			view.Creator = meta.Creator
		}
	}
	if h.Explorer != nil {
		view.ExplorerContractURL = h.Explorer.AddressURL(view.Contract)
	}

	var snapshot *models.MarketSnapshot
	if view.Launched && view.Contract != "" {
		// The market snapshot is never cached; curve state moves on every
		// trade.
		curve, err := h.Chain.CurveInfo(c.Request.Context(), view.Contract)
		if err == nil {
			snapshot = &models.MarketSnapshot{
				SpotPrice:   curve.SpotPrice,
				Reserve:     curve.Reserve,
				TotalSupply: curve.Supply,
			}
			view.Price = curve.SpotPrice
			view.Reserve = curve.Reserve
			view.Supply = curve.Supply
		} else if !chain.IsAbsence(err) && !chain.IsPhaseMismatch(err) && h.Logger != nil {
			h.Logger.Warn("curve query failed", zap.String("ticker", ticker), zap.Error(err))
		}
		if info, err := h.Chain.TokenInfo(c.Request.Context(), view.Contract); err == nil && snapshot != nil {
			snapshot.TotalSupply = info.TotalSupply
			view.Supply = info.TotalSupply
		}
	}

	// The caller's game-token balance rides along when an account is
	// given, so the trading form can render a sell ceiling.
	var balance string
	if account := strings.TrimSpace(c.Query("account")); account != "" && view.Launched && view.Contract != "" {
		if bal, err := h.Chain.TokenBalance(c.Request.Context(), view.Contract, account); err == nil {
			balance = bal.Balance
		}
	}
	Ok(c, gin.H{"game": view, "market": snapshot, "balance": balance}, nil)
}

type createGameRequest struct {
	Account string `json:"account" binding:"required"`
	Ticker  string `json:"ticker" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// @Summary Create a new game
// @Tags games
// @Accept json
// @Param request body createGameRequest true "create request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games [post]
func (h *GamesHandler) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ticker := chain.NormalizeTicker(req.Ticker)
	result, err := h.Builder.CreateGame(c.Request.Context(), req.Account, ticker, req.Name)
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}

	// Cache the created game so it shows up in locally indexed views even
	// before anyone re-lists. The authoritative lookup can fail right
	// after creation; fall back to what we already know.
	meta := models.CachedGameMeta{
		Ticker:     ticker,
		Name:       req.Name,
		Creator:    req.Account,
		CreationTx: result.TxHash,
	}
	if record, err := h.Chain.GameInfo(c.Request.Context(), ticker); err == nil {
		meta.Name = record.Name
		meta.Contract = record.Contract
		if record.Creator != "" {
			meta.Creator = record.Creator
		}
	} else if h.Logger != nil {
		h.Logger.Warn("post-create lookup failed", zap.String("ticker", ticker), zap.Error(err))
	}
	if err := h.Registry.Put(c.Request.Context(), meta); err != nil && h.Logger != nil {
		h.Logger.Warn("registry put failed", zap.String("ticker", ticker), zap.Error(err))
	}

	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
		"ticker":       ticker,
	}, nil)
}

type launchRequest struct {
	Account string `json:"account" binding:"required"`
	Fair    bool   `json:"fair"`
}

// @Summary Launch a game's token onto the bonding curve
// @Tags games
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body launchRequest true "launch request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/launch [post]
func (h *GamesHandler) launchToken(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ticker := chain.NormalizeTicker(c.Param("ticker"))

	var result *chain.ExecResult
	var err error
	if req.Fair {
		result, err = h.Builder.FairLaunch(c.Request.Context(), req.Account, ticker)
	} else {
		result, err = h.Builder.LaunchToken(c.Request.Context(), req.Account, ticker)
	}
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
	}, nil)
}

type addGameRequest struct {
	Ticker string `json:"ticker" binding:"required"`
}

// @Summary Register an existing on-chain game in the local cache
// @Tags games
// @Accept json
// @Param request body addGameRequest true "add request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/add [post]
func (h *GamesHandler) addExisting(c *gin.Context) {
	var req addGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ticker := chain.NormalizeTicker(req.Ticker)
	if err := chain.ValidateTicker(ticker); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	// Only cache after an authoritative lookup succeeds.
	record, err := h.Chain.GameInfo(c.Request.Context(), ticker)
	if err != nil {
		if chain.IsAbsence(err) {
			Error(c, http.StatusNotFound, "game \""+ticker+"\" not found on chain", nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := models.CachedGameMeta{
		Ticker:   ticker,
		Name:     record.Name,
		Contract: record.Contract,
		Creator:  record.Creator,
	}
	if err := h.Registry.Put(c.Request.Context(), meta); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"ticker": ticker, "name": record.Name, "phase": record.Phase}, nil)
}

type tradeRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// @Summary Buy game tokens on the bonding curve
// @Tags trading
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body tradeRequest true "trade request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/buy [post]
func (h *GamesHandler) buy(c *gin.Context) {
	h.trade(c, h.Builder.Buy)
}

// @Summary Sell (burn) game tokens back into the curve
// @Tags trading
// @Accept json
// @Param ticker path string true "game ticker"
// @Param request body tradeRequest true "trade request"
// @Success 200 {object} apiResponse
// @Router /api/v1/games/{ticker}/sell [post]
func (h *GamesHandler) sell(c *gin.Context) {
	h.trade(c, h.Builder.Sell)
}

func (h *GamesHandler) trade(c *gin.Context, submit func(ctx context.Context, sender, contract, amount string) (*chain.ExecResult, error)) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ticker := chain.NormalizeTicker(c.Param("ticker"))
	record, err := h.Chain.GameInfo(c.Request.Context(), ticker)
	if err != nil {
		if chain.IsAbsence(err) {
			Error(c, http.StatusNotFound, "game not found", nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if !record.Phase.Launched() {
		Error(c, http.StatusConflict, "token not launched yet; trading unavailable in the staking phase", nil)
		return
	}
	result, err := submit(c.Request.Context(), req.Account, record.Contract, req.Amount)
	if err != nil {
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"tx_hash":      result.TxHash,
		"explorer_url": h.Explorer.TxURL(result.TxHash),
	}, nil)
}
