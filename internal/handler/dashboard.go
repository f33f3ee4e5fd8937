package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ddream/internal/service"
)

type DashboardHandler struct {
	View   *service.GameViewService
	Logger *zap.Logger
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/dashboard", h.dashboard)
}

// @Summary Dashboard totals and featured games
// @Tags dashboard
// @Success 200 {object} apiResponse
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) dashboard(c *gin.Context) {
	views := h.View.Snapshot()
	if len(views) == 0 {
		refreshed, err := h.View.Refresh(c.Request.Context())
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		views = refreshed
	}
	totals := service.Totals(views)

	featured, tvl, err := h.View.FeaturedGames(c.Request.Context())
	if err != nil {
		// Featured games come from the local cache; a failure there must
		// not take down the aggregate counters.
		if h.Logger != nil {
			h.Logger.Warn("featured games load failed", zap.Error(err))
		}
	} else {
		totals.TVL = tvl
	}

	Ok(c, gin.H{
		"totals":   totals,
		"featured": featured,
	}, nil)
}
