package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ddream/internal/chain"
	"ddream/internal/models"
	"ddream/internal/registry"
)

// GameViewService merges authoritative chain state with the local
// registry cache into display-ready game views. The chain always wins on
// phase and every numeric field; the cache only contributes creator and
// creation-tx metadata the chain does not index.
type GameViewService struct {
	Chain    *chain.Client
	Registry *registry.Store
	Explorer *chain.Explorer
	Logger   *zap.Logger

	PageLimit      int
	FeaturedLimit  int
	TVLMemberLimit int

	mu        sync.RWMutex
	snapshot  []models.GameView
	refreshed time.Time
}

type ListOptions struct {
	Search  string
	Status  string // all | launched | unlaunched
	SortBy  string // name | market_cap | price
	Account string
	Mine    bool
}

// Refresh re-reads the controller's game listing and rebuilds the
// in-memory snapshot. A failure leaves the previous snapshot in place.
func (s *GameViewService) Refresh(ctx context.Context) ([]models.GameView, error) {
	data, err := s.Chain.GameData(ctx, true, "", s.PageLimit)
	if err != nil {
		return nil, err
	}
	cached := s.Registry.All(ctx)

	views := make([]models.GameView, 0, len(data.Games))
	for _, datum := range data.Games {
		views = append(views, s.buildView(datum, cached))
	}

	s.mu.Lock()
	s.snapshot = views
	s.refreshed = time.Now().UTC()
	s.mu.Unlock()

	return views, nil
}

func (s *GameViewService) buildView(datum chain.GameDatum, cached map[string]models.CachedGameMeta) models.GameView {
	info := datum.GameInfo
	view := models.GameView{
		Ticker:   info.Symbol,
		Name:     info.Name,
		Contract: info.Contract,
		Phase:    info.Phase,
		Launched: info.Phase.Launched(),
		Creator:  info.Creator,
	}
	if meta, ok := cached[view.Ticker]; ok {
		// Cache contributes only what the chain does not return.
		view.CreationTx = meta.CreationTx
		if view.Creator == "" {
			view.Creator = meta.Creator
		}
		if view.Name == "" {
			view.Name = meta.Name
		}
	}
	if datum.State != nil {
		if curve := datum.State.Token; curve != nil {
			view.Price = curve.SpotPrice
			view.Supply = curve.Supply
			view.Reserve = curve.Reserve
			view.MarketCap = marketCap(curve.Supply, curve.SpotPrice)
		}
		if staking := datum.State.Staking; staking != nil {
			view.TotalWeight = decimal.NewFromInt(staking.Weight).String()
		}
	}
	if s.Explorer != nil {
		view.ExplorerContractURL = s.Explorer.AddressURL(view.Contract)
	}
	return view
}

// marketCap is supply times spot price, a plain product with no rounding
// guarantee beyond the inputs' own precision.
func marketCap(supply, price string) string {
	s, err := decimal.NewFromString(supply)
	if err != nil {
		return ""
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return ""
	}
	return s.Mul(p).String()
}

// Snapshot returns the most recent refresh result without touching the
// chain.
func (s *GameViewService) Snapshot() []models.GameView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GameView, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// FilterSort applies the games-listing contract: substring search over
// ticker and name, status and creator filters, then a stable sort on the
// chosen key with missing numerics ranked as zero.
func FilterSort(views []models.GameView, opts ListOptions) []models.GameView {
	filtered := make([]models.GameView, 0, len(views))
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, v := range views {
		if opts.Mine && (opts.Account == "" || v.Creator != opts.Account) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(v.Ticker), search) &&
			!strings.Contains(strings.ToLower(v.Name), search) {
			continue
		}
		switch opts.Status {
		case "launched":
			if !v.Launched {
				continue
			}
		case "unlaunched":
			if v.Launched {
				continue
			}
		}
		filtered = append(filtered, v)
	}

	switch opts.SortBy {
	case "market_cap":
		sort.SliceStable(filtered, func(i, j int) bool {
			return numericOrZero(filtered[i].MarketCap).GreaterThan(numericOrZero(filtered[j].MarketCap))
		})
	case "price":
		sort.SliceStable(filtered, func(i, j int) bool {
			return numericOrZero(filtered[i].Price).GreaterThan(numericOrZero(filtered[j].Price))
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Name < filtered[j].Name
		})
	}
	return filtered
}

func numericOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Totals reduces a set of views to the dashboard counters. Missing
// values count as zero; nothing here is incrementally maintained.
func Totals(views []models.GameView) models.DashboardTotals {
	totals := models.DashboardTotals{Games: len(views)}
	capSum := decimal.Zero
	for _, v := range views {
		if v.Launched {
			totals.Launched++
		}
		capSum = capSum.Add(numericOrZero(v.MarketCap))
		totals.TotalHolders += v.Holders
	}
	totals.TotalMarketCap = capSum.String()
	return totals
}

// FeaturedGames walks the locally known tickers, re-queries each game,
// and computes protocol TVL: member stakes for staking-phase games,
// curve reserve for launched ones. The per-member summation is a serial
// loop over a capped member page; that cap is a known scale limit of the
// member-listing query, not something to paper over here.
func (s *GameViewService) FeaturedGames(ctx context.Context) ([]models.GameView, string, error) {
	tickers := s.Registry.List(ctx)
	if s.FeaturedLimit > 0 && len(tickers) > s.FeaturedLimit {
		tickers = tickers[:s.FeaturedLimit]
	}
	cached := s.Registry.All(ctx)

	tvl := decimal.Zero
	featured := make([]models.GameView, 0, len(tickers))
	for _, ticker := range tickers {
		record, err := s.Chain.GameInfo(ctx, ticker)
		if err != nil {
			// A single game's failure must not abort the rest.
			if s.Logger != nil && !chain.IsAbsence(err) {
				s.Logger.Warn("featured game lookup failed",
					zap.String("ticker", ticker), zap.Error(err))
			}
			continue
		}
		view := models.GameView{
			Ticker:   record.Ticker,
			Name:     record.Name,
			Contract: record.Contract,
			Phase:    record.Phase,
			Launched: record.Phase.Launched(),
			Creator:  record.Creator,
		}
		if view.Ticker == "" {
			view.Ticker = ticker
		}
		if meta, ok := cached[ticker]; ok {
			if view.Name == "" {
				view.Name = meta.Name
			}
			view.CreationTx = meta.CreationTx
		}
		if record.Contract != "" {
			if view.Launched {
				if curve, err := s.Chain.CurveInfo(ctx, record.Contract); err == nil {
					view.Price = curve.SpotPrice
					view.Supply = curve.Supply
					view.Reserve = curve.Reserve
					view.MarketCap = marketCap(curve.Supply, curve.SpotPrice)
					tvl = tvl.Add(numericOrZero(curve.Reserve))
				}
			} else {
				staked := s.sumMemberStakes(ctx, record.Contract)
				tvl = tvl.Add(staked)
			}
		}
		featured = append(featured, view)
	}
	return featured, tvl.String(), nil
}

func (s *GameViewService) sumMemberStakes(ctx context.Context, contract string) decimal.Decimal {
	total := decimal.Zero
	members, err := s.Chain.ListMembers(ctx, contract, s.TVLMemberLimit, "")
	if err != nil {
		return total
	}
	for _, member := range members.Members {
		staked, err := s.Chain.Staked(ctx, contract, member.Addr)
		if err != nil {
			continue
		}
		total = total.Add(numericOrZero(staked.Stake))
	}
	return total
}
