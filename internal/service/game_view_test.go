package service

import (
	"encoding/json"
	"testing"

	"ddream/internal/chain"
	"ddream/internal/models"
)

func gameViews() []models.GameView {
	return []models.GameView{
		{Ticker: "ALPHA", Name: "Alpha Quest", Phase: models.PhaseTrading, Launched: true, MarketCap: "50", Price: "0.5", Creator: "xion1alice"},
		{Ticker: "BETA", Name: "Beta Blast", Phase: models.PhaseStaking, Creator: "xion1bob"},
		{Ticker: "GAMMA", Name: "Gamma Rush", Phase: models.PhaseBonding, Launched: true, MarketCap: "100", Price: "2", Creator: "xion1alice"},
	}
}

func TestFilterSortByMarketCap(t *testing.T) {
	got := FilterSort(gameViews(), ListOptions{SortBy: "market_cap"})
	if len(got) != 3 {
		t.Fatalf("expected 3 views, got %d", len(got))
	}
	// Descending, with the missing market cap ranked as zero, last.
	want := []string{"GAMMA", "ALPHA", "BETA"}
	for i, ticker := range want {
		if got[i].Ticker != ticker {
			t.Fatalf("position %d = %s, want %s", i, got[i].Ticker, ticker)
		}
	}
}

func TestFilterSortDefaultIsNameAscending(t *testing.T) {
	got := FilterSort(gameViews(), ListOptions{})
	want := []string{"ALPHA", "BETA", "GAMMA"}
	for i, ticker := range want {
		if got[i].Ticker != ticker {
			t.Fatalf("position %d = %s, want %s", i, got[i].Ticker, ticker)
		}
	}
}

func TestFilterSortStatus(t *testing.T) {
	launched := FilterSort(gameViews(), ListOptions{Status: "launched"})
	if len(launched) != 2 {
		t.Fatalf("launched: expected 2, got %d", len(launched))
	}
	unlaunched := FilterSort(gameViews(), ListOptions{Status: "unlaunched"})
	if len(unlaunched) != 1 || unlaunched[0].Ticker != "BETA" {
		t.Fatalf("unlaunched: got %+v", unlaunched)
	}
}

func TestFilterSortSearch(t *testing.T) {
	got := FilterSort(gameViews(), ListOptions{Search: "blast"})
	if len(got) != 1 || got[0].Ticker != "BETA" {
		t.Fatalf("search by name: got %+v", got)
	}
	got = FilterSort(gameViews(), ListOptions{Search: "gam"})
	if len(got) != 1 || got[0].Ticker != "GAMMA" {
		t.Fatalf("search by ticker: got %+v", got)
	}
}

func TestFilterSortMine(t *testing.T) {
	got := FilterSort(gameViews(), ListOptions{Mine: true, Account: "xion1alice"})
	if len(got) != 2 {
		t.Fatalf("mine: expected 2, got %d", len(got))
	}
	for _, v := range got {
		if v.Creator != "xion1alice" {
			t.Fatalf("mine returned foreign game %s", v.Ticker)
		}
	}
	// Mine without an account matches nothing rather than everything.
	if got := FilterSort(gameViews(), ListOptions{Mine: true}); len(got) != 0 {
		t.Fatalf("mine without account: got %+v", got)
	}
}

func TestTotals(t *testing.T) {
	views := gameViews()
	views[0].Holders = 10
	views[2].Holders = 7
	totals := Totals(views)
	if totals.Games != 3 || totals.Launched != 2 {
		t.Fatalf("counts: %+v", totals)
	}
	if totals.TotalMarketCap != "150" {
		t.Fatalf("market cap sum = %s, want 150", totals.TotalMarketCap)
	}
	if totals.TotalHolders != 17 {
		t.Fatalf("holders = %d, want 17", totals.TotalHolders)
	}
}

func TestBuildViewLivePhaseWinsOverCache(t *testing.T) {
	var datum chain.GameDatum
	payload := `{
		"game_info": {"name": "Space Race", "symbol": "SPACE", "contract": "xion1game", "phase": "bonding"},
		"state": {"token": {"reserve": "1000", "supply": "2000", "spot_price": "0.5"}}
	}`
	if err := json.Unmarshal([]byte(payload), &datum); err != nil {
		t.Fatalf("unmarshal datum: %v", err)
	}
	cached := map[string]models.CachedGameMeta{
		"SPACE": {
			Ticker:        "SPACE",
			Name:          "Stale Name",
			Creator:       "xion1creator",
			CreationTx:    "TX123",
			TokenLaunched: false, // stale belief: still staking
		},
	}

	svc := &GameViewService{}
	view := svc.buildView(datum, cached)

	if view.Phase != models.PhaseBonding || !view.Launched {
		t.Fatalf("live phase must win: got phase=%s launched=%v", view.Phase, view.Launched)
	}
	// Chain-provided name beats the cached one; cache still contributes
	// what the chain lacks.
	if view.Name != "Space Race" {
		t.Fatalf("name = %s, want Space Race", view.Name)
	}
	if view.CreationTx != "TX123" || view.Creator != "xion1creator" {
		t.Fatalf("cache contributions missing: %+v", view)
	}
	if view.MarketCap != "1000" {
		t.Fatalf("market cap = %s, want 1000", view.MarketCap)
	}
}

func TestMarketCap(t *testing.T) {
	if got := marketCap("1000", "0.5"); got != "500" {
		t.Fatalf("marketCap = %s, want 500", got)
	}
	if got := marketCap("", "0.5"); got != "" {
		t.Fatalf("missing supply should yield empty, got %s", got)
	}
}
