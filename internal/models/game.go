package models

// GamePhase is the life-cycle stage of a game. It is authoritative
// on-chain and only ever moves forward.
type GamePhase string

const (
	PhaseStaking GamePhase = "staking"
	PhaseBonding GamePhase = "bonding"
	PhaseTrading GamePhase = "trading"
)

func (p GamePhase) Launched() bool {
	return p != "" && p != PhaseStaking
}

// GameRecord is the authoritative game row as reported by the controller
// contract. Contract starts as the staking contract and becomes the token
// contract at launch without changing address.
type GameRecord struct {
	Ticker   string    `json:"ticker"`
	Name     string    `json:"name"`
	Contract string    `json:"contract"`
	Phase    GamePhase `json:"phase"`
	Creator  string    `json:"creator,omitempty"`
}

// MarketSnapshot carries bonding-curve state for a launched game. It is
// derived per query and never cached.
type MarketSnapshot struct {
	SpotPrice   string `json:"spot_price"`
	Reserve     string `json:"reserve"`
	TotalSupply string `json:"total_supply"`
}

// GameView is the display record for one game: authoritative chain fields
// merged with whatever the local registry cache can contribute.
type GameView struct {
	Ticker   string    `json:"ticker"`
	Name     string    `json:"name"`
	Contract string    `json:"contract"`
	Phase    GamePhase `json:"phase"`
	Launched bool      `json:"launched"`
	Creator  string    `json:"creator,omitempty"`

	// From the local cache only.
	CreationTx string `json:"creation_tx,omitempty"`

	// Populated only when the game has left the staking phase.
	Price     string `json:"price,omitempty"`
	MarketCap string `json:"market_cap,omitempty"`
	Supply    string `json:"supply,omitempty"`
	Reserve   string `json:"reserve,omitempty"`

	// Staking-phase aggregate, when reported by game_data.
	TotalWeight string `json:"total_weight,omitempty"`

	Holders int `json:"holders,omitempty"`

	ExplorerContractURL string `json:"explorer_contract_url,omitempty"`
}

// DashboardTotals are simple reductions over the current game views,
// recomputed on every refresh.
type DashboardTotals struct {
	Games          int    `json:"games"`
	Launched       int    `json:"launched"`
	TotalMarketCap string `json:"total_market_cap"`
	TotalHolders   int    `json:"total_holders"`
	TVL            string `json:"tvl"`
}
