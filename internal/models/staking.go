package models

// StakingPosition exists only while the game is in the staking phase.
// A nil position means "unavailable", not zero.
type StakingPosition struct {
	Stake string `json:"stake"`
	Denom string `json:"denom"`

	// Stake in whole tokens, for display.
	StakeDisplay string `json:"stake_display,omitempty"`
}

// ReleaseAt is the claim release condition: exactly one of the fields is
// set. AtTime is nanoseconds since epoch as reported by the contract.
type ReleaseAt struct {
	AtHeight *int64    `json:"at_height,omitempty"`
	AtTime   *string   `json:"at_time,omitempty"`
	Never    *struct{} `json:"never,omitempty"`
}

// Claim is one pending unbond for an account.
type Claim struct {
	Amount    string    `json:"amount"`
	ReleaseAt ReleaseAt `json:"release_at"`
}

// ClaimView is a Claim plus the derived readiness badge and, for
// height-gated claims, a wall-clock release estimate.
type ClaimView struct {
	Claim
	Ready bool `json:"ready"`

	// RFC3339 estimate for at-height releases, derived from the current
	// height and a nominal block time. Display-only.
	EstimatedRelease string `json:"estimated_release,omitempty"`
}

type Member struct {
	Addr      string `json:"addr"`
	Weight    int64  `json:"weight"`
	RefWeight string `json:"ref_weight,omitempty"`

	// Truncated form of Addr, filled in for display lists.
	Display string `json:"display,omitempty"`
}

// StakingView is the per-game, per-account staking reconciliation result.
type StakingView struct {
	Ticker   string    `json:"ticker"`
	Contract string    `json:"contract"`
	Phase    GamePhase `json:"phase"`

	// False once the game has launched or the contract has migrated; the
	// remaining fields are then absent rather than zero.
	StakingAvailable bool   `json:"staking_available"`
	Notice           string `json:"notice,omitempty"`

	Position       *StakingPosition `json:"position,omitempty"`
	Claims         []ClaimView      `json:"claims,omitempty"`
	TotalUnbonding string           `json:"total_unbonding,omitempty"`
	ReadyToClaim   string           `json:"ready_to_claim,omitempty"`

	YourWeight     string   `json:"your_weight,omitempty"`
	ReferralWeight string   `json:"referral_weight,omitempty"`
	TotalWeight    string   `json:"total_weight,omitempty"`
	TotalStakers   int      `json:"total_stakers,omitempty"`
	TopStakers     []Member `json:"top_stakers,omitempty"`

	Balance        string `json:"balance,omitempty"`
	BalanceDisplay string `json:"balance_display,omitempty"`
}
