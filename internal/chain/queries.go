package chain

import "ddream/internal/models"

// Contract query variants, one closed struct per contract family.
// Exactly one field is set per query; the wire form is the usual
// single-key JSON object CosmWasm contracts expect.

// Controller family (game registry).
type controllerQuery struct {
	GameInfo *gameInfoQuery `json:"game_info,omitempty"`
	GameData *gameDataQuery `json:"game_data,omitempty"`
	Account  *accountQuery  `json:"account,omitempty"`
}

type gameInfoQuery struct {
	Ticker string `json:"ticker"`
}

type gameDataQuery struct {
	WithState  bool   `json:"with_state"`
	StartAfter string `json:"start_after,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type accountQuery struct {
	Owner string `json:"owner"`
}

// Staking family (pre-launch game contract).
type stakingQuery struct {
	Staked      *addressQuery     `json:"staked,omitempty"`
	Claims      *addressQuery     `json:"claims,omitempty"`
	Member      *memberQuery      `json:"member,omitempty"`
	ListMembers *listMembersQuery `json:"list_members,omitempty"`
	TotalWeight *struct{}         `json:"total_weight,omitempty"`
}

type addressQuery struct {
	Address string `json:"address"`
}

type memberQuery struct {
	Addr string `json:"addr"`
}

type listMembersQuery struct {
	Limit      int    `json:"limit,omitempty"`
	StartAfter string `json:"start_after,omitempty"`
}

// Token family (post-launch game contract).
type tokenQuery struct {
	TokenInfo *struct{}     `json:"token_info,omitempty"`
	CurveInfo *struct{}     `json:"curve_info,omitempty"`
	Balance   *addressQuery `json:"balance,omitempty"`
}

// Responses.

type GameInfoResponse struct {
	GameInfo models.GameRecord `json:"game_info"`
}

// GameDatum mirrors the controller's listing row: registry fields plus
// phase-dependent state.
type GameDatum struct {
	GameInfo storedGameInfo `json:"game_info"`
	State    *GameState     `json:"state,omitempty"`
}

type storedGameInfo struct {
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	Contract string           `json:"contract"`
	Phase    models.GamePhase `json:"phase"`
	Creator  string           `json:"creator"`
}

// GameState carries exactly one of the two variants, keyed by phase.
type GameState struct {
	Staking *TotalWeightResponse `json:"staking,omitempty"`
	Token   *CurveInfoResponse   `json:"token,omitempty"`
}

type GameDataResponse struct {
	Games []GameDatum `json:"games"`
}

type AccountResponse struct {
	Account string `json:"account"`
}

type StakedResponse struct {
	Stake string `json:"stake"`
	Denom string `json:"denom,omitempty"`
}

type ClaimsResponse struct {
	Claims []models.Claim `json:"claims"`
}

type MemberResponse struct {
	Weight    *int64 `json:"weight"`
	RefWeight string `json:"ref_weight,omitempty"`
}

type MemberListResponse struct {
	Members []models.Member `json:"members"`
}

type TotalWeightResponse struct {
	Weight    int64  `json:"weight"`
	RefWeight string `json:"ref_weight,omitempty"`
}

type TokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

type CurveInfoResponse struct {
	Reserve      string `json:"reserve"`
	Supply       string `json:"supply"`
	SpotPrice    string `json:"spot_price"`
	ReserveDenom string `json:"reserve_denom"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}
