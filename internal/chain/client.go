package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"ddream/internal/config"
	"ddream/internal/models"
)

// Client is the read gateway to the chain. It speaks the LCD REST API:
// smart queries against contract state plus the handful of bank/block
// endpoints the dashboard needs. Expected-absence and phase-mismatch
// failures come back as typed sentinels, never as opaque errors.
type Client struct {
	http       *resty.Client
	logger     *zap.Logger
	controller string
	registry   string
	denom      string
}

func NewClient(cfg config.ChainConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.LCDURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger:     logger,
		controller: cfg.Controller,
		registry:   cfg.Registry,
		denom:      cfg.Denom,
	}
}

func (c *Client) Controller() string { return c.controller }
func (c *Client) Registry() string   { return c.registry }
func (c *Client) Denom() string      { return c.denom }

type lcdError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type smartQueryResponse struct {
	Data json.RawMessage `json:"data"`
}

// SmartQuery issues one contract smart query and decodes the response
// into out. Absence and migrated-contract conditions surface as
// ErrUnavailable / ErrPhaseMismatch.
func (c *Client) SmartQuery(ctx context.Context, contract string, query any, out any) error {
	raw, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	path := fmt.Sprintf("/cosmwasm/wasm/v1/contract/%s/smart/%s",
		url.PathEscape(contract), url.PathEscape(encoded))

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("query %s: %w", contract, err)
	}
	if resp.StatusCode() != http.StatusOK {
		var le lcdError
		_ = json.Unmarshal(resp.Body(), &le)
		if le.Message == "" {
			le.Message = resp.Status()
		}
		return classify(contract, resp.StatusCode(), le.Message)
	}

	var envelope smartQueryResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("decode response from %s: %w", contract, err)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// GameInfo looks one game up by ticker on the controller.
func (c *Client) GameInfo(ctx context.Context, ticker string) (*models.GameRecord, error) {
	var out GameInfoResponse
	err := c.SmartQuery(ctx, c.controller, controllerQuery{
		GameInfo: &gameInfoQuery{Ticker: ticker},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.GameInfo, nil
}

// GameData lists games with optional per-game state.
func (c *Client) GameData(ctx context.Context, withState bool, startAfter string, limit int) (*GameDataResponse, error) {
	var out GameDataResponse
	err := c.SmartQuery(ctx, c.controller, controllerQuery{
		GameData: &gameDataQuery{WithState: withState, StartAfter: startAfter, Limit: limit},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProxyAccount resolves the delegated execution account registered for
// owner, if any. A nil result with nil error means no proxy exists.
func (c *Client) ProxyAccount(ctx context.Context, owner string) (string, error) {
	var out AccountResponse
	err := c.SmartQuery(ctx, c.registry, controllerQuery{
		Account: &accountQuery{Owner: owner},
	}, &out)
	if err != nil {
		if IsAbsence(err) {
			return "", nil
		}
		return "", err
	}
	return out.Account, nil
}

func (c *Client) Staked(ctx context.Context, contract, address string) (*StakedResponse, error) {
	var out StakedResponse
	err := c.SmartQuery(ctx, contract, stakingQuery{
		Staked: &addressQuery{Address: address},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Claims(ctx context.Context, contract, address string) (*ClaimsResponse, error) {
	var out ClaimsResponse
	err := c.SmartQuery(ctx, contract, stakingQuery{
		Claims: &addressQuery{Address: address},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Member(ctx context.Context, contract, addr string) (*MemberResponse, error) {
	var out MemberResponse
	err := c.SmartQuery(ctx, contract, stakingQuery{
		Member: &memberQuery{Addr: addr},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMembers(ctx context.Context, contract string, limit int, startAfter string) (*MemberListResponse, error) {
	var out MemberListResponse
	err := c.SmartQuery(ctx, contract, stakingQuery{
		ListMembers: &listMembersQuery{Limit: limit, StartAfter: startAfter},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TotalWeight(ctx context.Context, contract string) (*TotalWeightResponse, error) {
	var out TotalWeightResponse
	err := c.SmartQuery(ctx, contract, stakingQuery{
		TotalWeight: &struct{}{},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TokenInfo(ctx context.Context, contract string) (*TokenInfoResponse, error) {
	var out TokenInfoResponse
	err := c.SmartQuery(ctx, contract, tokenQuery{
		TokenInfo: &struct{}{},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurveInfo(ctx context.Context, contract string) (*CurveInfoResponse, error) {
	var out CurveInfoResponse
	err := c.SmartQuery(ctx, contract, tokenQuery{
		CurveInfo: &struct{}{},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TokenBalance(ctx context.Context, contract, address string) (*BalanceResponse, error) {
	var out BalanceResponse
	err := c.SmartQuery(ctx, contract, tokenQuery{
		Balance: &addressQuery{Address: address},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// BankBalance returns the native-denom balance of address, in micro units.
func (c *Client) BankBalance(ctx context.Context, address string) (string, error) {
	path := fmt.Sprintf("/cosmos/bank/v1beta1/balances/%s/by_denom?denom=%s",
		url.PathEscape(address), url.QueryEscape(c.denom))
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		var le lcdError
		_ = json.Unmarshal(resp.Body(), &le)
		if le.Message == "" {
			le.Message = resp.Status()
		}
		return "", classify(address, resp.StatusCode(), le.Message)
	}
	var out struct {
		Balance struct {
			Amount string `json:"amount"`
			Denom  string `json:"denom"`
		} `json:"balance"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", err
	}
	if out.Balance.Amount == "" {
		return "0", nil
	}
	return out.Balance.Amount, nil
}

// LatestHeight returns the current block height, used to judge
// at-height claim readiness.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	resp, err := c.http.R().SetContext(ctx).
		Get("/cosmos/base/tendermint/v1beta1/blocks/latest")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("latest block: %s", resp.Status())
	}
	var out struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, err
	}
	return strconv.ParseInt(out.Block.Header.Height, 10, 64)
}
