package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"ddream/internal/config"
)

type Coin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// Instruction is one contract call inside a (possibly multi-message)
// submission.
type Instruction struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    []Coin          `json:"funds,omitempty"`
}

type ExecResult struct {
	TxHash string `json:"tx_hash"`
}

// ExecuteClient is the externally supplied signing client. The wallet
// abstraction owns keys and broadcasting; the dashboard only hands it
// fully built messages.
type ExecuteClient interface {
	Execute(ctx context.Context, sender, contract string, msg json.RawMessage, funds []Coin) (*ExecResult, error)
	// ExecuteMultiple submits every instruction in one atomic transaction.
	ExecuteMultiple(ctx context.Context, sender string, instructions []Instruction) (*ExecResult, error)
}

// SignerBridge implements ExecuteClient against the wallet bridge's REST
// API. Submission failures come back with the bridge's message verbatim
// so the UI can surface contract-side rejections as-is.
type SignerBridge struct {
	http *resty.Client
}

func NewSignerBridge(cfg config.SignerConfig) *SignerBridge {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SignerBridge{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

type executeRequest struct {
	Sender       string        `json:"sender"`
	Instructions []Instruction `json:"instructions"`
}

type executeResponse struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

func (s *SignerBridge) Execute(ctx context.Context, sender, contract string, msg json.RawMessage, funds []Coin) (*ExecResult, error) {
	return s.ExecuteMultiple(ctx, sender, []Instruction{
		{Contract: contract, Msg: msg, Funds: funds},
	})
}

func (s *SignerBridge) ExecuteMultiple(ctx context.Context, sender string, instructions []Instruction) (*ExecResult, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("no instructions to submit")
	}
	resp, err := s.http.R().SetContext(ctx).
		SetBody(executeRequest{Sender: sender, Instructions: instructions}).
		Post("/v1/execute")
	if err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}
	var out executeResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode signer response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Error != "" {
			return nil, fmt.Errorf("%s", out.Error)
		}
		return nil, fmt.Errorf("signer rejected submission: %s", resp.Status())
	}
	return &ExecResult{TxHash: out.TxHash}, nil
}
