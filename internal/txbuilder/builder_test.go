package txbuilder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ddream/internal/chain"
	"ddream/internal/config"
)

type execCall struct {
	Sender   string
	Contract string
	Msg      json.RawMessage
	Funds    []chain.Coin
}

type fakeExec struct {
	calls   []execCall
	batches [][]chain.Instruction
}

func (f *fakeExec) Execute(ctx context.Context, sender, contract string, msg json.RawMessage, funds []chain.Coin) (*chain.ExecResult, error) {
	f.calls = append(f.calls, execCall{Sender: sender, Contract: contract, Msg: msg, Funds: funds})
	return &chain.ExecResult{TxHash: "FAKE"}, nil
}

func (f *fakeExec) ExecuteMultiple(ctx context.Context, sender string, instructions []chain.Instruction) (*chain.ExecResult, error) {
	f.batches = append(f.batches, instructions)
	return &chain.ExecResult{TxHash: "FAKE"}, nil
}

// testBuilder backs the proxy lookup with a canned LCD response: empty
// proxyAddr means no registered account.
func testBuilder(t *testing.T, proxyAddr string) (*Builder, *fakeExec) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if proxyAddr == "" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"account does not exist"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"account":"` + proxyAddr + `"}}`))
	}))
	t.Cleanup(srv.Close)

	exec := &fakeExec{}
	b := &Builder{
		Chain: chain.NewClient(config.ChainConfig{
			LCDURL:     srv.URL,
			Denom:      "uxion",
			Controller: "xion1controller",
			Registry:   "xion1registry",
		}, zap.NewNop()),
		Exec:   exec,
		Logger: zap.NewNop(),
	}
	return b, exec
}

func TestStakeWithoutProxyBundlesBootstrap(t *testing.T) {
	b, exec := testBuilder(t, "")

	_, err := b.Stake(context.Background(), "xion1user", "xion1game", "15", "")
	require.NoError(t, err)
	require.Empty(t, exec.calls, "no-proxy stake must go through the atomic batch")
	require.Len(t, exec.batches, 1)

	batch := exec.batches[0]
	require.Len(t, batch, 2)

	// First: create the proxy account at the registry, no funds.
	require.Equal(t, "xion1registry", batch[0].Contract)
	require.JSONEq(t, `{"create_account":{}}`, string(batch[0].Msg))
	require.Empty(t, batch[0].Funds)

	// Second: the forwarded bond, funds attached.
	require.Equal(t, "xion1registry", batch[1].Contract)
	require.Equal(t, []chain.Coin{{Amount: "15000000", Denom: "uxion"}}, batch[1].Funds)

	var fwd struct {
		Forward struct {
			Msg string `json:"msg"`
		} `json:"forward"`
	}
	require.NoError(t, json.Unmarshal(batch[1].Msg, &fwd))
	inner, err := base64.StdEncoding.DecodeString(fwd.Forward.Msg)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"game_execute":{"contract_addr":"xion1game","msg":{"staking":{"bond":{}}}}}`,
		string(inner))
}

func TestStakeWithProxyGoesDirect(t *testing.T) {
	b, exec := testBuilder(t, "xion1proxy")

	_, err := b.Stake(context.Background(), "xion1user", "xion1game", "10", "xion1ref")
	require.NoError(t, err)
	require.Empty(t, exec.batches)
	require.Len(t, exec.calls, 1)

	call := exec.calls[0]
	require.Equal(t, "xion1proxy", call.Contract)
	require.Equal(t, []chain.Coin{{Amount: "10000000", Denom: "uxion"}}, call.Funds)

	var msg struct {
		Execute struct {
			Msgs []struct {
				Wasm struct {
					Execute struct {
						ContractAddr string `json:"contract_addr"`
						Msg          string `json:"msg"`
						Funds        []struct {
							Amount string `json:"amount"`
							Denom  string `json:"denom"`
						} `json:"funds"`
					} `json:"execute"`
				} `json:"wasm"`
			} `json:"msgs"`
		} `json:"execute"`
	}
	require.NoError(t, json.Unmarshal(call.Msg, &msg))
	require.Len(t, msg.Execute.Msgs, 1)

	wasmExec := msg.Execute.Msgs[0].Wasm.Execute
	require.Equal(t, "xion1game", wasmExec.ContractAddr)
	// Funds ride both the outer instruction and the embedded execute.
	require.Len(t, wasmExec.Funds, 1)
	require.Equal(t, "10000000", wasmExec.Funds[0].Amount)

	inner, err := base64.StdEncoding.DecodeString(wasmExec.Msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"bond":{"referrer":"xion1ref"}}`, string(inner))
}

func TestStakeRejectsBelowMinimum(t *testing.T) {
	b, exec := testBuilder(t, "")

	_, err := b.Stake(context.Background(), "xion1user", "xion1game", "9.999999", "")
	require.ErrorContains(t, err, "minimum stake")
	require.Empty(t, exec.calls)
	require.Empty(t, exec.batches)
}

func TestUnstakeForwardsWithoutProxy(t *testing.T) {
	b, exec := testBuilder(t, "")

	_, err := b.Unstake(context.Background(), "xion1user", "xion1game", "2.5")
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)
	require.Equal(t, "xion1registry", exec.calls[0].Contract)

	var fwd struct {
		Forward struct {
			Msg string `json:"msg"`
		} `json:"forward"`
	}
	require.NoError(t, json.Unmarshal(exec.calls[0].Msg, &fwd))
	inner, err := base64.StdEncoding.DecodeString(fwd.Forward.Msg)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"game_execute":{"contract_addr":"xion1game","msg":{"staking":{"unbond":{"tokens":"2500000"}}}}}`,
		string(inner))
}

func TestCreateGameValidation(t *testing.T) {
	b, exec := testBuilder(t, "")

	_, err := b.CreateGame(context.Background(), "xion1user", "x", "My Game")
	require.ErrorContains(t, err, "invalid ticker")

	_, err = b.CreateGame(context.Background(), "xion1user", "GAME", "ab")
	require.ErrorContains(t, err, "name must be")
	require.Empty(t, exec.calls)

	_, err = b.CreateGame(context.Background(), "xion1user", "game", "My Game")
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)
	require.Equal(t, "xion1controller", exec.calls[0].Contract)
	require.JSONEq(t, `{"create_game":{"ticker":"GAME","name":"My Game"}}`, string(exec.calls[0].Msg))
}

func TestBuyAndSell(t *testing.T) {
	b, exec := testBuilder(t, "")

	_, err := b.Buy(context.Background(), "xion1user", "xion1game", "1.5")
	require.NoError(t, err)
	_, err = b.Sell(context.Background(), "xion1user", "xion1game", "3")
	require.NoError(t, err)
	require.Len(t, exec.calls, 2)

	buy := exec.calls[0]
	require.Equal(t, "xion1game", buy.Contract)
	require.JSONEq(t, `{"buy":{}}`, string(buy.Msg))
	require.Equal(t, []chain.Coin{{Amount: "1500000", Denom: "uxion"}}, buy.Funds)

	sell := exec.calls[1]
	require.JSONEq(t, `{"burn":{"amount":"3000000"}}`, string(sell.Msg))
	require.Empty(t, sell.Funds)
}
