package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ddream/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ChainConfig{
		LCDURL:     srv.URL,
		Denom:      "uxion",
		Controller: "xion1controller",
		Registry:   "xion1registry",
	}, zap.NewNop())
}

func decodeSmartQuery(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	parts := strings.Split(path, "/")
	raw, err := base64.StdEncoding.DecodeString(parts[len(parts)-1])
	require.NoError(t, err)
	var query map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &query))
	return query
}

func TestGameInfoDecodesEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/cosmwasm/wasm/v1/contract/xion1controller/smart/")
		query := decodeSmartQuery(t, r.URL.Path)
		require.Contains(t, query, "game_info")

		_, _ = w.Write([]byte(`{"data":{"game_info":{"ticker":"SPACE","name":"Space Race","contract":"xion1game","phase":"staking","creator":"xion1creator"}}}`))
	})

	got, err := client.GameInfo(context.Background(), "SPACE")
	require.NoError(t, err)
	require.Equal(t, "SPACE", got.Ticker)
	require.Equal(t, "Space Race", got.Name)
	require.False(t, got.Phase.Launched())
}

func TestSmartQueryPhaseMismatch(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":2,"message":"unknown variant ` + "`staked`" + `, expected one of ` + "`buy`" + `"}`))
	})

	_, err := client.Staked(context.Background(), "xion1game", "xion1user")
	require.True(t, IsPhaseMismatch(err))
}

func TestSmartQueryAbsence(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":5,"message":"game not found"}`))
	})

	_, err := client.GameInfo(context.Background(), "NOPE")
	require.True(t, IsAbsence(err))
}

func TestSmartQueryOpaqueFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	})

	_, err := client.TotalWeight(context.Background(), "xion1game")
	require.Error(t, err)
	require.False(t, IsAbsence(err))
	require.False(t, IsPhaseMismatch(err))
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	require.Equal(t, http.StatusBadGateway, qe.Status)
}

func TestProxyAccountAbsenceIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"account does not exist"}`))
	})

	account, err := client.ProxyAccount(context.Background(), "xion1user")
	require.NoError(t, err)
	require.Empty(t, account)
}

func TestBankBalance(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/cosmos/bank/v1beta1/balances/xion1user/by_denom")
		require.Equal(t, "uxion", r.URL.Query().Get("denom"))
		_, _ = w.Write([]byte(`{"balance":{"denom":"uxion","amount":"2500000"}}`))
	})

	amount, err := client.BankBalance(context.Background(), "xion1user")
	require.NoError(t, err)
	require.Equal(t, "2500000", amount)
}

func TestBankBalanceZeroWhenEmpty(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"balance":{"denom":"uxion","amount":""}}`))
	})

	amount, err := client.BankBalance(context.Background(), "xion1user")
	require.NoError(t, err)
	require.Equal(t, "0", amount)
}

func TestLatestHeight(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cosmos/base/tendermint/v1beta1/blocks/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"block":{"header":{"height":"123456"}}}`))
	})

	height, err := client.LatestHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(123456), height)
}
