package txbuilder

import (
	"encoding/base64"
	"encoding/json"
)

// Execute-message bodies, one closed struct per contract family. As with
// queries, exactly one field is set and the wire form is the single-key
// JSON object the contracts dispatch on.

type controllerMsg struct {
	CreateGame  *createGameMsg  `json:"create_game,omitempty"`
	LaunchToken *launchTokenMsg `json:"launch_token,omitempty"`
	FairLaunch  *launchTokenMsg `json:"fair_launch,omitempty"`
}

type createGameMsg struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type launchTokenMsg struct {
	Ticker string `json:"ticker"`
}

type stakingMsg struct {
	Bond   *bondMsg   `json:"bond,omitempty"`
	Unbond *unbondMsg `json:"unbond,omitempty"`
	Claim  *struct{}  `json:"claim,omitempty"`
}

type bondMsg struct {
	Referrer string `json:"referrer,omitempty"`
}

type unbondMsg struct {
	Tokens string `json:"tokens"`
}

type tokenMsg struct {
	Buy  *struct{} `json:"buy,omitempty"`
	Burn *burnMsg  `json:"burn,omitempty"`
}

type burnMsg struct {
	Amount string `json:"amount"`
}

// Account registry (proxy) envelopes.

type registryMsg struct {
	CreateAccount *struct{}   `json:"create_account,omitempty"`
	Forward       *forwardMsg `json:"forward,omitempty"`
}

type forwardMsg struct {
	// Base64 of a gameExecuteMsg, re-executed by the proxy.
	Msg string `json:"msg"`
}

type gameExecuteEnvelope struct {
	GameExecute gameExecuteMsg `json:"game_execute"`
}

type gameExecuteMsg struct {
	ContractAddr string     `json:"contract_addr"`
	Msg          gameAction `json:"msg"`
}

type gameAction struct {
	Staking stakingMsg `json:"staking"`
}

// Direct proxy execution: the proxy re-dispatches embedded wasm
// executes against the game contract.

type proxyExecuteMsg struct {
	Execute proxyExecuteBody `json:"execute"`
}

type proxyExecuteBody struct {
	Msgs []cosmosMsg `json:"msgs"`
}

type cosmosMsg struct {
	Wasm wasmMsg `json:"wasm"`
}

type wasmMsg struct {
	Execute wasmExecute `json:"execute"`
}

type wasmExecute struct {
	ContractAddr string     `json:"contract_addr"`
	Msg          string     `json:"msg"` // base64 inner message
	Funds        []fundCoin `json:"funds"`
}

type fundCoin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// toBinary is the CosmWasm Binary encoding: base64 of the JSON body.
func toBinary(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// All message structs marshal cleanly; this is unreachable for
		// the closed set above.
		panic(err)
	}
	return raw
}
