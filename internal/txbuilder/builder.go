package txbuilder

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ddream/internal/chain"
)

// MinStake is the protocol's minimum bond, in whole native tokens.
const MinStake = 10

const (
	minNameLength = 3
	maxNameLength = 50
)

// Builder constructs contract execute messages and routes them: straight
// to the target contract, or wrapped for the caller's delegated proxy
// account when one is registered. Create/launch always go to the
// controller directly.
type Builder struct {
	Chain  *chain.Client
	Exec   chain.ExecuteClient
	Logger *zap.Logger
}

func (b *Builder) CreateGame(ctx context.Context, sender, ticker, name string) (*chain.ExecResult, error) {
	ticker = chain.NormalizeTicker(ticker)
	if err := chain.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, fmt.Errorf("game name must be %d-%d characters", minNameLength, maxNameLength)
	}
	msg := controllerMsg{CreateGame: &createGameMsg{Ticker: ticker, Name: name}}
	return b.Exec.Execute(ctx, sender, b.Chain.Controller(), mustJSON(msg), nil)
}

func (b *Builder) LaunchToken(ctx context.Context, sender, ticker string) (*chain.ExecResult, error) {
	msg := controllerMsg{LaunchToken: &launchTokenMsg{Ticker: chain.NormalizeTicker(ticker)}}
	return b.Exec.Execute(ctx, sender, b.Chain.Controller(), mustJSON(msg), nil)
}

func (b *Builder) FairLaunch(ctx context.Context, sender, ticker string) (*chain.ExecResult, error) {
	msg := controllerMsg{FairLaunch: &launchTokenMsg{Ticker: chain.NormalizeTicker(ticker)}}
	return b.Exec.Execute(ctx, sender, b.Chain.Controller(), mustJSON(msg), nil)
}

// Stake bonds amount (a decimal string of whole tokens) to a game. With
// a registered proxy the bond is forwarded through it; without one, the
// proxy creation and the forwarded bond are bundled into one atomic
// submission so a partial failure cannot leave a half-initialized
// account.
func (b *Builder) Stake(ctx context.Context, sender, gameContract, amount, referrer string) (*chain.ExecResult, error) {
	if err := chain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if parsed, _ := decimal.NewFromString(amount); parsed.LessThan(decimal.NewFromInt(MinStake)) {
		return nil, fmt.Errorf("minimum stake amount is %d %s", MinStake, b.Chain.Denom())
	}

	proxy, err := b.Chain.ProxyAccount(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("resolve proxy account: %w", err)
	}

	funds := []chain.Coin{{Amount: chain.ToMicro(amount), Denom: b.Chain.Denom()}}
	action := stakingMsg{Bond: &bondMsg{Referrer: referrer}}

	if proxy == "" {
		instructions, err := b.bootstrapStakeInstructions(gameContract, action, funds)
		if err != nil {
			return nil, err
		}
		return b.Exec.ExecuteMultiple(ctx, sender, instructions)
	}

	instr, err := proxyInstruction(proxy, gameContract, action, funds)
	if err != nil {
		return nil, err
	}
	return b.Exec.Execute(ctx, sender, instr.Contract, instr.Msg, instr.Funds)
}

// Unstake starts unbonding the given whole-token amount.
func (b *Builder) Unstake(ctx context.Context, sender, gameContract, amount string) (*chain.ExecResult, error) {
	if err := chain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	action := stakingMsg{Unbond: &unbondMsg{Tokens: chain.ToMicro(amount)}}
	return b.routeStakingAction(ctx, sender, gameContract, action)
}

// ClaimAll releases every matured unbond in one contract call.
func (b *Builder) ClaimAll(ctx context.Context, sender, gameContract string) (*chain.ExecResult, error) {
	action := stakingMsg{Claim: &struct{}{}}
	return b.routeStakingAction(ctx, sender, gameContract, action)
}

// Buy spends native tokens on the bonding curve.
func (b *Builder) Buy(ctx context.Context, sender, gameContract, amount string) (*chain.ExecResult, error) {
	if err := chain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	funds := []chain.Coin{{Amount: chain.ToMicro(amount), Denom: b.Chain.Denom()}}
	msg := tokenMsg{Buy: &struct{}{}}
	return b.Exec.Execute(ctx, sender, gameContract, mustJSON(msg), funds)
}

// Sell burns game tokens back into the curve.
func (b *Builder) Sell(ctx context.Context, sender, gameContract, amount string) (*chain.ExecResult, error) {
	if err := chain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	msg := tokenMsg{Burn: &burnMsg{Amount: chain.ToMicro(amount)}}
	return b.Exec.Execute(ctx, sender, gameContract, mustJSON(msg), nil)
}

func (b *Builder) routeStakingAction(ctx context.Context, sender, gameContract string, action stakingMsg) (*chain.ExecResult, error) {
	proxy, err := b.Chain.ProxyAccount(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("resolve proxy account: %w", err)
	}
	if proxy != "" {
		instr, err := proxyInstruction(proxy, gameContract, action, nil)
		if err != nil {
			return nil, err
		}
		return b.Exec.Execute(ctx, sender, instr.Contract, instr.Msg, instr.Funds)
	}
	instr, err := forwardInstruction(b.Chain.Registry(), gameContract, action, nil)
	if err != nil {
		return nil, err
	}
	return b.Exec.Execute(ctx, sender, instr.Contract, instr.Msg, instr.Funds)
}

// bootstrapStakeInstructions is the no-proxy stake path: create the
// proxy, then forward the bond, atomically and in that order.
func (b *Builder) bootstrapStakeInstructions(gameContract string, action stakingMsg, funds []chain.Coin) ([]chain.Instruction, error) {
	forward, err := forwardInstruction(b.Chain.Registry(), gameContract, action, funds)
	if err != nil {
		return nil, err
	}
	return []chain.Instruction{
		{
			Contract: b.Chain.Registry(),
			Msg:      mustJSON(registryMsg{CreateAccount: &struct{}{}}),
		},
		forward,
	}, nil
}

// forwardInstruction wraps a staking action in the registry's forwarding
// envelope; the registry re-executes the inner game_execute against the
// game contract.
func forwardInstruction(registryAddr, gameContract string, action stakingMsg, funds []chain.Coin) (chain.Instruction, error) {
	inner, err := toBinary(gameExecuteEnvelope{
		GameExecute: gameExecuteMsg{
			ContractAddr: gameContract,
			Msg:          gameAction{Staking: action},
		},
	})
	if err != nil {
		return chain.Instruction{}, err
	}
	return chain.Instruction{
		Contract: registryAddr,
		Msg:      mustJSON(registryMsg{Forward: &forwardMsg{Msg: inner}}),
		Funds:    funds,
	}, nil
}

// proxyInstruction addresses an existing proxy directly; the proxy
// re-dispatches the embedded wasm execute, re-attaching any funds.
func proxyInstruction(proxyAddr, gameContract string, action stakingMsg, funds []chain.Coin) (chain.Instruction, error) {
	inner, err := toBinary(action)
	if err != nil {
		return chain.Instruction{}, err
	}
	innerFunds := make([]fundCoin, 0, len(funds))
	for _, c := range funds {
		innerFunds = append(innerFunds, fundCoin{Amount: c.Amount, Denom: c.Denom})
	}
	msg := proxyExecuteMsg{
		Execute: proxyExecuteBody{
			Msgs: []cosmosMsg{{
				Wasm: wasmMsg{Execute: wasmExecute{
					ContractAddr: gameContract,
					Msg:          inner,
					Funds:        innerFunds,
				}},
			}},
		},
	}
	return chain.Instruction{
		Contract: proxyAddr,
		Msg:      mustJSON(msg),
		Funds:    funds,
	}, nil
}
