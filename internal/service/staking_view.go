package service

import (
	"context"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ddream/internal/chain"
	"ddream/internal/models"
)

const launchedNotice = "This game's token has been launched. Staking is no longer available."

// StakingViewService reconciles the per-game, per-account staking view.
// One reconciliation may be in flight at a time; overlapping triggers
// (rapid account or game switching) are rejected with chain.ErrBusy and
// the caller simply retries on the next change.
type StakingViewService struct {
	Chain  *chain.Client
	Logger *zap.Logger

	MemberPageLimit int

	inFlight atomic.Bool
}

// View builds the staking view for one account on one game. The live
// phase from the controller is authoritative; a phase-mismatch error
// from the game contract corrects a stale belief rather than failing the
// render. Expected-absence results become zero/empty states.
func (s *StakingViewService) View(ctx context.Context, ticker, account string) (*models.StakingView, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, chain.ErrBusy
	}
	defer s.inFlight.Store(false)

	record, err := s.Chain.GameInfo(ctx, ticker)
	if err != nil {
		return nil, err
	}

	view := &models.StakingView{
		Ticker:           record.Ticker,
		Contract:         record.Contract,
		Phase:            record.Phase,
		StakingAvailable: !record.Phase.Launched(),
	}
	if view.Ticker == "" {
		view.Ticker = ticker
	}
	if !view.StakingAvailable {
		view.Notice = launchedNotice
		return view, nil
	}

	// Probe the staking family. An unrecognized-variant error means the
	// contract migrated at launch and the cached phase was stale.
	total, err := s.Chain.TotalWeight(ctx, record.Contract)
	if err != nil {
		if chain.IsPhaseMismatch(err) {
			view.StakingAvailable = false
			view.Notice = launchedNotice
			return view, nil
		}
		if !chain.IsAbsence(err) {
			s.warn("total weight query failed", ticker, err)
		}
	} else {
		view.TotalWeight = strconv.FormatInt(total.Weight, 10)
	}

	// Queries run against the proxy account when one is registered; the
	// proxy is the on-chain staker for delegated flows.
	queryAddr := account
	if proxy, err := s.Chain.ProxyAccount(ctx, account); err == nil && proxy != "" {
		queryAddr = proxy
	}

	if staked, err := s.Chain.Staked(ctx, record.Contract, queryAddr); err == nil {
		view.Position = &models.StakingPosition{
			Stake:        staked.Stake,
			Denom:        staked.Denom,
			StakeDisplay: chain.FromMicro(staked.Stake),
		}
		if view.Position.Denom == "" {
			view.Position.Denom = s.Chain.Denom()
		}
	} else if chain.IsAbsence(err) {
		view.Position = &models.StakingPosition{Stake: "0", Denom: s.Chain.Denom()}
	} else if chain.IsPhaseMismatch(err) {
		view.StakingAvailable = false
		view.Notice = launchedNotice
		return view, nil
	} else {
		s.warn("staked query failed", ticker, err)
		view.Position = &models.StakingPosition{Stake: "0", Denom: s.Chain.Denom()}
	}

	var height int64
	if h, err := s.Chain.LatestHeight(ctx); err == nil {
		height = h
	}
	if claims, err := s.Chain.Claims(ctx, record.Contract, queryAddr); err == nil {
		view.Claims, view.TotalUnbonding, view.ReadyToClaim =
			SplitClaims(claims.Claims, time.Now(), height)
	} else if !chain.IsAbsence(err) {
		s.warn("claims query failed", ticker, err)
	}

	if member, err := s.Chain.Member(ctx, record.Contract, queryAddr); err == nil {
		if member.Weight != nil {
			view.YourWeight = strconv.FormatInt(*member.Weight, 10)
		}
		view.ReferralWeight = member.RefWeight
		if view.ReferralWeight == "" {
			view.ReferralWeight = "0"
		}
	} else if !chain.IsAbsence(err) {
		s.warn("member query failed", ticker, err)
	}

	if list, err := s.Chain.ListMembers(ctx, record.Contract, s.MemberPageLimit, ""); err == nil {
		members := append([]models.Member(nil), list.Members...)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Weight > members[j].Weight
		})
		for i := range members {
			members[i].Display = chain.TruncateAddress(members[i].Addr)
		}
		view.TopStakers = members
		view.TotalStakers = len(members)
	} else if !chain.IsAbsence(err) {
		s.warn("member list query failed", ticker, err)
	}

	if balance, err := s.Chain.BankBalance(ctx, account); err == nil {
		view.Balance = balance
		view.BalanceDisplay = chain.FromMicro(balance)
	}

	return view, nil
}

func (s *StakingViewService) warn(msg, ticker string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, zap.String("ticker", ticker), zap.Error(err))
	}
}

// SplitClaims derives the ready/pending badge split and the two display
// sums. A claim is ready when its release condition has passed; with no
// known height, at-height claims count as ready, matching how the
// short unbonding window is presented.
func SplitClaims(claims []models.Claim, now time.Time, height int64) ([]models.ClaimView, string, string) {
	views := make([]models.ClaimView, 0, len(claims))
	total := decimal.Zero
	ready := decimal.Zero
	for _, claim := range claims {
		cv := models.ClaimView{Claim: claim, Ready: claimReady(claim.ReleaseAt, now, height)}
		if !cv.Ready && claim.ReleaseAt.AtHeight != nil && height > 0 {
			cv.EstimatedRelease = estimateRelease(*claim.ReleaseAt.AtHeight, height, now)
		}
		views = append(views, cv)
		amount := numericOrZero(claim.Amount)
		total = total.Add(amount)
		if cv.Ready {
			ready = ready.Add(amount)
		}
	}
	return views, total.String(), ready.String()
}

// blockTimeSeconds is the nominal block interval used only for display
// estimates; the contract enforces the real release height.
const blockTimeSeconds = 6

func estimateRelease(target, current int64, now time.Time) string {
	if target <= current {
		return now.Format(time.RFC3339)
	}
	eta := now.Add(time.Duration(target-current) * blockTimeSeconds * time.Second)
	return eta.Format(time.RFC3339)
}

func claimReady(release models.ReleaseAt, now time.Time, height int64) bool {
	switch {
	case release.AtTime != nil:
		nanos, err := strconv.ParseInt(*release.AtTime, 10, 64)
		if err != nil {
			return false
		}
		return now.UnixNano() > nanos
	case release.AtHeight != nil:
		if height == 0 {
			return true
		}
		return height >= *release.AtHeight
	default:
		// Never-releasing claims stay pending forever.
		return false
	}
}
