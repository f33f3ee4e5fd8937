package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// EventStream subscribes to the chain's websocket RPC for transactions
// touching a set of contracts and fires a callback per matching event.
// The callback is a refresh trigger only; all state is re-read through
// the query gateway, so dropped events merely delay the next cron pass.
type EventStream struct {
	URL        string
	Contracts  []string
	Logger     *zap.Logger
	BackoffMin time.Duration
	BackoffMax time.Duration
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	ID      int            `json:"id"`
	Params  map[string]any `json:"params"`
}

type txEventEnvelope struct {
	Result struct {
		Events map[string][]string `json:"events"`
	} `json:"result"`
}

func (s *EventStream) Run(ctx context.Context, onTx func(contract string)) error {
	if s.URL == "" {
		return fmt.Errorf("event stream url not configured")
	}
	backoffMin := s.BackoffMin
	if backoffMin == 0 {
		backoffMin = time.Second
	}
	backoffMax := s.BackoffMax
	if backoffMax == 0 {
		backoffMax = 30 * time.Second
	}

	backoff := backoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.runOnce(ctx, onTx)
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if s.Logger != nil {
			s.Logger.Warn("chain event stream disconnected", zap.Error(err))
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, backoffMax)
	}
}

func (s *EventStream) runOnce(ctx context.Context, onTx func(contract string)) error {
	conn, _, err := websocket.Dial(ctx, s.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	conn.SetReadLimit(1 << 20)

	for i, contract := range s.Contracts {
		sub := rpcRequest{
			JSONRPC: "2.0",
			Method:  "subscribe",
			ID:      i + 1,
			Params: map[string]any{
				"query": fmt.Sprintf("tm.event='Tx' AND wasm._contract_address='%s'", contract),
			},
		}
		payload, err := json.Marshal(sub)
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("chain event stream subscribed", zap.Int("contracts", len(s.Contracts)))
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var env txEventEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		addrs := env.Result.Events["wasm._contract_address"]
		if len(addrs) == 0 {
			continue
		}
		if onTx != nil {
			onTx(addrs[0])
		}
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
