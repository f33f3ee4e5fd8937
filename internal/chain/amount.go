package chain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the native token's fixed-point precision. Every contract in
// the protocol declares 6.
const Decimals = 6

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// ToMicro converts a user-facing decimal amount to the integer micro
// string submitted on-chain. Fractional digits beyond the declared
// precision are dropped, not rounded; that exact behavior decides the
// amount that hits the contract, so keep it.
func ToMicro(amount string) string {
	parts := strings.SplitN(amount, ".", 2)
	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) < Decimals {
		frac += strings.Repeat("0", Decimals-len(frac))
	} else {
		frac = frac[:Decimals]
	}
	micro := strings.TrimLeft(whole+frac, "0")
	if micro == "" {
		return "0"
	}
	return micro
}

// FromMicro converts a micro string back to decimal form, trimming
// trailing zero fractional digits and collapsing to an integer string
// when the fraction empties out.
func FromMicro(amount string) string {
	padded := amount
	if len(padded) < Decimals+1 {
		padded = strings.Repeat("0", Decimals+1-len(padded)) + padded
	}
	whole := strings.TrimLeft(padded[:len(padded)-Decimals], "0")
	if whole == "" {
		whole = "0"
	}
	frac := strings.TrimRight(padded[len(padded)-Decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// NormalizeTicker applies the input rule: uppercase, truncated to the
// maximum length.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if len(t) > 10 {
		t = t[:10]
	}
	return t
}

// ValidateTicker rejects tickers outside [A-Z0-9]{2,10} after
// normalization.
func ValidateTicker(ticker string) error {
	if !tickerPattern.MatchString(NormalizeTicker(ticker)) {
		return fmt.Errorf("invalid ticker %q: must be 2-10 characters A-Z or 0-9", ticker)
	}
	return nil
}

// ValidateAmount rejects non-numeric and non-positive decimal amounts
// before any network call is made.
func ValidateAmount(amount string) error {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", amount)
	}
	if !d.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}
