package chain

import "strings"

// Explorer builds public block-explorer links. Pure string templating,
// no network calls.
type Explorer struct {
	base string
}

func NewExplorer(base string) *Explorer {
	return &Explorer{base: strings.TrimRight(base, "/")}
}

func (e *Explorer) TxURL(txHash string) string {
	if txHash == "" {
		return ""
	}
	return e.base + "/tx/" + txHash
}

func (e *Explorer) AddressURL(address string) string {
	if address == "" {
		return ""
	}
	return e.base + "/address/" + address
}

// TruncateAddress shortens a bech32 address for display.
func TruncateAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}
