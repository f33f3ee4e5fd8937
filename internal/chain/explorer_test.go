package chain

import "testing"

func TestExplorerURLs(t *testing.T) {
	e := NewExplorer("https://example.com/scan/")
	if got := e.TxURL("ABC123"); got != "https://example.com/scan/tx/ABC123" {
		t.Fatalf("TxURL = %s", got)
	}
	if got := e.AddressURL("xion1abc"); got != "https://example.com/scan/address/xion1abc" {
		t.Fatalf("AddressURL = %s", got)
	}
	if got := e.TxURL(""); got != "" {
		t.Fatalf("empty hash should yield empty url, got %s", got)
	}
}

func TestTruncateAddress(t *testing.T) {
	long := "xion1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqzyxwvu"
	if got := TruncateAddress(long); got != "xion1qqq...zyxwvu" {
		t.Fatalf("TruncateAddress = %s", got)
	}
	short := "xion1short"
	if got := TruncateAddress(short); got != short {
		t.Fatalf("short address must pass through, got %s", got)
	}
}
