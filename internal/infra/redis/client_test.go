package redis

import "testing"

func TestPageKey(t *testing.T) {
	if got := pageKey("mainnet:abc"); got != "history_page:mainnet:abc" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestPrefixPattern(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"mainnet/default:", "history_page:mainnet/default:*"},
		{"mainnet/node*:", `history_page:mainnet/node\*:*`},
		{"testnet/a?[b]:", `history_page:testnet/a\?\[b\]:*`},
		{`testnet/back\slash:`, `history_page:testnet/back\\slash:*`},
	}
	for _, tt := range tests {
		if got := prefixPattern(tt.prefix); got != tt.want {
			t.Errorf("prefixPattern(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(Config{URL: "redis://localhost:6379/0"}).Enabled() {
		t.Error("config with url should be enabled")
	}
}

func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "://bad"}); err == nil {
		t.Fatal("expected parse error")
	}
}
