package domain

import (
	"math"
	"testing"
)

func TestAssetFormat(t *testing.T) {
	tests := []struct {
		asset  Asset
		amount uint64
		want   string
	}{
		{Algo, 1_500_000, "1.5"},
		{Algo, 1, "0.000001"},
		{Asset{ID: 31566704, UnitName: "USDC", Decimals: 6}, 0, "0"},
		{Asset{ID: 1, Decimals: 0}, 42, "42"},
		{Asset{ID: 2, Decimals: 2}, math.MaxUint64, "184467440737095516.15"},
	}
	for _, tt := range tests {
		if got := tt.asset.Format(tt.amount).String(); got != tt.want {
			t.Errorf("Format(%d, %d decimals) = %s, want %s", tt.amount, tt.asset.Decimals, got, tt.want)
		}
	}
}
