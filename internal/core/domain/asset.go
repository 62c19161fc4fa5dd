package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Asset holds the display parameters of an Algorand Standard Asset.
type Asset struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	UnitName string `json:"unit_name"`
	Decimals uint32 `json:"decimals"`
}

// Algo is the native asset.
var Algo = Asset{ID: AlgoAssetID, Name: "Algo", UnitName: "ALGO", Decimals: 6}

// Format converts a base unit amount to a decimal in whole units.
func (a Asset) Format(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(a.Decimals))
}
