package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// TxType is the Algorand transaction type tag.
type TxType string

const (
	TxTypePayment       TxType = "pay"
	TxTypeAssetTransfer TxType = "axfer"
	TxTypeAppCall       TxType = "appl"
	TxTypeAssetConfig   TxType = "acfg"
	TxTypeAssetFreeze   TxType = "afrz"
	TxTypeKeyReg        TxType = "keyreg"
	TxTypeStateProof    TxType = "stpf"
	TxTypeHeartbeat     TxType = "hb"
)

// Valid reports whether t is a known transaction type.
func (t TxType) Valid() bool {
	switch t {
	case TxTypePayment, TxTypeAssetTransfer, TxTypeAppCall, TxTypeAssetConfig,
		TxTypeAssetFreeze, TxTypeKeyReg, TxTypeStateProof, TxTypeHeartbeat:
		return true
	}
	return false
}

// AlgoAssetID is the pseudo asset id used for native ALGO transfers.
const AlgoAssetID uint64 = 0

// Transaction represents a confirmed transaction as returned by the indexer.
type Transaction struct {
	ID             string    `json:"id"`
	Type           TxType    `json:"tx_type"`
	Sender         string    `json:"sender"`
	Receiver       string    `json:"receiver,omitempty"`
	CloseTo        string    `json:"close_to,omitempty"`
	Amount         uint64    `json:"amount"`
	AssetID        uint64    `json:"asset_id"`
	Fee            uint64    `json:"fee"`
	Note           []byte    `json:"note,omitempty"`
	ConfirmedRound uint64    `json:"confirmed_round"`
	RoundTime      time.Time `json:"round_time"`
	FirstValid     uint64    `json:"first_valid"`
	LastValid      uint64    `json:"last_valid"`
}

// Fingerprint identifies the transaction body independent of its confirmation.
func (t *Transaction) Fingerprint() string {
	return fingerprint(t.Sender, t.Receiver, t.Amount, t.AssetID, t.FirstValid, t.LastValid, t.Note)
}

// Direction returns the direction of the transaction relative to address.
func (t *Transaction) Direction(address string) Direction {
	switch {
	case t.Sender == address && t.Receiver == address:
		return DirectionSelf
	case t.Sender == address:
		return DirectionOutgoing
	case t.Receiver == address || t.CloseTo == address:
		return DirectionIncoming
	}
	return DirectionOther
}

// Direction of a transfer relative to the viewing account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionSelf     Direction = "self"
	DirectionOther    Direction = "other"
)

func fingerprint(sender, receiver string, amount, assetID, fv, lv uint64, note []byte) string {
	var b strings.Builder
	b.WriteString(sender)
	b.WriteByte('|')
	b.WriteString(receiver)
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(amount, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(assetID, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(fv, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(lv, 10))
	b.WriteByte('|')
	b.WriteString(base64.StdEncoding.EncodeToString(note))
	return b.String()
}
