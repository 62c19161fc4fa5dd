package algorand

import (
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// Wire formats of the indexer v2 and algod v2 REST APIs.

type indexerTxResponse struct {
	CurrentRound uint64      `json:"current-round"`
	NextToken    string      `json:"next-token"`
	Transactions []indexerTx `json:"transactions"`
}

type indexerTx struct {
	ID             string `json:"id"`
	TxType         string `json:"tx-type"`
	Sender         string `json:"sender"`
	Fee            uint64 `json:"fee"`
	FirstValid     uint64 `json:"first-valid"`
	LastValid      uint64 `json:"last-valid"`
	Note           []byte `json:"note"`
	ConfirmedRound uint64 `json:"confirmed-round"`
	RoundTime      int64  `json:"round-time"`

	Payment *struct {
		Receiver         string `json:"receiver"`
		Amount           uint64 `json:"amount"`
		CloseRemainderTo string `json:"close-remainder-to"`
	} `json:"payment-transaction,omitempty"`

	AssetTransfer *struct {
		Receiver string `json:"receiver"`
		Amount   uint64 `json:"amount"`
		AssetID  uint64 `json:"asset-id"`
		CloseTo  string `json:"close-to"`
	} `json:"asset-transfer-transaction,omitempty"`
}

func (t *indexerTx) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		ID:             t.ID,
		Type:           domain.TxType(t.TxType),
		Sender:         t.Sender,
		Fee:            t.Fee,
		Note:           t.Note,
		ConfirmedRound: t.ConfirmedRound,
		RoundTime:      time.Unix(t.RoundTime, 0).UTC(),
		FirstValid:     t.FirstValid,
		LastValid:      t.LastValid,
	}
	switch {
	case t.Payment != nil:
		tx.Receiver = t.Payment.Receiver
		tx.Amount = t.Payment.Amount
		tx.CloseTo = t.Payment.CloseRemainderTo
	case t.AssetTransfer != nil:
		tx.Receiver = t.AssetTransfer.Receiver
		tx.Amount = t.AssetTransfer.Amount
		tx.AssetID = t.AssetTransfer.AssetID
		tx.CloseTo = t.AssetTransfer.CloseTo
	}
	return tx
}

type indexerAssetResponse struct {
	Asset struct {
		Index  uint64 `json:"index"`
		Params struct {
			Name     string `json:"name"`
			UnitName string `json:"unit-name"`
			Decimals uint32 `json:"decimals"`
		} `json:"params"`
	} `json:"asset"`
}

type pendingResponse struct {
	TopTransactions   []pendingSignedTx `json:"top-transactions"`
	TotalTransactions uint64            `json:"total-transactions"`
}

type pendingSignedTx struct {
	Txn pendingTxn `json:"txn"`
}

// pendingTxn uses the short msgpack field names algod keeps in JSON output.
type pendingTxn struct {
	Type       string `json:"type"`
	Sender     string `json:"snd"`
	Fee        uint64 `json:"fee"`
	FirstValid uint64 `json:"fv"`
	LastValid  uint64 `json:"lv"`
	Note       []byte `json:"note"`

	Receiver string `json:"rcv"`
	Amount   uint64 `json:"amt"`
	CloseTo  string `json:"close"`

	AssetID       uint64 `json:"xaid"`
	AssetAmount   uint64 `json:"aamt"`
	AssetReceiver string `json:"arcv"`
	AssetCloseTo  string `json:"aclose"`
}

func (t *pendingTxn) toDomain() domain.PendingTransaction {
	p := domain.PendingTransaction{
		Type:       domain.TxType(t.Type),
		Sender:     t.Sender,
		Fee:        t.Fee,
		Note:       t.Note,
		FirstValid: t.FirstValid,
		LastValid:  t.LastValid,
	}
	if domain.TxType(t.Type) == domain.TxTypeAssetTransfer {
		p.Receiver = t.AssetReceiver
		p.Amount = t.AssetAmount
		p.AssetID = t.AssetID
		p.CloseTo = t.AssetCloseTo
	} else {
		p.Receiver = t.Receiver
		p.Amount = t.Amount
		p.CloseTo = t.CloseTo
	}
	return p
}
