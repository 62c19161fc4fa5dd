package domain

// PendingTransaction is a transaction seen in the node's pool before it is
// confirmed. It carries no round information.
type PendingTransaction struct {
	Type       TxType `json:"tx_type"`
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver,omitempty"`
	CloseTo    string `json:"close_to,omitempty"`
	Amount     uint64 `json:"amount"`
	AssetID    uint64 `json:"asset_id"`
	Fee        uint64 `json:"fee"`
	Note       []byte `json:"note,omitempty"`
	FirstValid uint64 `json:"first_valid"`
	LastValid  uint64 `json:"last_valid"`
}

// Fingerprint matches Transaction.Fingerprint for the same transaction body.
func (p *PendingTransaction) Fingerprint() string {
	return fingerprint(p.Sender, p.Receiver, p.Amount, p.AssetID, p.FirstValid, p.LastValid, p.Note)
}

// PendingSnapshot is the full set of pool transactions for an account at one poll.
type PendingSnapshot struct {
	Address      string               `json:"address"`
	Transactions []PendingTransaction `json:"transactions"`
	Total        uint64               `json:"total"`
	PolledAt     int64                `json:"polled_at"`
}
