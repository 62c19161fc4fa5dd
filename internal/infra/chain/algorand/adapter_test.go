package algorand

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/infra/rpc/provider"
)

const testAddr = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	idx := provider.NewHTTPProvider(provider.HTTPConfig{
		Name: "indexer", BaseURL: server.URL, TokenHeader: IndexerTokenHeader, Timeout: 5 * time.Second,
	})
	algod := provider.NewHTTPProvider(provider.HTTPConfig{
		Name: "algod", BaseURL: server.URL, TokenHeader: AlgodTokenHeader, Timeout: 5 * time.Second,
	})
	return NewAdapter("testnet", idx, algod)
}

func TestAdapter_AccountTransactions(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/accounts/"+testAddr+"/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "2" {
			t.Errorf("expected limit=2, got %q", q.Get("limit"))
		}
		if q.Get("next") != "cursor-1" {
			t.Errorf("expected next=cursor-1, got %q", q.Get("next"))
		}
		if q.Get("asset-id") != "31566704" {
			t.Errorf("expected asset-id=31566704, got %q", q.Get("asset-id"))
		}
		if q.Get("after-time") != "2024-03-01T00:00:00Z" {
			t.Errorf("unexpected after-time %q", q.Get("after-time"))
		}
		if q.Get("tx-type") != "axfer" {
			t.Errorf("expected tx-type=axfer, got %q", q.Get("tx-type"))
		}

		_, _ = w.Write([]byte(`{
			"current-round": 1000,
			"next-token": "cursor-2",
			"transactions": [
				{
					"id": "TXA", "tx-type": "axfer", "sender": "S1", "fee": 1000,
					"first-valid": 10, "last-valid": 1010, "note": "aGVsbG8=",
					"confirmed-round": 20, "round-time": 1709294400,
					"asset-transfer-transaction": {"receiver": "R1", "amount": 5000000, "asset-id": 31566704}
				},
				{
					"id": "TXB", "tx-type": "axfer", "sender": "S2", "fee": 1000,
					"confirmed-round": 19, "round-time": 1709290000,
					"asset-transfer-transaction": {"receiver": "R2", "amount": 1, "asset-id": 31566704, "close-to": "C"}
				}
			]
		}`))
	})

	asset := uint64(31566704)
	page, err := adapter.AccountTransactions(context.Background(), domain.TxQuery{
		Address: testAddr,
		AssetID: &asset,
		After:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TxType:  domain.TxTypeAssetTransfer,
		Limit:   2,
		Next:    "cursor-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.NextToken != "cursor-2" {
		t.Errorf("expected next token cursor-2, got %q", page.NextToken)
	}
	if len(page.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(page.Transactions))
	}

	tx := page.Transactions[0]
	if tx.ID != "TXA" || tx.Receiver != "R1" || tx.Amount != 5000000 || tx.AssetID != 31566704 {
		t.Errorf("unexpected tx %+v", tx)
	}
	if string(tx.Note) != "hello" {
		t.Errorf("expected decoded note hello, got %q", tx.Note)
	}
	if !tx.RoundTime.Equal(time.Unix(1709294400, 0)) {
		t.Errorf("unexpected round time %v", tx.RoundTime)
	}
	if page.Transactions[1].CloseTo != "C" {
		t.Errorf("expected close-to C, got %q", page.Transactions[1].CloseTo)
	}
}

func TestAdapter_AccountTransactions_ShortPageEnds(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next-token": "more", "transactions": [
			{"id": "ONLY", "tx-type": "pay", "sender": "S", "round-time": 1,
			 "payment-transaction": {"receiver": "R", "amount": 7}}
		]}`))
	})

	page, err := adapter.AccountTransactions(context.Background(), domain.TxQuery{Address: testAddr, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextToken != "" {
		t.Errorf("expected no next token on a short page, got %q", page.NextToken)
	}
	if page.Transactions[0].Amount != 7 {
		t.Errorf("expected amount 7, got %d", page.Transactions[0].Amount)
	}
}

func TestAdapter_PendingTransactions(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/accounts/"+testAddr+"/transactions/pending" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total-transactions": 2,
			"top-transactions": []any{
				map[string]any{"txn": map[string]any{
					"type": "pay", "snd": "S", "rcv": "R", "amt": 100, "fee": 1000, "fv": 5, "lv": 1005,
				}},
				map[string]any{"txn": map[string]any{
					"type": "axfer", "snd": "S", "arcv": "R", "aamt": 3, "xaid": 9, "fv": 6, "lv": 1006,
				}},
			},
		})
	})

	snap, err := adapter.PendingTransactions(context.Background(), testAddr, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Total != 2 || len(snap.Transactions) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if p := snap.Transactions[0]; p.Receiver != "R" || p.Amount != 100 || p.AssetID != 0 {
		t.Errorf("unexpected payment %+v", p)
	}
	if p := snap.Transactions[1]; p.Receiver != "R" || p.Amount != 3 || p.AssetID != 9 {
		t.Errorf("unexpected asset transfer %+v", p)
	}
}

func TestAdapter_Asset(t *testing.T) {
	calls := 0
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v2/assets/31566704" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"asset": {"index": 31566704, "params": {"name": "USDC", "unit-name": "USDC", "decimals": 6}}}`))
	})

	algo, err := adapter.Asset(context.Background(), 0)
	if err != nil || algo.UnitName != "ALGO" {
		t.Fatalf("expected native ALGO, got %+v, %v", algo, err)
	}
	if calls != 0 {
		t.Errorf("native asset should not hit the indexer")
	}

	for i := 0; i < 2; i++ {
		a, err := adapter.Asset(context.Background(), 31566704)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Decimals != 6 || a.UnitName != "USDC" {
			t.Errorf("unexpected asset %+v", a)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 indexer call, got %d", calls)
	}
}
