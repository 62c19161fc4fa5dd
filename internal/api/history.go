package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/core/domain"
)

const dayLayout = "2006-01-02"

// txView is a transaction decorated for display relative to one account.
type txView struct {
	*domain.Transaction
	Direction     domain.Direction `json:"direction"`
	UnitName      string           `json:"unit_name,omitempty"`
	DisplayAmount string           `json:"display_amount,omitempty"`
	DisplayFee    string           `json:"display_fee"`
}

type itemView struct {
	Kind        domain.ItemKind `json:"kind"`
	Transaction *txView         `json:"transaction,omitempty"`
	Date        string          `json:"date,omitempty"`
}

type historyResponse struct {
	Address   string     `json:"address"`
	Items     []itemView `json:"items"`
	NextToken string     `json:"next_token,omitempty"`
	LastDay   string     `json:"last_day,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	params := r.URL.Query()

	q, err := s.parseHistoryQuery(address, params)
	if err != nil {
		ERROR(w, err)
		return
	}

	opts := []history.Option{history.WithLocation(s.opts.Location), history.WithClock(s.now)}
	if next := params.Get("next"); next != "" {
		opts = append(opts, history.WithStartToken(next))
		if v := params.Get("last_day"); v != "" {
			day, err := time.ParseInLocation(dayLayout, v, s.opts.Location)
			if err != nil {
				ERROR(w, &domain.ValidationError{Field: "last_day", Reason: "expected YYYY-MM-DD"})
				return
			}
			opts = append(opts, history.WithLastDay(day))
		}
	}

	pager, err := history.NewPager(s.deps.Source, q, opts...)
	if err != nil {
		ERROR(w, err)
		return
	}

	page, err := pager.Next(r.Context())
	if err != nil && !errors.Is(err, history.ErrExhausted) {
		s.log.Warn("History load failed", "address", address, "error", err)
		ERROR(w, err)
		return
	}

	resp := historyResponse{Address: address, Items: []itemView{}}
	if page != nil {
		resp.Items = s.itemViews(r.Context(), address, page.Items)
		resp.NextToken = page.NextToken
		if !page.LastDay.IsZero() {
			resp.LastDay = page.LastDay.Format(dayLayout)
		}
	}
	JSON(w, http.StatusOK, resp)
}

func (s *Server) parseHistoryQuery(address string, params url.Values) (history.Query, error) {
	q := history.Query{
		Address:  address,
		TxType:   domain.TxType(params.Get("type")),
		PageSize: s.opts.PageSize,
		Filter:   domain.DateFilter{Kind: domain.DateFilterKind(params.Get("filter"))},
	}

	if v := params.Get("asset_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return q, &domain.ValidationError{Field: "asset_id", Reason: "must be an unsigned integer"}
		}
		q.AssetID = &id
	}

	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return q, &domain.ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
		}
		q.PageSize = n
	}

	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"from", &q.Filter.From}, {"to", &q.Filter.To}} {
		v := params.Get(f.name)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(dayLayout, v, s.opts.Location)
		if err != nil {
			return q, &domain.ValidationError{Field: f.name, Reason: "expected YYYY-MM-DD"}
		}
		*f.dst = t
	}
	if q.Filter.Kind == "" && (!q.Filter.From.IsZero() || !q.Filter.To.IsZero()) {
		q.Filter.Kind = domain.DateFilterCustom
	}

	return q, q.Validate()
}

func (s *Server) itemViews(ctx context.Context, address string, items []domain.HistoryItem) []itemView {
	assets := s.resolveAssets(ctx, items)

	views := make([]itemView, 0, len(items))
	for _, it := range items {
		if it.Kind == domain.ItemKindSeparator {
			views = append(views, itemView{Kind: it.Kind, Date: it.Date.Format(dayLayout)})
			continue
		}
		views = append(views, itemView{Kind: it.Kind, Transaction: newTxView(it.Transaction, address, assets)})
	}
	return views
}

// resolveAssets looks up display parameters of every asset on the page.
// Unknown assets are left out and rendered without display amounts.
func (s *Server) resolveAssets(ctx context.Context, items []domain.HistoryItem) map[uint64]*domain.Asset {
	assets := map[uint64]*domain.Asset{domain.AlgoAssetID: &domain.Algo}
	for _, it := range items {
		if it.Transaction == nil {
			continue
		}
		id := it.Transaction.AssetID
		if _, ok := assets[id]; ok {
			continue
		}
		a, err := s.deps.Chain.Asset(ctx, id)
		if err != nil {
			s.log.Debug("Asset lookup failed", "asset_id", id, "error", err)
			assets[id] = nil
			continue
		}
		assets[id] = a
	}
	return assets
}

func newTxView(tx *domain.Transaction, address string, assets map[uint64]*domain.Asset) *txView {
	v := &txView{
		Transaction: tx,
		Direction:   tx.Direction(address),
		DisplayFee:  domain.Algo.Format(tx.Fee).String(),
	}
	if a := assets[tx.AssetID]; a != nil {
		v.UnitName = a.UnitName
		v.DisplayAmount = a.Format(tx.Amount).String()
	}
	return v
}
