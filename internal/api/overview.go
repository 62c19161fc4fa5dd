package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/core/domain"
)

type overviewResponse struct {
	Address   string                      `json:"address"`
	Account   *domain.Account             `json:"account,omitempty"`
	Contact   *domain.Contact             `json:"contact,omitempty"`
	Pending   []domain.PendingTransaction `json:"pending"`
	Items     []itemView                  `json:"items"`
	NextToken string                      `json:"next_token,omitempty"`
	LastDay   string                      `json:"last_day,omitempty"`
}

// handleOverview loads the first history page and the pending pool together.
// Pending entries already confirmed on the first page are dropped.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	q := history.Query{Address: address, PageSize: s.opts.PageSize}
	pager, err := history.NewPager(s.deps.Source, q, history.WithLocation(s.opts.Location), history.WithClock(s.now))
	if err != nil {
		ERROR(w, err)
		return
	}

	var (
		page *history.Page
		snap *domain.PendingSnapshot
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		page, err = pager.Next(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.deps.Chain.PendingTransactions(ctx, address, s.opts.PendingMax)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("Overview load failed", "address", address, "error", err)
		ERROR(w, err)
		return
	}

	resp := overviewResponse{
		Address:   address,
		Pending:   history.MergePending(snap.Transactions, page.Transactions()),
		Items:     s.itemViews(r.Context(), address, page.Items),
		NextToken: page.NextToken,
	}
	if resp.Pending == nil {
		resp.Pending = []domain.PendingTransaction{}
	}
	if !page.LastDay.IsZero() {
		resp.LastDay = page.LastDay.Format(dayLayout)
	}

	if s.deps.Accounts != nil {
		if acc, err := s.deps.Accounts.Get(r.Context(), address); err == nil {
			resp.Account = acc
		}
	}
	if s.deps.Contacts != nil {
		if c, err := s.deps.Contacts.GetByAddress(r.Context(), address); err == nil {
			resp.Contact = c
		}
	}

	JSON(w, http.StatusOK, resp)
}
