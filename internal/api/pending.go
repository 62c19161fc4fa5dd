package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vietddude/algowatch/internal/account/pending"
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/validation"
)

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := validation.Address("address", address); err != nil {
		ERROR(w, err)
		return
	}

	snap, err := s.deps.Chain.PendingTransactions(r.Context(), address, s.opts.PendingMax)
	if err != nil {
		ERROR(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

// handlePendingStream polls the pool for as long as the client is connected
// and pushes every snapshot as a server-sent event.
func (s *Server) handlePendingStream(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := validation.Address("address", address); err != nil {
		ERROR(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		ERROR(w, fmt.Errorf("streaming unsupported"))
		return
	}

	session := uuid.NewString()
	log := s.log.With("session", session, "address", address)

	snapshots := make(chan *domain.PendingSnapshot, 1)
	poller := pending.NewPoller(s.deps.Chain, pending.Config{
		Address:  address,
		Interval: s.opts.PendingInterval,
		Max:      s.opts.PendingMax,
	}, func(snap *domain.PendingSnapshot) {
		// Keep only the newest snapshot if the client is slow.
		select {
		case <-snapshots:
		default:
		}
		snapshots <- snap
	})

	if err := poller.Start(r.Context()); err != nil {
		ERROR(w, err)
		return
	}
	defer poller.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": session %s\n\n", session)
	flusher.Flush()

	log.Debug("Pending stream opened")
	defer log.Debug("Pending stream closed")

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-snapshots:
			data, err := json.Marshal(snap)
			if err != nil {
				log.Warn("Failed to encode snapshot", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: pending\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
