package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/validation"
)

func (s *Server) handleAccountsList(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Accounts.List(r.Context())
	if err != nil {
		ERROR(w, err)
		return
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	JSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAccountsSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string             `json:"address"`
		Name    string             `json:"name"`
		Type    domain.AccountType `json:"type"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		ERROR(w, err)
		return
	}
	if req.Type == "" {
		req.Type = domain.AccountTypeStandard
	}

	account := &domain.Account{Address: req.Address, Name: req.Name, Type: req.Type}
	if err := validation.Struct(account); err != nil {
		ERROR(w, err)
		return
	}
	if err := s.deps.Accounts.Save(r.Context(), account); err != nil {
		ERROR(w, err)
		return
	}
	s.log.Info("Account saved", "address", account.Address, "type", account.Type)
	JSON(w, http.StatusOK, account)
}

func (s *Server) handleAccountsDelete(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := s.deps.Accounts.Delete(r.Context(), address); err != nil {
		ERROR(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContactsList(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.deps.Contacts.List(r.Context())
	if err != nil {
		ERROR(w, err)
		return
	}
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	JSON(w, http.StatusOK, contacts)
}

func (s *Server) handleContactsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		ERROR(w, err)
		return
	}

	contact := &domain.Contact{Name: req.Name, Address: req.Address}
	if err := validation.Struct(contact); err != nil {
		ERROR(w, err)
		return
	}
	if err := s.deps.Contacts.Create(r.Context(), contact); err != nil {
		ERROR(w, err)
		return
	}
	JSON(w, http.StatusCreated, contact)
}

func (s *Server) handleContactsDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		ERROR(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNodesList(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.deps.Nodes.List(r.Context())
	if err != nil {
		ERROR(w, err)
		return
	}
	if nodes == nil {
		nodes = []*domain.Node{}
	}
	JSON(w, http.StatusOK, nodes)
}

func (s *Server) handleNodesSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"          validate:"required,max=64"`
		Network      string `json:"network"       validate:"required"`
		AlgodURL     string `json:"algod_url"     validate:"required,url"`
		AlgodToken   string `json:"algod_token"`
		IndexerURL   string `json:"indexer_url"   validate:"required,url"`
		IndexerToken string `json:"indexer_token"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		ERROR(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		ERROR(w, err)
		return
	}

	node := &domain.Node{
		Name:         req.Name,
		Network:      req.Network,
		AlgodURL:     req.AlgodURL,
		AlgodToken:   req.AlgodToken,
		IndexerURL:   req.IndexerURL,
		IndexerToken: req.IndexerToken,
	}
	if err := s.deps.Nodes.Save(r.Context(), node); err != nil {
		ERROR(w, err)
		return
	}

	// Editing the node in use takes effect right away.
	active, err := s.deps.Nodes.GetActive(r.Context(), node.Network)
	if err == nil && active.Name == node.Name {
		node.Active = true
		if s.deps.OnNodeActivated != nil {
			if err := s.deps.OnNodeActivated(r.Context(), active); err != nil {
				ERROR(w, err)
				return
			}
		}
	}
	s.log.Info("Node saved", "node", node.Name, "network", node.Network)
	JSON(w, http.StatusOK, node)
}

func (s *Server) handleNodesActivate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.deps.Nodes.Activate(r.Context(), name); err != nil {
		ERROR(w, err)
		return
	}

	nodes, err := s.deps.Nodes.List(r.Context())
	if err != nil {
		ERROR(w, err)
		return
	}
	var node *domain.Node
	for _, n := range nodes {
		if n.Name == name {
			node = n
			break
		}
	}
	if node == nil {
		ERROR(w, domain.ErrNotFound)
		return
	}

	if s.deps.OnNodeActivated != nil {
		if err := s.deps.OnNodeActivated(r.Context(), node); err != nil {
			s.log.Error("Node switch failed", "node", name, "error", err)
			ERROR(w, err)
			return
		}
	}
	s.log.Info("Node activated", "node", name, "network", node.Network)
	JSON(w, http.StatusOK, node)
}
