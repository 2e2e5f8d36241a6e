package http

import (
	"net/http"

	"ledger/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := req.toDomain(s.today())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.ledger.AddTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransaction(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransaction(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.ledger.AddCard(r.Context(), core.Card{
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
		PaymentDay: req.PaymentDay,
		Color:      req.Color,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toCard(created))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ledger.Cards(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]cardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCard(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveCard(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	var req budgetItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := req.toDomain(s.today())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.ledger.AddBudgetItem(r.Context(), item)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toBudgetItem(created))
}

func (s *Server) handleListBudgetItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.BudgetItems(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]budgetItemJSON, 0, len(items))
	for _, b := range items {
		out = append(out, toBudgetItem(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveBudgetItem(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expense, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.ledger.AddRecurring(r.Context(), expense)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toRecurring(created))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.Recurring(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]recurringJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toRecurring(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveRecurring(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.ledger.SetInitialPosition(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toPosition(p))
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.Position(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPosition(p))
}
