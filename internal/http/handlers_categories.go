package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
)

type (
	categoryAddRequest struct {
		Kind  string `json:"kind"`
		Label string `json:"label"`
	}

	cardStatusJSON struct {
		ID               string    `json:"id"`
		Name             string    `json:"name"`
		Balance          moneyJSON `json:"balance"`
		ClosingDay       int       `json:"closing_day"`
		PaymentDay       int       `json:"payment_day"`
		DaysUntilClosing int       `json:"days_until_closing"`
		DaysUntilPayment int       `json:"days_until_payment"`
	}
)

// handleListCategories returns the registered labels for a kind,
// defaulting to expense.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.TransactionKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.Expense
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}
	writeJSON(w, http.StatusOK, s.categories.List(kind))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind := core.TransactionKind(req.Kind)
	if err := s.categories.Add(kind, req.Label); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.categories.List(kind))
}

// handleCardStatus reports each card's lifetime balance and the distance
// to its next cycle anchors.
func (s *Server) handleCardStatus(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ledger.Cards(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	today := s.today().Day()
	out := make([]cardStatusJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardStatusJSON{
			ID:               c.ID,
			Name:             c.Name,
			Balance:          toMoney(services.CardBalance(txs, c.ID)),
			ClosingDay:       c.ClosingDay,
			PaymentDay:       c.PaymentDay,
			DaysUntilClosing: services.DaysUntil(today, c.ClosingDay),
			DaysUntilPayment: services.DaysUntil(today, c.PaymentDay),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
