package http

import (
	"net/http"
)

type debtPaymentJSON struct {
	Debt        debtJSON         `json:"debt"`
	Transaction *transactionJSON `json:"transaction,omitempty"`
	Applied     bool             `json:"applied"`
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	principal, err := parseAmount(req.Principal)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "principal: "+err.Error())
		return
	}
	d, err := s.ledger.CreateDebt(r.Context(), req.Label, principal,
		req.InstallmentCount, req.InstallmentsPaid, req.DueDay)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toDebt(d))
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.ListDebts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]debtJSON, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebt(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveDebt(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

// handlePayDebt confirms one installment payment. Confirming a debt that
// is already paid this period, or fully settled, returns the unchanged
// debt with applied=false rather than an error.
func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	debt, txn, err := s.ledger.ConfirmDebtPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := debtPaymentJSON{Debt: toDebt(debt), Applied: txn != nil}
	if txn != nil {
		t := toTransaction(*txn)
		resp.Transaction = &t
		s.invalidateReports()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetDebt(w http.ResponseWriter, r *http.Request) {
	d, err := s.ledger.ResetDebtPeriod(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toDebt(d))
}
