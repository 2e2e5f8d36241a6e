package http

import (
	"log/slog"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
)

type (
	balanceSheetJSON struct {
		CashPosition       moneyJSON `json:"cash_position"`
		UnbilledCreditCard moneyJSON `json:"unbilled_credit_card"`
		TotalDebtRemaining moneyJSON `json:"total_debt_remaining"`
		FixedAssetsTotal   moneyJSON `json:"fixed_assets_total"`
		NetWorth           moneyJSON `json:"net_worth"`
	}

	reminderJSON struct {
		RefID  string    `json:"ref_id"`
		Label  string    `json:"label"`
		Amount moneyJSON `json:"amount"`
		Day    int       `json:"day"`
		Kind   string    `json:"kind"`
	}

	forecastLineJSON struct {
		Label  string    `json:"label"`
		Amount moneyJSON `json:"amount"`
		Kind   string    `json:"kind"`
	}

	forecastPeriodJSON struct {
		Index int                `json:"index"`
		Start string             `json:"start"`
		End   string             `json:"end"`
		Lines []forecastLineJSON `json:"lines"`
		Total moneyJSON          `json:"total"`
	}

	verdictJSON struct {
		ProjectedIncome  moneyJSON `json:"projected_income"`
		ProjectedExpense moneyJSON `json:"projected_expense"`
		SafetyMargin     moneyJSON `json:"safety_margin"`
		Remaining        moneyJSON `json:"remaining"`
		Balanced         bool      `json:"balanced"`
	}

	debtStatsJSON struct {
		TotalRemaining moneyJSON `json:"total_remaining"`
		PendingMonthly moneyJSON `json:"pending_monthly"`
		PaidCount      int       `json:"paid_count"`
	}

	categoryJSON struct {
		Name   string    `json:"name"`
		Amount moneyJSON `json:"amount"`
	}

	periodTotalsJSON struct {
		Start   string    `json:"start,omitempty"`
		End     string    `json:"end,omitempty"`
		Income  moneyJSON `json:"income"`
		Expense moneyJSON `json:"expense"`
	}

	dayTotalsJSON struct {
		Date    string    `json:"date"`
		Income  moneyJSON `json:"income"`
		Expense moneyJSON `json:"expense"`
	}

	monthTotalsJSON struct {
		YearMonth string    `json:"year_month"`
		Income    moneyJSON `json:"income"`
		Expense   moneyJSON `json:"expense"`
	}
)

func toBalanceSheet(b core.BalanceSheet) balanceSheetJSON {
	return balanceSheetJSON{
		CashPosition:       toMoney(b.CashPosition),
		UnbilledCreditCard: toMoney(b.UnbilledCreditCard),
		TotalDebtRemaining: toMoney(b.TotalDebtRemaining),
		FixedAssetsTotal:   toMoney(b.FixedAssetsTotal),
		NetWorth:           toMoney(b.NetWorth),
	}
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	if sheet, ok := s.balanceCache.Get(reportKey); ok {
		slog.DebugContext(r.Context(), "Balance sheet cache hit")
		writeJSON(w, http.StatusOK, toBalanceSheet(sheet))
		return
	}
	sheet, err := s.ledger.BalanceSheet(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.balanceCache.Set(reportKey, sheet)
	writeJSON(w, http.StatusOK, toBalanceSheet(sheet))
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.ledger.Reminders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]reminderJSON, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, reminderJSON{
			RefID:  rem.RefID,
			Label:  rem.Label,
			Amount: toMoney(rem.Amount),
			Day:    rem.Day,
			Kind:   string(rem.Kind),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.forecastCache.Get(reportKey)
	if !ok {
		var err error
		periods, err = s.ledger.CashFlowForecast(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.forecastCache.Set(reportKey, periods)
	} else {
		slog.DebugContext(r.Context(), "Forecast cache hit")
	}

	out := make([]forecastPeriodJSON, 0, len(periods))
	for _, p := range periods {
		pj := forecastPeriodJSON{
			Index: p.Index,
			Start: p.Start.ISO(),
			End:   p.End.ISO(),
			Lines: make([]forecastLineJSON, 0, len(p.Lines)),
			Total: toMoney(p.Total),
		}
		for _, line := range p.Lines {
			pj.Lines = append(pj.Lines, forecastLineJSON{
				Label:  line.Label,
				Amount: toMoney(line.Amount),
				Kind:   string(line.Kind),
			})
		}
		out = append(out, pj)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFeasibility(w http.ResponseWriter, r *http.Request) {
	verdict, err := s.ledger.Feasibility(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdictJSON{
		ProjectedIncome:  toMoney(verdict.ProjectedIncome),
		ProjectedExpense: toMoney(verdict.ProjectedExpense),
		SafetyMargin:     toMoney(verdict.SafetyMargin),
		Remaining:        toMoney(verdict.Remaining),
		Balanced:         verdict.Balanced,
	})
}

func (s *Server) handleDebtStats(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.ListDebts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats := services.DebtStatsFor(debts)
	writeJSON(w, http.StatusOK, debtStatsJSON{
		TotalRemaining: toMoney(stats.TotalRemaining),
		PendingMonthly: toMoney(stats.PendingMonthly),
		PaidCount:      stats.PaidCount,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]categoryJSON, 0)
	for _, c := range services.ExpenseByCategory(txs) {
		out = append(out, categoryJSON{Name: c.Name, Amount: toMoney(c.Amount)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePeriodTotals sums transactions over [start, end]. Both bounds are
// required ISO dates.
func (s *Server) handlePeriodTotals(w http.ResponseWriter, r *http.Request) {
	start, err := core.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := core.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	totals := services.PeriodTotals(txs, start, end)
	writeJSON(w, http.StatusOK, periodTotalsJSON{
		Start:   start.ISO(),
		End:     end.ISO(),
		Income:  toMoney(totals.Income),
		Expense: toMoney(totals.Expense),
	})
}

func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30, 365)
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	series := services.DailySeries(txs, s.today(), days)
	out := make([]dayTotalsJSON, 0, len(series))
	for _, p := range series {
		out = append(out, dayTotalsJSON{
			Date:    p.Date.ISO(),
			Income:  toMoney(p.Income),
			Expense: toMoney(p.Expense),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 12, 60)
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	series := services.MonthlySeries(txs, s.today(), months)
	out := make([]monthTotalsJSON, 0, len(series))
	for _, p := range series {
		out = append(out, monthTotalsJSON{
			YearMonth: p.YearMonth,
			Income:    toMoney(p.Income),
			Expense:   toMoney(p.Expense),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
