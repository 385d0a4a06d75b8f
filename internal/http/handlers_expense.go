package http

import (
	"net/http"
	"strconv"

	"spesa/internal/core"
	"spesa/internal/services"
)

type expenseList struct {
	Period   *core.Period   `json:"period,omitempty"`
	Expenses []core.Expense `json:"expenses"`
	Total    core.Money     `json:"total"`
	Count    int            `json:"count"`
}

// handleListExpenses lists every expense newest first, or one month's when
// ?month is given.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var period *core.Period
	if r.URL.Query().Get("month") != "" {
		p, err := ParsePeriodParam(r.URL.Query(), s.now())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		period = &p
	}

	expenses, err := s.tracker.ListExpenses(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := expenseList{Period: period, Expenses: expenses, Count: len(expenses)}
	if out.Expenses == nil {
		out.Expenses = []core.Expense{}
	}
	for _, e := range expenses {
		out.Total = out.Total.Add(e.Amount)
	}
	NewJSONResponse().Data(out).Write(w)
}

// parseExpenseBody reads date, amount and item. A missing date means today.
func (s *Server) parseExpenseBody(w http.ResponseWriter, r *http.Request) (services.ExpenseInput, bool) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return services.ExpenseInput{}, false
	}
	date := body.Get("date")
	if date == "" {
		date = s.now().Format(core.DateLayout)
	}
	in, err := services.ParseExpenseInput(date, body.Get("amount"), body.Get("item"))
	if err != nil {
		s.writeError(w, r, err)
		return services.ExpenseInput{}, false
	}
	return in, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseExpenseBody(w, r)
	if !ok {
		return
	}

	e, err := s.tracker.AddExpense(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+strconv.FormatInt(e.ID, 10)).
		Data(e).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	e, err := s.tracker.GetExpense(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	in, ok := s.parseExpenseBody(w, r)
	if !ok {
		return
	}

	e, err := s.tracker.EditExpense(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	NewJSONResponse().Data(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	d, err := s.tracker.DeleteExpense(r.Context(), id, ParseConfirm(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDecision(w, d)
}
