package server

import (
	"net/http"

	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

// expenseRequest accepts the category under either "category" or "categoryId".
type expenseRequest struct {
	Category   *string     `json:"category"`
	CategoryID *string     `json:"categoryId"`
	Amount     *amountJSON `json:"amount"`
	Date       *string     `json:"date"`
	Notes      *string     `json:"notes"`
}

func (r expenseRequest) input() tracker.ExpenseInput {
	cat := r.Category
	if cat == nil {
		cat = r.CategoryID
	}
	return tracker.ExpenseInput{Category: cat, Amount: r.Amount.value(), Date: r.Date, Notes: r.Notes}
}

func (s *Server) listExpensesHandler(c *gin.Context) {
	items, err := s.svc.ListExpensesForMonth(c.Request.Context(), identity(c).UserID, c.Query("month"), c.Query("categoryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) rangeExpensesHandler(c *gin.Context) {
	items, err := s.svc.ListExpensesInRange(c.Request.Context(), identity(c).UserID, c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// createExpenseHandler records the expense and answers with the
// reconciliation of its category for the expense's month.
func (s *Server) createExpenseHandler(c *gin.Context) {
	var req expenseRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.CreateExpense(c.Request.Context(), identity(c).UserID, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) getExpenseHandler(c *gin.Context) {
	id, ok := pathID(c, "Expense")
	if !ok {
		return
	}
	e, err := s.svc.Expense(c.Request.Context(), identity(c).UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) updateExpenseHandler(c *gin.Context) {
	id, ok := pathID(c, "Expense")
	if !ok {
		return
	}
	var req expenseRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := s.svc.UpdateExpense(c.Request.Context(), identity(c).UserID, id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteExpenseHandler(c *gin.Context) {
	id, ok := pathID(c, "Expense")
	if !ok {
		return
	}
	if err := s.svc.DeleteExpense(c.Request.Context(), identity(c).UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (s *Server) summaryHandler(c *gin.Context) {
	sum, err := s.svc.Summary(c.Request.Context(), identity(c).UserID, c.Query("month"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
