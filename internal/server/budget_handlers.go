package server

import (
	"net/http"

	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

func (s *Server) listBudgetsHandler(c *gin.Context) {
	items, err := s.svc.ListBudgets(c.Request.Context(), identity(c).UserID, c.Query("month"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// upsertBudgetHandler creates or overwrites the limit of (category, month).
func (s *Server) upsertBudgetHandler(c *gin.Context) {
	var req struct {
		CategoryID string      `json:"categoryId"`
		Month      string      `json:"month"`
		Limit      *amountJSON `json:"limit"`
	}
	if !bindJSON(c, &req) {
		return
	}
	b, err := s.svc.UpsertBudget(c.Request.Context(), identity(c).UserID, tracker.BudgetInput{
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Limit:      req.Limit.value(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBudgetHandler(c *gin.Context) {
	id, ok := pathID(c, "Budget")
	if !ok {
		return
	}
	if err := s.svc.DeleteBudget(c.Request.Context(), identity(c).UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
