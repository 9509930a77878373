package server

import (
	"net/http"

	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) listCategoriesHandler(c *gin.Context) {
	items, err := s.svc.ListCategories(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createCategoryHandler(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := s.svc.CreateCategory(c.Request.Context(), identity(c).UserID, tracker.CategoryInput{Name: req.Name, Color: req.Color})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategoryHandler(c *gin.Context) {
	id, ok := pathID(c, "Category")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := s.svc.UpdateCategory(c.Request.Context(), identity(c).UserID, id, tracker.CategoryInput{Name: req.Name, Color: req.Color})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategoryHandler(c *gin.Context) {
	id, ok := pathID(c, "Category")
	if !ok {
		return
	}
	res, err := s.svc.DeleteCategory(c.Request.Context(), identity(c).UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
