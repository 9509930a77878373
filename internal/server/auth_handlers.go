package server

import (
	"errors"
	"net/http"

	"budgettracker/internal/tracker"
	"budgettracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName,omitempty"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// startSession issues a token, sets the cookie and writes {user, token}.
func (s *Server) startSession(c *gin.Context, status int, u *models.User) {
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSessionCookie(c, token)
	c.JSON(status, gin.H{"user": newUserResponse(u), "token": token})
}

func (s *Server) signupHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"fullName"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := s.svc.Signup(c.Request.Context(), tracker.SignupInput{Email: req.Email, Password: req.Password, FullName: req.FullName})
	if err != nil {
		writeError(c, err)
		return
	}
	s.startSession(c, http.StatusCreated, u)
}

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.startSession(c, http.StatusOK, u)
}

func (s *Server) logoutHandler(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) meHandler(c *gin.Context) {
	u, err := s.svc.User(c.Request.Context(), identity(c).UserID)
	if errors.Is(err, tracker.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(u)})
}
