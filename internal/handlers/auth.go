package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mercuryinvest/mercury-api/internal/apperr"
	"github.com/mercuryinvest/mercury-api/internal/models"
)

// register handles POST /api/auth/register
func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("email, password, firstName and lastName are required"))
		return
	}

	user, token, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

// login handles POST /api/auth/login
func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("email and password are required"))
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": user, "token": token})
}

// me handles GET /api/auth/me
func (s *Server) me(c *gin.Context) {
	user, err := s.auth.UserByID(c.Request.Context(), userID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}
