package controllers

import (
	"context"
	"net/http"

	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
)

// Authenticator is the auth service surface the HTTP layer uses.
type Authenticator interface {
	Register(ctx context.Context, firstName, lastName, userEmail, password string) *services.ServiceError
	Login(ctx context.Context, userEmail, password string) (string, *models.User, *services.ServiceError)
	RequestPasswordReset(ctx context.Context, userEmail string) (string, *services.ServiceError)
	ResetPassword(ctx context.Context, token, password string) *services.ServiceError
}

type AuthController struct {
	auth Authenticator
}

func NewAuthController(auth Authenticator) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if serviceErr := ac.auth.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password); serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"message": serviceErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully."})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, user, serviceErr := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"isAdmin":   user.IsAdmin,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	msg, serviceErr := ac.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing token or password."})
		return
	}

	if serviceErr := ac.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); serviceErr != nil {
		c.JSON(serviceErr.StatusCode, gin.H{"message": serviceErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}
