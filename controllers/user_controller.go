package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/workflow"
)

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on a successful sign in
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// CreateAccountRequest represents the request body for creating a staff account
type CreateAccountRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	AccountType string `json:"accountType" binding:"required,account_type"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateUserRequest represents the request body for updating an account
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName" binding:"omitempty,min=1"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password"`
	AccountType *string `json:"accountType" binding:"omitempty,account_type"`
	IsActive    *bool   `json:"isActive"`
}

// ChangePasswordRequest represents the request body for changing one's own password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, expiresAt, err := services.NewTokenService(config.GetConfig()).Issue(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// GetAllUsers handles GET /api/v1/auth/getAllUsers?accountType=
func GetAllUsers(c *gin.Context) {
	if _, _, ok := currentUser(c); !ok {
		return
	}

	users, err := services.NewUserService(config.GetDB()).ListUsers(c.Request.Context(), c.Query("accountType"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, users)
}

// CreateAccount handles POST /api/v1/auth/create-account
func CreateAccount(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).CreateUser(c.Request.Context(), actor, services.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		AccountType: workflow.AccountType(req.AccountType),
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/v1/auth/updateUser/:id
func UpdateUser(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	in := services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		IsActive:  req.IsActive,
	}
	if req.AccountType != nil {
		t := workflow.AccountType(*req.AccountType)
		in.AccountType = &t
	}

	user, err := services.NewUserService(config.GetDB()).UpdateUser(c.Request.Context(), actor, id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/auth/deleteUser/:id
func DeleteUser(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.NewUserService(config.GetDB()).DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// ChangePassword handles POST /api/v1/auth/change-password
func ChangePassword(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := services.NewUserService(config.GetDB()).ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "Password updated"})
}
