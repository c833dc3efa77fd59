package testutil

import (
	"strconv"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/middleware"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/workflow"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(userID uint, role workflow.AccountType) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "orderflow-api",
			Subject: strconv.FormatUint(uint64(userID), 10),
		},
		CustomClaims: &middleware.CustomClaims{
			Role: string(role),
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID uint, role workflow.AccountType) {
	c.Set("user_id", strconv.FormatUint(uint64(userID), 10))
	c.Set("validated_claims", MockValidatedClaims(userID, role))
}

// MockAuthMiddleware simulates a validated token for user
func MockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, user.ID, user.AccountType)
		c.Next()
	}
}

// SignToken issues a real access token for user with cfg's secret
func SignToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, _, err := services.NewTokenService(cfg).Issue(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}
