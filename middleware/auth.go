package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/workflow"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Validate rejects tokens that carry an unknown account type.
func (c CustomClaims) Validate(ctx context.Context) error {
	if !workflow.AccountType(c.Role).IsValid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// AccountType returns the role carried by the token.
func (c CustomClaims) AccountType() workflow.AccountType {
	return workflow.AccountType(c.Role)
}

// NewValidator builds the HS256 validator shared by HTTP and websocket auth.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// ExtractToken reads the token from the Authorization header. Both
// "Bearer <token>" and a bare token are accepted because dashboard clients
// send either form. Websocket handshakes may pass ?token= instead since
// browsers cannot set headers on them.
func ExtractToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		parts := strings.Fields(header)
		switch {
		case len(parts) == 2 && strings.EqualFold(parts[0], "bearer"):
			return parts[1], nil
		case len(parts) == 1 && !strings.EqualFold(parts[0], "bearer"):
			return parts[0], nil
		default:
			return "", errors.New("authorization header format must be Bearer {token} or {token}")
		}
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token"), nil
	}
	return "", nil
}

func writeTokenError(w http.ResponseWriter, _ *http.Request, err error) {
	log.Printf("Encountered error while validating JWT: %v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
		log.Printf("Failed to write error response: %v", writeErr)
	}
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}
	return EnsureValidTokenWith(jwtValidator)
}

// EnsureValidTokenWith wraps an existing validator.
func EnsureValidTokenWith(jwtValidator *validator.Validator) gin.HandlerFunc {
	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(writeTokenError),
		jwtmiddleware.WithTokenExtractor(ExtractToken),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set("user_id", token.RegisteredClaims.Subject)
			c.Set("validated_claims", token)
			c.Request = r
			passed = true

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetUserID extracts the numeric user ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	id, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil || id == 0 {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a valid identifier"}
	}

	return uint(id), nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get("validated_claims")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetRole returns the account type carried by the token
func GetRole(c *gin.Context) (workflow.AccountType, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return "", err
	}
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok {
		return "", &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}
	return custom.AccountType(), nil
}

// RequireRole is a middleware that lets only the listed account types through.
// SuperAdmin passes wherever Admin does.
func RequireRole(roles ...workflow.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			c.PureJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			c.Abort()
			return
		}

		if !roleAllowed(role, roles) {
			c.PureJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_ROLE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func roleAllowed(role workflow.AccountType, allowed []workflow.AccountType) bool {
	for _, r := range allowed {
		if role == r || (r == workflow.Admin && role == workflow.SuperAdmin) {
			return true
		}
	}
	return false
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
