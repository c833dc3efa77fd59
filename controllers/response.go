package controllers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/middleware"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/utils"
	"github.com/signworks/orderflow-api/workflow"
)

// Pagination describes one page of a list response
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondBindingError(c *gin.Context, err error) {
	c.PureJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondServiceError maps domain and service errors onto HTTP responses
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
		forbiddenErr  *services.ForbiddenError
		authErr       *services.AuthError
		convertedErr  *services.AlreadyConvertedError
		uploadErr     *utils.FileUploadError
		transitionErr *workflow.TransitionError
		mismatchErr   *workflow.RoleMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error())
	case errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
	case errors.Is(err, workflow.ErrUnknownStatus):
		respondError(c, http.StatusBadRequest, "UNKNOWN_STATUS", err.Error())
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error())
	case errors.As(err, &convertedErr):
		respondError(c, http.StatusConflict, "ALREADY_CONVERTED", convertedErr.Error())
	case errors.As(err, &conflictErr):
		respondError(c, http.StatusConflict, "CONFLICT", conflictErr.Message)
	case errors.As(err, &authErr):
		respondError(c, http.StatusUnauthorized, authErr.Code, authErr.Message)
	case errors.As(err, &forbiddenErr):
		respondError(c, http.StatusForbidden, "FORBIDDEN", forbiddenErr.Message)
	case errors.As(err, &transitionErr):
		switch {
		case errors.Is(err, workflow.ErrNotPermitted):
			respondError(c, http.StatusForbidden, "NOT_PERMITTED", transitionErr.Error())
		case errors.Is(err, workflow.ErrNotAssignee):
			respondError(c, http.StatusForbidden, "NOT_ASSIGNEE", transitionErr.Error())
		default:
			respondError(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", transitionErr.Error())
		}
	case errors.As(err, &mismatchErr):
		respondError(c, http.StatusUnprocessableEntity, "ROLE_MISMATCH", mismatchErr.Error())
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again")
	}
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}

// currentUser resolves the authenticated, still active user. The role used
// for authorization comes from the database so changes apply immediately.
func currentUser(c *gin.Context) (*models.User, workflow.Actor, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, workflow.Actor{}, false
	}

	user, err := services.NewUserService(config.GetDB()).GetActiveUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return nil, workflow.Actor{}, false
	}

	return user, workflow.Actor{ID: user.ID, Role: user.AccountType}, true
}

// requestIDFrom prefers the body value and falls back to the Idempotency-Key header
func requestIDFrom(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.GetHeader("Idempotency-Key")
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}
