package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/workflow"
)

// ChangeStatusRequest represents the request body for moving an order
type ChangeStatusRequest struct {
	OrderID   uint   `json:"orderId" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Note      string `json:"note"`
	RequestID string `json:"requestId"`
}

// ReviewRequest represents the request body for approve and reject
type ReviewRequest struct {
	Note      string `json:"note"`
	RequestID string `json:"requestId"`
}

// AssignOrderRequest represents the request body for assigning an order
type AssignOrderRequest struct {
	UserID    uint   `json:"userId" binding:"required"`
	RequestID string `json:"requestId"`
}

// statuses the cutout desk may move an order into
var cutoutTargets = map[workflow.Status]bool{
	workflow.CutoutInProgress: true,
	workflow.CutoutCompleted:  true,
}

func changeStatus(c *gin.Context, allowed map[workflow.Status]bool) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if allowed != nil {
		target, err := workflow.ParseStatus(req.Status)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !allowed[target] {
			respondError(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION",
				"status "+string(target)+" cannot be set from this endpoint")
			return
		}
	}

	order, err := orderService().ChangeStatus(c.Request.Context(), actor, services.ChangeStatusInput{
		OrderID:   req.OrderID,
		Status:    req.Status,
		Note:      req.Note,
		RequestID: requestIDFrom(c, req.RequestID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// ChangeStatus handles POST /api/v1/admin/changeStatus
func ChangeStatus(c *gin.Context) {
	changeStatus(c, nil)
}

// CutoutChangeStatus handles POST /api/v1/admin/cutout/changeStatus
func CutoutChangeStatus(c *gin.Context) {
	changeStatus(c, cutoutTargets)
}

func review(c *gin.Context, approve bool) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	requestID := requestIDFrom(c, req.RequestID)
	svc := orderService()

	var err error
	var result interface{}
	if approve {
		result, err = svc.Approve(ctx, actor, id, req.Note, requestID)
	} else {
		result, err = svc.Reject(ctx, actor, id, req.Note, requestID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result)
}

// ApproveOrder handles POST /api/v1/admin/orders/:id/approve
func ApproveOrder(c *gin.Context) {
	review(c, true)
}

// RejectOrder handles POST /api/v1/admin/orders/:id/reject
func RejectOrder(c *gin.Context) {
	review(c, false)
}

func assignOrder(c *gin.Context, required workflow.AccountType) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AssignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := orderService().Assign(c.Request.Context(), actor, services.AssignInput{
		OrderID:      id,
		UserID:       req.UserID,
		RequiredRole: required,
		RequestID:    requestIDFrom(c, req.RequestID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// AssignOrder handles POST /api/v1/admin/assignOrder/:id
func AssignOrder(c *gin.Context) {
	assignOrder(c, "")
}

// AssignOrderToCutout handles POST /api/v1/admin/cutout/assignOrder/:id
func AssignOrderToCutout(c *gin.Context) {
	assignOrder(c, workflow.Cutout)
}

// AssignOrderToAccounts handles POST /api/v1/admin/accounts/assignOrderToAccount/:id
func AssignOrderToAccounts(c *gin.Context) {
	assignOrder(c, workflow.Accounts)
}
