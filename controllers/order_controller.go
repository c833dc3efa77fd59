package controllers

import (
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/utils"
)

// CreateOrderRequest represents the request body for creating an order. It
// binds from JSON or from a multipart form carrying files.
type CreateOrderRequest struct {
	CustomerID    uint   `json:"customerId" form:"customerId" binding:"required"`
	Requirements  string `json:"requirements" form:"requirements"`
	Dimensions    string `json:"dimensions" form:"dimensions"`
	QueuePosition int    `json:"queuePosition" form:"queuePosition" binding:"gte=0"`
	AssignedToID  *uint  `json:"assignedToId" form:"assignedToId"`
}

// UpdateOrderRequest represents the request body for updating an order.
// Status and AssignedToID are bound only to reject them.
type UpdateOrderRequest struct {
	CustomerID    *uint   `json:"customerId"`
	Requirements  *string `json:"requirements"`
	Dimensions    *string `json:"dimensions"`
	QueuePosition *int    `json:"queuePosition" binding:"omitempty,gte=0"`
	Version       *uint   `json:"version"`
	Status        *string `json:"status"`
	AssignedToID  *uint   `json:"assignedToId"`
}

// UpdateWorkQueueRequest represents a batch of queue positions
type UpdateWorkQueueRequest struct {
	Orders []services.QueueEntry `json:"orders" binding:"required,min=1,dive"`
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}

// ListOrders handles GET /api/v1/admin/getOrders?page=&limit=&status=&search=
func ListOrders(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	orders, total, err := orderService().ListOrders(c.Request.Context(), actor, services.OrderFilter{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": newPagination(page, limit, total),
	})
}

// GetOrder handles GET /api/v1/admin/getOrder/:id
func GetOrder(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := orderService().GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !services.CanView(actor, order) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return
	}

	fillFileURLs(c, order.Files)
	respondSuccess(c, http.StatusOK, order)
}

func fillFileURLs(c *gin.Context, files []models.OrderFile) {
	storage := services.GetStorage()
	if storage == nil {
		return
	}
	for i := range files {
		url, err := storage.URL(c.Request.Context(), files[i].StorageKey)
		if err != nil {
			log.Printf("Failed to resolve URL for file %d: %v", files[i].ID, err)
			continue
		}
		files[i].URL = url
	}
}

// attachedFiles collects multipart files by kind and validates them all
// before anything is written
func attachedFiles(c *gin.Context) (map[models.FileKind][]*multipart.FileHeader, error) {
	found := map[models.FileKind][]*multipart.FileHeader{}
	if !strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		return found, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, &services.ValidationError{Field: "files", Message: "invalid multipart form"}
	}

	maxBytes := config.GetConfig().MaxUploadBytes()
	for _, kind := range models.FileKinds {
		headers := form.File[string(kind)]
		for _, fh := range headers {
			if err := utils.ValidateOrderFile(string(kind), fh, maxBytes); err != nil {
				return nil, err
			}
		}
		if len(headers) > 0 {
			found[kind] = headers
		}
	}
	return found, nil
}

// CreateOrder handles POST /api/v1/admin/createOrder - JSON or multipart with
// image, images, cadFiles and textFiles parts
func CreateOrder(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	files, err := attachedFiles(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := orderService().CreateOrder(ctx, actor, services.CreateOrderInput{
		CustomerID:    req.CustomerID,
		Requirements:  req.Requirements,
		Dimensions:    req.Dimensions,
		QueuePosition: req.QueuePosition,
		AssignedToID:  req.AssignedToID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if len(files) > 0 {
		cfg := config.GetConfig()
		fileService := services.NewFileService(config.GetDB(), services.GetStorage(), cfg.MaxUploadBytes())
		for _, kind := range models.FileKinds {
			if len(files[kind]) == 0 {
				continue
			}
			if _, err := fileService.Upload(ctx, actor, order.ID, kind, files[kind]); err != nil {
				log.Printf("Order %s created but %s upload failed: %v", order.OrderNumber, kind, err)
				respondServiceError(c, err)
				return
			}
		}
		if order, err = orderService().GetOrder(ctx, order.ID); err != nil {
			respondServiceError(c, err)
			return
		}
		fillFileURLs(c, order.Files)
	}

	respondSuccess(c, http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/v1/admin/updateOrder/:id
func UpdateOrder(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if req.Status != nil {
		respondServiceError(c, &services.ValidationError{Field: "status", Message: "use the changeStatus endpoint to move an order"})
		return
	}
	if req.AssignedToID != nil {
		respondServiceError(c, &services.ValidationError{Field: "assignedToId", Message: "use the assignOrder endpoint to assign an order"})
		return
	}

	order, err := orderService().UpdateOrder(c.Request.Context(), actor, id, services.UpdateOrderInput{
		CustomerID:    req.CustomerID,
		Requirements:  req.Requirements,
		Dimensions:    req.Dimensions,
		QueuePosition: req.QueuePosition,
		Version:       req.Version,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/admin/deleteOrder/:id
func DeleteOrder(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := orderService().DeleteOrder(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}

// UpdateWorkQueue handles POST /api/v1/admin/updateWorkQueue
func UpdateWorkQueue(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateWorkQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := orderService().UpdateWorkQueue(c.Request.Context(), actor, req.Orders); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"updated": len(req.Orders)})
}

// viewableOrder loads an order and checks the caller may see it
func viewableOrder(c *gin.Context) (uint, bool) {
	_, actor, ok := currentUser(c)
	if !ok {
		return 0, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return 0, false
	}

	order, err := orderService().GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return 0, false
	}
	if !services.CanView(actor, order) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return 0, false
	}
	return id, true
}

// ListOrderLogs handles GET /api/v1/admin/orders/:id/logs
func ListOrderLogs(c *gin.Context) {
	id, ok := viewableOrder(c)
	if !ok {
		return
	}

	logs, err := orderService().ListLogs(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, logs)
}

// ListOrderTransitions handles GET /api/v1/admin/orders/:id/transitions
func ListOrderTransitions(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	statuses, err := orderService().AllowedTransitions(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"orderId": id, "next": statuses})
}
