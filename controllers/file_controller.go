package controllers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/workflow"
)

func fileService() *services.FileService {
	return services.NewFileService(config.GetDB(), services.GetStorage(), config.GetConfig().MaxUploadBytes())
}

// UploadOrderFiles handles POST /api/v1/admin/files/order/:id. Files are sent
// either under their kind (image, images, cadFiles, textFiles) or under
// "files" together with a "type" field.
func UploadOrderFiles(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart form")
		return
	}

	batches := map[models.FileKind][]*multipart.FileHeader{}
	for _, kind := range models.FileKinds {
		if headers := form.File[string(kind)]; len(headers) > 0 {
			batches[kind] = headers
		}
	}
	if headers := form.File["files"]; len(headers) > 0 {
		kind := models.FileKind(c.PostForm("type"))
		if !kind.IsValid() {
			respondServiceError(c, &services.ValidationError{Field: "type", Message: fmt.Sprintf("unknown file type %q", kind)})
			return
		}
		batches[kind] = append(batches[kind], headers...)
	}
	if len(batches) == 0 {
		respondServiceError(c, &services.ValidationError{Field: "files", Message: "no files were uploaded"})
		return
	}

	svc := fileService()
	uploaded := make([]models.OrderFile, 0)
	for _, kind := range models.FileKinds {
		if len(batches[kind]) == 0 {
			continue
		}
		files, err := svc.Upload(c.Request.Context(), actor, id, kind, batches[kind])
		if err != nil {
			respondServiceError(c, err)
			return
		}
		uploaded = append(uploaded, files...)
	}

	fillFileURLs(c, uploaded)
	respondSuccess(c, http.StatusCreated, uploaded)
}

// ListOrderFiles handles GET /api/v1/admin/files/order/:id?type=
func ListOrderFiles(c *gin.Context) {
	id, ok := viewableOrder(c)
	if !ok {
		return
	}

	files, err := fileService().List(c.Request.Context(), id, models.FileKind(c.Query("type")))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, files)
}

// DownloadFile handles GET /api/v1/admin/files/download/:id - streams one file
func DownloadFile(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	svc := fileService()
	file, err := svc.Get(ctx, fileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !canViewOrder(c, actor, file.OrderID) {
		return
	}

	rc, err := svc.Open(ctx, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Printf("Failed to stream file %d: %v", file.ID, err)
	}
}

func canViewOrder(c *gin.Context, actor workflow.Actor, orderID uint) bool {
	order, err := orderService().GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if !services.CanView(actor, order) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return false
	}
	return true
}

func downloadZip(c *gin.Context, kind models.FileKind) {
	id, ok := viewableOrder(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	svc := fileService()
	files, err := svc.List(ctx, id, kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(files) == 0 {
		respondError(c, http.StatusNotFound, "NO_FILES", "This order has no files to download")
		return
	}

	name := fmt.Sprintf("order-%d-files.zip", id)
	if kind != "" {
		name = fmt.Sprintf("order-%d-%s.zip", id, kind)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)
	if err := svc.WriteZip(ctx, c.Writer, files); err != nil {
		log.Printf("Failed to write zip for order %d: %v", id, err)
	}
}

// DownloadAllFiles handles GET /api/v1/admin/files/download-all/:id
func DownloadAllFiles(c *gin.Context) {
	downloadZip(c, "")
}

// DownloadAllFilesOfType handles GET /api/v1/admin/files/download-all-type/:id?type=
func DownloadAllFilesOfType(c *gin.Context) {
	kind := models.FileKind(c.Query("type"))
	if !kind.IsValid() {
		respondServiceError(c, &services.ValidationError{Field: "type", Message: fmt.Sprintf("unknown file type %q", kind)})
		return
	}
	downloadZip(c, kind)
}
