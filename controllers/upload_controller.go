package controllers

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/utils"
)

// GetUploadedFile handles GET /api/v1/uploads/*filepath?token= - serves files
// kept in the local upload directory when no bucket is configured. The token
// comes from the signed link handed out with the order's files.
func GetUploadedFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")

	if key == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.HasPrefix(key, "/") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	secret := ""
	if cfg := config.GetConfig(); cfg != nil {
		secret = cfg.JWTSecret
	}
	if err := utils.VerifyFileToken(c.Query("token"), key, secret); err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_FILE_LINK", "File link is missing or has expired")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filepath.FromSlash(key))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=86400")
	c.File(filePath)
}
