package controllers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/signworks/orderflow-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *controllerEnv) upload(orderID uint, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	r := e.router(e.admin, http.MethodPost, "/admin/files/order/:id", UploadOrderFiles)
	body, contentType := multipartOrder(e.t, fields, files)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/files/order/%d", orderID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadOrderFiles(t *testing.T) {
	env := newControllerEnv(t)
	order := env.newOrder()

	t.Run("named by kind", func(t *testing.T) {
		w := env.upload(order.ID, nil, map[string]string{"images": "proof.png", "textFiles": "brief.txt"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var files []models.OrderFile
		decode(t, w, &files)
		require.Len(t, files, 2)
		for _, f := range files {
			assert.NotEmpty(t, f.URL)
			assert.Equal(t, env.admin.ID, f.UploadedByID)
		}
	})

	t.Run("generic field with type", func(t *testing.T) {
		w := env.upload(order.ID, map[string]string{"type": "cadFiles"}, map[string]string{"files": "panel.dxf"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("generic field with unknown type", func(t *testing.T) {
		w := env.upload(order.ID, map[string]string{"type": "videos"}, map[string]string{"files": "panel.dxf"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("wrong format for kind", func(t *testing.T) {
		w := env.upload(order.ID, nil, map[string]string{"images": "proof.dxf"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(t, w))
	})

	t.Run("no files", func(t *testing.T) {
		w := env.upload(order.ID, map[string]string{"note": "empty"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := env.upload(9999, nil, map[string]string{"images": "proof.png"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.Len(t, env.storage.Files(), 3)
	assert.Equal(t, uint(4), env.reload(order.ID).Version, "each successful upload bumps the version")

	var logs int64
	env.db.Model(&models.OrderLog{}).Where("order_id = ? AND action = ?", order.ID, models.LogActionFileUploaded).Count(&logs)
	assert.Equal(t, int64(3), logs, "one log per uploaded kind")
}

func TestListAndDownloadFiles(t *testing.T) {
	env := newControllerEnv(t)
	order := env.newOrder()
	require.Equal(t, http.StatusCreated,
		env.upload(order.ID, nil, map[string]string{"images": "proof.png", "cadFiles": "board.dxf"}).Code)

	list := env.router(env.graphics, http.MethodGet, "/admin/files/order/:id", ListOrderFiles)
	var files []models.OrderFile
	w := env.do(list, http.MethodGet, fmt.Sprintf("/admin/files/order/%d", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &files)
	require.Len(t, files, 2)

	w = env.do(list, http.MethodGet, fmt.Sprintf("/admin/files/order/%d?type=cadFiles", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &files)
	require.Len(t, files, 1)
	assert.Equal(t, "board.dxf", files[0].FileName)

	w = env.do(list, http.MethodGet, fmt.Sprintf("/admin/files/order/%d?type=videos", order.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Run("download streams content", func(t *testing.T) {
		r := env.router(env.graphics, http.MethodGet, "/admin/files/download/:id", DownloadFile)
		w := env.do(r, http.MethodGet, fmt.Sprintf("/admin/files/download/%d", files[0].ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "content of board.dxf", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="board.dxf"`)
	})

	t.Run("other departments cannot download", func(t *testing.T) {
		r := env.router(env.cutout, http.MethodGet, "/admin/files/download/:id", DownloadFile)
		w := env.do(r, http.MethodGet, fmt.Sprintf("/admin/files/download/%d", files[0].ID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown file", func(t *testing.T) {
		r := env.router(env.admin, http.MethodGet, "/admin/files/download/:id", DownloadFile)
		w := env.do(r, http.MethodGet, "/admin/files/download/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func zipEntries(t *testing.T, body []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(content)
	}
	return entries
}

func TestDownloadAllFiles(t *testing.T) {
	env := newControllerEnv(t)
	order := env.newOrder()

	all := env.router(env.admin, http.MethodGet, "/admin/files/download-all/:id", DownloadAllFiles)
	w := env.do(all, http.MethodGet, fmt.Sprintf("/admin/files/download-all/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_FILES", errorCode(t, w))

	require.Equal(t, http.StatusCreated,
		env.upload(order.ID, nil, map[string]string{"images": "proof.png", "cadFiles": "board.dxf"}).Code)
	require.Equal(t, http.StatusCreated,
		env.upload(order.ID, nil, map[string]string{"images": "proof.png"}).Code)

	w = env.do(all, http.MethodGet, fmt.Sprintf("/admin/files/download-all/%d", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	entries := zipEntries(t, w.Body.Bytes())
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"cadFiles/board.dxf", "images/proof.png", "images/proof_1.png"}, names)
	assert.Equal(t, "content of board.dxf", entries["cadFiles/board.dxf"])

	byType := env.router(env.admin, http.MethodGet, "/admin/files/download-all-type/:id", DownloadAllFilesOfType)
	w = env.do(byType, http.MethodGet, fmt.Sprintf("/admin/files/download-all-type/%d?type=cadFiles", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("order-%d-cadFiles.zip", order.ID))
	assert.Len(t, zipEntries(t, w.Body.Bytes()), 1)

	w = env.do(byType, http.MethodGet, fmt.Sprintf("/admin/files/download-all-type/%d?type=videos", order.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(byType, http.MethodGet, fmt.Sprintf("/admin/files/download-all-type/%d?type=textFiles", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
