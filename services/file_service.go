package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/utils"
	"github.com/signworks/orderflow-api/workflow"
	"gorm.io/gorm"
)

// FileService handles order documents: validation, storage, listing and
// bulk download.
type FileService struct {
	db       *gorm.DB
	storage  FileStorage
	maxBytes int64
	emitter  *Emitter
}

// NewFileService creates a file service storing objects in storage
func NewFileService(db *gorm.DB, storage FileStorage, maxBytes int64) *FileService {
	return &FileService{db: db, storage: storage, maxBytes: maxBytes, emitter: NewEmitter()}
}

func storageKey(orderID uint, kind models.FileKind, filename string) string {
	return fmt.Sprintf("orders/%d/%s/%s_%s", orderID, kind, uuid.NewString()[:8], utils.SanitizeFilename(filename))
}

// Upload validates and stores files of one kind against an order
func (s *FileService) Upload(ctx context.Context, actor workflow.Actor, orderID uint, kind models.FileKind, headers []*multipart.FileHeader) ([]models.OrderFile, error) {
	if !kind.IsValid() {
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown file type %q", kind)}
	}
	if len(headers) == 0 {
		return nil, &ValidationError{Field: "files", Message: "no files were uploaded"}
	}
	for _, fh := range headers {
		if err := utils.ValidateOrderFile(string(kind), fh, s.maxBytes); err != nil {
			return nil, err
		}
	}

	if _, err := loadOrder(s.db.WithContext(ctx), orderID); err != nil {
		return nil, err
	}

	files := make([]models.OrderFile, 0, len(headers))
	for _, fh := range headers {
		key := storageKey(orderID, kind, fh.Filename)
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.put(ctx, key, fh, contentType); err != nil {
			s.cleanup(ctx, files)
			return nil, err
		}
		files = append(files, models.OrderFile{
			OrderID:      orderID,
			Kind:         kind,
			StorageKey:   key,
			FileName:     path.Base(strings.ReplaceAll(fh.Filename, "\\", "/")),
			ContentType:  contentType,
			Size:         fh.Size,
			UploadedByID: actor.ID,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := tx.Create(&files).Error; err != nil {
			return fmt.Errorf("failed to record files: %w", err)
		}
		if err := casUpdate(tx, order, map[string]interface{}{}); err != nil {
			return err
		}
		if err := writeLog(tx, &models.OrderLog{
			OrderID: order.ID,
			Action:  models.LogActionFileUploaded,
			ActorID: actorRef(actor),
			Message: fmt.Sprintf("Uploaded %d %s file(s)", len(files), kind),
		}); err != nil {
			return err
		}
		_, err = s.emitter.Emit(tx, Event{
			Type:    EventOrderUpdated,
			OrderID: &order.ID,
			Version: order.Version,
			Payload: map[string]interface{}{"action": models.LogActionFileUploaded, "orderId": order.ID, "kind": kind, "count": len(files)},
			Users:   orderRecipients(order),
			Roles:   adminRoles,
		})
		return err
	})
	if err != nil {
		s.cleanup(ctx, files)
		return nil, err
	}

	for i := range files {
		files[i].URL, _ = s.storage.URL(ctx, files[i].StorageKey)
	}
	return files, nil
}

func (s *FileService) put(ctx context.Context, key string, fh *multipart.FileHeader, contentType string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()
	return s.storage.Put(ctx, key, src, fh.Size, contentType)
}

func (s *FileService) cleanup(ctx context.Context, files []models.OrderFile) {
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.StorageKey); err != nil {
			log.Printf("Failed to remove orphaned file %s: %v", f.StorageKey, err)
		}
	}
}

// List returns an order's files with download URLs, optionally one kind only
func (s *FileService) List(ctx context.Context, orderID uint, kind models.FileKind) ([]models.OrderFile, error) {
	if _, err := loadOrder(s.db.WithContext(ctx), orderID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC")
	if kind != "" {
		if !kind.IsValid() {
			return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown file type %q", kind)}
		}
		query = query.Where("kind = ?", string(kind))
	}

	var files []models.OrderFile
	if err := query.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}
	for i := range files {
		url, err := s.storage.URL(ctx, files[i].StorageKey)
		if err != nil {
			log.Printf("Failed to build URL for %s: %v", files[i].StorageKey, err)
			continue
		}
		files[i].URL = url
	}
	return files, nil
}

// Get loads one file record
func (s *FileService) Get(ctx context.Context, fileID uint) (*models.OrderFile, error) {
	var file models.OrderFile
	if err := s.db.WithContext(ctx).First(&file, fileID).Error; err != nil {
		return nil, notFoundOr(err, "file", fileID)
	}
	return &file, nil
}

// Open streams a stored file
func (s *FileService) Open(ctx context.Context, file *models.OrderFile) (io.ReadCloser, error) {
	return s.storage.Open(ctx, file.StorageKey)
}

// WriteZip writes files into a zip archive grouped by kind
func (s *FileService) WriteZip(ctx context.Context, w io.Writer, files []models.OrderFile) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int)

	for _, f := range files {
		name := path.Join(string(f.Kind), f.FileName)
		if n := used[name]; n > 0 {
			ext := path.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
		}
		used[path.Join(string(f.Kind), f.FileName)]++

		entry, err := zw.Create(name)
		if err != nil {
			return err
		}
		rc, err := s.storage.Open(ctx, f.StorageKey)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.FileName, err)
		}
		_, err = io.Copy(entry, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}

	return zw.Close()
}
