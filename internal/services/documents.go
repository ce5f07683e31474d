package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/filestore"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

// MaxDocumentBytes caps a single upload.
const MaxDocumentBytes = 25 << 20

const defaultDocumentCategory = "general"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type DocumentInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Tags        []string   `json:"tags"`
	ProjectID   *uuid.UUID `json:"projectId"`
	FileURL     *string    `json:"fileUrl"`
}

// Upload is an optional file attached to a new document.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type DocumentListQuery struct {
	Category  string
	ProjectID *uuid.UUID
	Search    string
	Page      repoutil.Page
}

type DocumentService interface {
	List(ctx context.Context, q DocumentListQuery) ([]*types.Document, repoutil.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Document, error)
	Create(ctx context.Context, uploadedBy uuid.UUID, in DocumentInput, file *Upload) (*types.Document, error)
	Update(ctx context.Context, id uuid.UUID, in DocumentInput) (*types.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	store        filestore.Store
	pub          realtime.Publisher
}

func NewDocumentService(db *gorm.DB, log *logger.Logger, documentRepo repos.DocumentRepo, store filestore.Store, pub realtime.Publisher) DocumentService {
	return &documentService{
		db:           db,
		log:          log.With("service", "DocumentService"),
		documentRepo: documentRepo,
		store:        store,
		pub:          pub,
	}
}

func (ds *documentService) List(ctx context.Context, q DocumentListQuery) ([]*types.Document, repoutil.Pagination, error) {
	page := q.Page.Normalize()
	list, total, err := ds.documentRepo.List(ctx, nil, repos.DocumentFilter{
		Category:  trim(q.Category),
		ProjectID: q.ProjectID,
		Search:    trim(q.Search),
		Page:      page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (ds *documentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	return ds.getDocument(ctx, nil, id)
}

func (ds *documentService) Create(ctx context.Context, uploadedBy uuid.UUID, in DocumentInput, file *Upload) (*types.Document, error) {
	doc := &types.Document{
		ID:             uuid.New(),
		Category:       defaultDocumentCategory,
		Tags:           datatypes.JSONSlice[string]{},
		StorageBackend: types.StorageNone,
		UploadedBy:     &uploadedBy,
	}
	applyDocumentInput(doc, in)
	if doc.Title == "" && file != nil {
		doc.Title = strings.TrimSuffix(filepath.Base(file.FileName), filepath.Ext(file.FileName))
	}
	fe := fieldErrors{}
	fe.required("title", doc.Title)
	fe.maxLen("title", doc.Title, 300)
	if file != nil && file.Size > MaxDocumentBytes {
		fe.add("file", "file exceeds the 25 MiB limit")
	}
	if doc.FileURL != "" && !validHTTPURL(doc.FileURL) {
		fe.add("fileUrl", "fileUrl must be a valid http or https URL")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if file != nil {
		if ds.store == nil {
			return nil, apierr.New(http.StatusServiceUnavailable, "storage_unavailable", errors.New("file storage is not configured"))
		}
		name := SafeFileName(file.FileName)
		contentType := file.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
				contentType = byExt
			}
		}
		key := fmt.Sprintf("documents/%s/%s", doc.ID, name)
		obj, err := ds.store.Put(ctx, key, io.LimitReader(file.Body, MaxDocumentBytes+1), contentType)
		if err != nil {
			ds.log.Error("Document upload failed", "document_id", doc.ID, "error", err)
			return nil, apierr.Internal(fmt.Errorf("store document: %w", err))
		}
		if obj.Size > MaxDocumentBytes {
			ds.removeObject(ctx, obj.Backend, obj.Key)
			return nil, apierr.Validation(map[string]string{"file": "file exceeds the 25 MiB limit"})
		}
		doc.FileName = name
		doc.FileURL = obj.URL
		doc.StorageKey = obj.Key
		doc.StorageBackend = obj.Backend
		doc.MimeType = contentType
		doc.SizeBytes = obj.Size
	}

	if _, err := ds.documentRepo.Create(ctx, nil, doc); err != nil {
		if doc.StorageKey != "" {
			ds.removeObject(ctx, doc.StorageBackend, doc.StorageKey)
		}
		return nil, err
	}
	ds.log.Info("Document created", "document_id", doc.ID, "backend", doc.StorageBackend, "size", doc.SizeBytes)
	publish(ctx, ds.log, ds.pub, realtime.Activity(realtime.EventDocumentUploaded, doc))
	return doc, nil
}

func (ds *documentService) Update(ctx context.Context, id uuid.UUID, in DocumentInput) (*types.Document, error) {
	var out *types.Document
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ds.getDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *existing
		in.FileURL = nil
		applyDocumentInput(&next, in)
		fe := fieldErrors{}
		fe.required("title", next.Title)
		fe.maxLen("title", next.Title, 300)
		if err := fe.err(); err != nil {
			return err
		}
		if err := ds.documentRepo.Update(ctx, tx, id, map[string]any{
			"title":       next.Title,
			"description": next.Description,
			"category":    next.Category,
			"tags":        next.Tags,
			"project_id":  next.ProjectID,
		}); err != nil {
			return err
		}
		out, err = ds.documentRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ds *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	var doc *types.Document
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = ds.getDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		return ds.documentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	if doc.StorageKey != "" {
		ds.removeObject(ctx, doc.StorageBackend, doc.StorageKey)
	}
	ds.log.Info("Document deleted", "document_id", id)
	return nil
}

// removeObject deletes a stored file; failures only leave an orphan behind.
func (ds *documentService) removeObject(ctx context.Context, backend, key string) {
	if ds.store == nil || backend == types.StorageNone {
		return
	}
	if err := ds.store.Delete(ctx, backend, key); err != nil {
		ds.log.Warn("Failed to remove stored document", "backend", backend, "key", key, "error", err)
	}
}

func (ds *documentService) getDocument(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	d, err := ds.documentRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("document")
	}
	return d, err
}

// SafeFileName reduces a client-supplied name to a safe object-key segment.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 120 {
		ext := filepath.Ext(name)
		if len(ext) > 20 {
			ext = ""
		}
		name = name[:120-len(ext)] + ext
	}
	return name
}

func applyDocumentInput(d *types.Document, in DocumentInput) {
	if in.Title != nil {
		d.Title = trim(*in.Title)
	}
	if in.Description != nil {
		d.Description = trim(*in.Description)
	}
	if in.Category != nil {
		d.Category = trim(*in.Category)
		if d.Category == "" {
			d.Category = defaultDocumentCategory
		}
	}
	if in.Tags != nil {
		d.Tags = cleanTags(in.Tags)
	}
	if in.FileURL != nil {
		d.FileURL = trim(*in.FileURL)
	}
	d.ProjectID = optionalID(d.ProjectID, in.ProjectID)
}
