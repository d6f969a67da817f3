package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/AssetDocs/legacylocker/internal/storage"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

// DocumentService issues presigned upload URLs for the supporting
// documentation a delegate attaches to a recovery request.
type DocumentService struct {
	store *storage.Client
}

func NewDocumentService(store *storage.Client) *DocumentService {
	return &DocumentService{store: store}
}

type PresignDocumentInput struct {
	FileName    string
	ContentType string
}

type PresignDocumentResult struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

func (s *DocumentService) CreatePresignedUpload(ctx context.Context, in PresignDocumentInput) (PresignDocumentResult, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return PresignDocumentResult{}, locker_errors.ErrUnauthorized
	}
	if s.store == nil {
		return PresignDocumentResult{}, fmt.Errorf("document storage not configured")
	}
	if !allowedDocumentTypes[in.ContentType] {
		return PresignDocumentResult{}, locker_errors.ErrInvalidInput
	}

	ext := strings.ToLower(path.Ext(in.FileName))
	key := fmt.Sprintf("recovery-documents/%s/%d-%s%s", userID, time.Now().Unix(), uuid.NewString(), ext)

	uploadURL, err := s.store.PresignPut(ctx, key, in.ContentType)
	if err != nil {
		return PresignDocumentResult{}, err
	}
	return PresignDocumentResult{UploadURL: uploadURL, ObjectKey: key}, nil
}
