package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Document categories accepted for upload.
const (
	CategoryIdentity      = "identity"
	CategoryInsurance     = "insurance"
	CategoryCertification = "certification"
	CategoryOther         = "other"
)

var categories = map[string]bool{
	CategoryIdentity:      true,
	CategoryInsurance:     true,
	CategoryCertification: true,
	CategoryOther:         true,
}

// MaxUploadBytes caps a single document upload.
const MaxUploadBytes = 10 << 20

// StorageService stores provider documents.
type StorageService interface {
	UploadDocument(ctx context.Context, userID, category, filename string, file io.Reader) (*models.Document, error)
	DeleteDocument(ctx context.Context, userID, publicID string) error
}

// assetAPI is the part of the Cloudinary upload API the service needs.
type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type StorageServiceImpl struct {
	assets assetAPI
	logger *zap.Logger
}

// NewStorageService creates a Cloudinary-backed StorageService.
func NewStorageService(cld *cloudinary.Cloudinary, logger *zap.Logger) StorageService {
	return newStorageService(&cld.Upload, logger)
}

func newStorageService(assets assetAPI, logger *zap.Logger) *StorageServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageServiceImpl{assets: assets, logger: logger}
}

// Folder is where a user's documents of one category live.
func Folder(category, userID string) string {
	return path.Join("documents", category, userID)
}

// UploadDocument uploads the file under documents/{category}/{userID}.
func (s *StorageServiceImpl) UploadDocument(ctx context.Context, userID, category, filename string, file io.Reader) (*models.Document, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !categories[category] {
		return nil, utils.NewValidationError("category", "category must be one of identity, insurance, certification, other")
	}
	if file == nil {
		return nil, utils.NewValidationError("file", "file is required")
	}

	result, err := s.assets.Upload(ctx, file, uploader.UploadParams{
		Folder:       Folder(category, userID),
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("StorageServiceImpl: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, &utils.VendorError{Vendor: "document storage", Status: 400, Message: result.Error.Message}
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("StorageServiceImpl: no public ID returned")
	}

	s.logger.Info("Document uploaded",
		zap.String("userID", userID), zap.String("category", category), zap.String("publicID", result.PublicID))
	return &models.Document{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Category: category,
		Filename: filename,
		Bytes:    result.Bytes,
	}, nil
}

// DeleteDocument removes one of the user's own documents.
func (s *StorageServiceImpl) DeleteDocument(ctx context.Context, userID, publicID string) error {
	if publicID == "" {
		return utils.NewValidationError("public_id", "public_id is required")
	}
	if !ownedBy(publicID, userID) {
		return utils.Forbidden("document belongs to another user")
	}
	result, err := s.assets.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("StorageServiceImpl: failed to delete file: %w", err)
	}
	if result.Error.Message != "" {
		return &utils.VendorError{Vendor: "document storage", Status: 400, Message: result.Error.Message}
	}
	if result.Result == "not found" {
		return utils.ErrNotFound
	}
	return nil
}

// ownedBy reports whether publicID sits in documents/{category}/{userID}/.
func ownedBy(publicID, userID string) bool {
	parts := strings.Split(publicID, "/")
	return len(parts) >= 4 && parts[0] == "documents" && categories[parts[1]] && parts[2] == userID
}
