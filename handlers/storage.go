package handlers

import (
	"net/http"

	"bookinghub/middleware"
	"bookinghub/services/storage"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

// StorageHandler serves provider document uploads.
type StorageHandler struct {
	StorageSvc storage.StorageService
}

// NewStorageHandler creates a StorageHandler. svc may be nil when document
// storage is not configured.
func NewStorageHandler(svc storage.StorageService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc}
}

// UploadDocumentHandler handles POST /api/documents (multipart: file, category).
func (h *StorageHandler) UploadDocumentHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("file", "file not provided"))
		return
	}
	if fileHeader.Size > storage.MaxUploadBytes {
		utils.RespondError(c, utils.NewValidationError("file", "file exceeds 10MB"))
		return
	}
	if h.StorageSvc == nil {
		utils.RespondError(c, utils.NotConfigured("document storage"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("file", "unreadable file"))
		return
	}
	defer file.Close()

	doc, err := h.StorageSvc.UploadDocument(c.Request.Context(), user.ID, c.PostForm("category"), fileHeader.Filename, file)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"document": doc})
}

// DeleteDocumentHandler handles DELETE /api/documents?public_id=...
func (h *StorageHandler) DeleteDocumentHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	if h.StorageSvc == nil {
		utils.RespondError(c, utils.NotConfigured("document storage"))
		return
	}
	if err := h.StorageSvc.DeleteDocument(c.Request.Context(), user.ID, c.Query("public_id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
