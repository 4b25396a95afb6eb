package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dekut-devs/clearance-api/internal/service"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/response"
	"github.com/dekut-devs/clearance-api/pkg/storage"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// UploadHandler issues signed tokens for clearance document uploads and
// serves the stored files back against signed download tokens.
type UploadHandler struct {
	clearance *service.ClearanceService
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(clearance *service.ClearanceService, store *storage.LocalStorage, signer *storage.SignedURLSigner) *UploadHandler {
	return &UploadHandler{clearance: clearance, storage: store, signer: signer}
}

type signUploadRequest struct {
	RequestID string `json:"requestId" binding:"required"`
	Filename  string `json:"filename" binding:"required"`
}

// Sign godoc
// @Summary Issue a signed upload token
// @Tags Uploads
// @Accept json
// @Produce json
// @Param payload body signUploadRequest true "Upload descriptor"
// @Success 201 {object} response.Envelope
// @Router /uploads/sign [post]
func (h *UploadHandler) Sign(c *gin.Context) {
	var req signUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	// Confirm the request exists before handing out a token.
	if _, err := h.clearance.Get(c.Request.Context(), req.RequestID); err != nil {
		response.Error(c, err)
		return
	}

	relPath := fmt.Sprintf("clearance_docs/%s_%s", uuid.NewString(), sanitizeFilename(req.Filename))
	token, expiresAt, err := h.signer.Generate(req.RequestID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign upload"))
		return
	}
	response.Created(c, gin.H{
		"token":     token,
		"path":      relPath,
		"expiresAt": expiresAt,
	})
}

// Upload godoc
// @Summary Upload a clearance document against a signed token
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param token path string true "Signed upload token"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /uploads/{token} [put]
func (h *UploadHandler) Upload(c *gin.Context) {
	requestID, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid upload token"))
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}
	defer file.Close()

	if _, err := h.storage.SaveStream(relPath, file); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document"))
		return
	}

	if err := h.clearance.AttachFile(c.Request.Context(), requestID, relPath); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"path": relPath})
}

// Download godoc
// @Summary Download a clearance document against a signed token
// @Tags Uploads
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /files/{token} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token"))
		return
	}
	c.FileAttachment(h.storage.Path(relPath), filepath.Base(relPath))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "document"
	}
	return name
}
