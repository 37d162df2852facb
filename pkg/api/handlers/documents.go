package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docuforge/docuforge/pkg/api/errors"
	"github.com/docuforge/docuforge/pkg/documents"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// DocumentHandler handles document endpoints
type DocumentHandler struct {
	service   *documents.Service
	validator *validator.Validate
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *documents.Service) *DocumentHandler {
	return &DocumentHandler{
		service:   service,
		validator: validator.New(),
	}
}

// requestUser pulls the authenticated user id set by the JWT middleware
func requestUser(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	return userID, ok
}

// pathID parses a UUID path parameter
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// listFilter builds a document filter from query parameters
func listFilter(c echo.Context) domain.DocumentFilter {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return domain.DocumentFilter{
		Type:   domain.DocumentType(c.QueryParam("type")),
		Status: domain.DocumentStatus(c.QueryParam("status")),
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	}
}

// Create stores a document from caller-supplied content
func (h *DocumentHandler) Create(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	doc, err := h.service.Create(ctx, userID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Generate drafts a document from a prompt
func (h *DocumentHandler) Generate(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.GenerateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	// AI calls are slow; allow more headroom than CRUD
	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.service.Generate(ctx, userID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// GenerateFromTemplate fills a known template
func (h *DocumentHandler) GenerateFromTemplate(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.TemplateGenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.service.GenerateFromTemplate(ctx, userID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Converse advances a guided generation conversation. Without a
// conversation id in the path a new conversation starts.
func (h *DocumentHandler) Converse(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.ConversationMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if id := c.Param("id"); id != "" {
		req.ConversationID = id
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	resp, err := h.service.Converse(ctx, userID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Analyze runs an AI analysis over submitted content
func (h *DocumentHandler) Analyze(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	var req models.AnalyzeDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	resp, err := h.service.Analyze(ctx, userID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListMine returns the caller's documents (created or shared with them)
func (h *DocumentHandler) ListMine(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.ListMine(ctx, userID, listFilter(c))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAll returns every document (admin only, enforced by route middleware)
func (h *DocumentHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.ListAll(ctx, listFilter(c))
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one document
func (h *DocumentHandler) Get(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.Get(ctx, userID, docID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Update edits title, content or metadata
func (h *DocumentHandler) Update(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.EditDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.Update(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// UpdateStatus changes the lifecycle status
func (h *DocumentHandler) UpdateStatus(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.UpdateStatus(ctx, userID, docID, req.Status)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Delete removes a document
func (h *DocumentHandler) Delete(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, userID, docID); err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Document deleted",
	})
}

// Versions lists the version history, newest first, without bodies
func (h *DocumentHandler) Versions(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.Versions(ctx, userID, docID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetVersion returns one version with its content
func (h *DocumentHandler) GetVersion(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		return errors.NotFoundError(c, "version")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.GetVersion(ctx, userID, docID, version)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RestoreVersionRequest brings an old version back as a new one
type RestoreVersionRequest struct {
	Version  int `json:"version" validate:"required,min=1"`
	Revision int `json:"revision" validate:"required,min=1"`
}

// RestoreVersion re-applies an old version as the newest entry
func (h *DocumentHandler) RestoreVersion(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req RestoreVersionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.RestoreVersion(ctx, userID, docID, req.Version, req.Revision)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Export downloads the document as a plain text or HTML file
func (h *DocumentHandler) Export(format string) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := requestUser(c)
		if !ok {
			return errors.UnauthorizedError(c, "Authentication required")
		}
		docID, err := pathID(c, "id")
		if err != nil {
			return errors.NotFoundError(c, "document")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		resp, err := h.service.Export(ctx, userID, docID, format)
		if err != nil {
			return errors.Domain(c, err)
		}

		contentType := "text/plain; charset=utf-8"
		if resp.Format == "html" {
			contentType = "text/html; charset=utf-8"
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+resp.Filename+`"`)
		return c.Blob(http.StatusOK, contentType, []byte(resp.Content))
	}
}

// AIEdit applies an AI instruction to the document content
func (h *DocumentHandler) AIEdit(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.AIEditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.service.AIEdit(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Translate creates a translated copy of the document
func (h *DocumentHandler) Translate(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.TranslateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.service.Translate(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Merge folds another document into this one
func (h *DocumentHandler) Merge(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.AIMergeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.service.Merge(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Share replaces the collaborator set
func (h *DocumentHandler) Share(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.ShareDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.Share(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Collaborators lists the collaborator set
func (h *DocumentHandler) Collaborators(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.Collaborators(ctx, userID, docID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateCollaborator changes one collaborator's permission
func (h *DocumentHandler) UpdateCollaborator(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}
	collaboratorID, err := pathID(c, "userId")
	if err != nil {
		return errors.NotFoundError(c, "collaborator")
	}

	var req models.UpdateCollaboratorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.UpdateCollaborator(ctx, userID, docID, collaboratorID, req.Permission)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// RemoveCollaborator revokes one collaborator's access
func (h *DocumentHandler) RemoveCollaborator(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}
	collaboratorID, err := pathID(c, "userId")
	if err != nil {
		return errors.NotFoundError(c, "collaborator")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.service.RemoveCollaborator(ctx, userID, docID, collaboratorID); err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Collaborator removed",
	})
}

// PrepareSignature starts the signature workflow
func (h *DocumentHandler) PrepareSignature(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.PrepareSignatureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	resp, err := h.service.PrepareSignature(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SignatureStatus returns the signing state
func (h *DocumentHandler) SignatureStatus(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.SignatureStatus(ctx, userID, docID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RecordSignerDecision records one signer's outcome
func (h *DocumentHandler) RecordSignerDecision(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	var req models.SignerDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.RecordSignerDecision(ctx, userID, docID, req)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CompleteSigning closes the signature workflow
func (h *DocumentHandler) CompleteSigning(c echo.Context) error {
	userID, ok := requestUser(c)
	if !ok {
		return errors.UnauthorizedError(c, "Authentication required")
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return errors.NotFoundError(c, "document")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.CompleteSigning(ctx, userID, docID)
	if err != nil {
		return errors.Domain(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}
