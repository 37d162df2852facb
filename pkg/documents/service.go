package documents

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/ai/llm"
	"github.com/docuforge/docuforge/pkg/cache"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/esign"
	"github.com/docuforge/docuforge/pkg/models"
)

// Notifier sends document collaboration emails
type Notifier interface {
	SendDocumentSharedEmail(toEmail, toName, ownerName, documentTitle, permission string) error
	SendSignatureRequestEmail(toEmail, toName, ownerName, documentTitle string) error
}

// Recorder counts business events for the metrics endpoint
type Recorder interface {
	RecordDocumentCreated(source string)
	RecordDocumentAnalyzed()
	RecordDocumentExported(format string)
	RecordSignatureCompleted()
	RecordLLMRequest(operation string, duration time.Duration, err error)
}

// Service implements the document lifecycle: CRUD, versioning, sharing,
// AI-assisted operations and the signature workflow
type Service struct {
	docs     domain.DocumentStore
	users    domain.UserStore
	llm      llm.Client
	cache    *cache.Client
	esign    *esign.Service
	notifier Notifier
	recorder Recorder
}

// NewService creates a new document service
func NewService(docs domain.DocumentStore, users domain.UserStore, llmClient llm.Client, cacheClient *cache.Client, esignService *esign.Service) *Service {
	return &Service{
		docs:  docs,
		users: users,
		llm:   llmClient,
		cache: cacheClient,
		esign: esignService,
	}
}

// SetNotifier injects the email notifier for sharing and signing
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetRecorder injects the metrics recorder
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// chat runs one model round trip and feeds its latency to the recorder
func (s *Service) chat(ctx context.Context, operation string, req llm.ChatRequest) (*llm.ChatResponse, error) {
	started := time.Now()
	resp, err := s.llm.Chat(ctx, req)
	if s.recorder != nil {
		s.recorder.RecordLLMRequest(operation, time.Since(started), err)
	}
	return resp, err
}

// complete mirrors chat for single-prompt completions
func (s *Service) complete(ctx context.Context, operation, prompt, systemPrompt string) (string, error) {
	started := time.Now()
	out, err := s.llm.Complete(ctx, prompt, systemPrompt)
	if s.recorder != nil {
		s.recorder.RecordLLMRequest(operation, time.Since(started), err)
	}
	return out, err
}

func (s *Service) countCreated(source string) {
	if s.recorder != nil {
		s.recorder.RecordDocumentCreated(source)
	}
}

// load fetches the acting user and the target document
func (s *Service) load(ctx context.Context, userID, docID uuid.UUID) (*domain.User, *domain.Document, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	return u, d, nil
}

// Create stores a document built from caller-supplied content
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req models.CreateDocumentRequest) (*models.DocumentResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	docType := domain.DocumentType(req.Type)
	if req.Type == "" {
		docType = domain.ClassifyDocumentType(req.Category)
	}

	d, err := domain.NewDocument(u.ID, req.Title, docType, req.Category, req.Content, fromMetadataPayload(req.Metadata), "")
	if err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, d); err != nil {
		return nil, err
	}

	s.countCreated("manual")
	log.Printf("📄 Document created: %s (%s) by %s", d.Title, d.ID, u.Email)
	return toDocumentResponse(d), nil
}

// Get returns a document the user may view
func (s *Service) Get(ctx context.Context, userID, docID uuid.UUID) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	return toDocumentResponse(d), nil
}

// ListMine lists documents the user created or collaborates on
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, f domain.DocumentFilter) (*models.DocumentListResponse, error) {
	docs, total, err := s.docs.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return toListResponse(docs, total, f), nil
}

// ListAll lists every document, for admin use
func (s *Service) ListAll(ctx context.Context, f domain.DocumentFilter) (*models.DocumentListResponse, error) {
	docs, total, err := s.docs.ListAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return toListResponse(docs, total, f), nil
}

func toListResponse(docs []*domain.Document, total int, f domain.DocumentFilter) *models.DocumentListResponse {
	out := &models.DocumentListResponse{
		Documents: make([]models.DocumentSummary, 0, len(docs)),
		Total:     total,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, toDocumentSummary(d))
	}
	return out
}

// Update applies an edit request. Content changes append a version; title,
// status and metadata changes replace in place. The request carries the
// revision the caller last read; a stale revision is rejected with a
// conflict before anything is written.
func (s *Service) Update(ctx context.Context, userID, docID uuid.UUID, req models.EditDocumentRequest) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(u, d) {
		return nil, domain.NewForbiddenError("you do not have edit access to this document")
	}
	if req.Revision != d.Revision {
		return nil, domain.NewConflictError("document was modified by someone else, reload and retry")
	}

	if req.Title != "" {
		d.Title = req.Title
	}
	if req.Metadata != nil {
		d.MergeMetadata(fromMetadataPayload(*req.Metadata))
	}
	if req.Content != "" && req.Content != d.Content {
		if err := d.AppendVersion(u.ID, req.Content, req.ChangeDescription); err != nil {
			return nil, err
		}
	}

	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}

	u.RecordUsage("edit")
	if err := s.users.Update(ctx, u); err != nil {
		log.Printf("⚠️  Failed to record usage for %s: %v", u.Email, err)
	}

	return toDocumentResponse(d), nil
}

// UpdateStatus changes the document lifecycle status
func (s *Service) UpdateStatus(ctx context.Context, userID, docID uuid.UUID, status string) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(u, d) {
		return nil, domain.NewForbiddenError("you do not have edit access to this document")
	}
	if err := d.SetStatus(domain.DocumentStatus(status)); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}
	return toDocumentResponse(d), nil
}

// Delete removes a document permanently
func (s *Service) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(u, d) {
		return domain.NewForbiddenError("you cannot delete this document")
	}
	if err := s.docs.Delete(ctx, d.ID); err != nil {
		return err
	}
	log.Printf("🗑️  Document deleted: %s by %s", d.ID, u.Email)
	return nil
}

// Versions lists the version history newest first, without content bodies
func (s *Service) Versions(ctx context.Context, userID, docID uuid.UUID) (*models.VersionListResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	return &models.VersionListResponse{
		Versions: toVersionResponses(d.VersionsNewestFirst(), false),
		Current:  d.CurrentVersion(),
	}, nil
}

// GetVersion returns one version snapshot including its content
func (s *Service) GetVersion(ctx context.Context, userID, docID uuid.UUID, version int) (*models.VersionResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	snap, err := d.GetVersion(version)
	if err != nil {
		return nil, err
	}
	out := toVersionResponses([]domain.VersionSnapshot{snap}, true)
	return &out[0], nil
}

// RestoreVersion appends an old snapshot's content as a new version
func (s *Service) RestoreVersion(ctx context.Context, userID, docID uuid.UUID, version, revision int) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(u, d) {
		return nil, domain.NewForbiddenError("you do not have edit access to this document")
	}
	if revision != d.Revision {
		return nil, domain.NewConflictError("document was modified by someone else, reload and retry")
	}
	snap, err := d.GetVersion(version)
	if err != nil {
		return nil, err
	}
	if err := d.AppendVersion(u.ID, snap.Content, fmt.Sprintf("Restaurada la versión %d", version)); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}
	return toDocumentResponse(d), nil
}

// Export renders the document in a downloadable format
func (s *Service) Export(ctx context.Context, userID, docID uuid.UUID, format string) (*models.ExportResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	if !u.CanAccess(domain.FeatureDownload) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureDownload))
	}

	var out *models.ExportResponse
	switch format {
	case "txt":
		out = &models.ExportResponse{
			Format:   "txt",
			Filename: slugify(d.Title) + ".txt",
			Content:  d.Content,
		}
	case "html":
		out = &models.ExportResponse{
			Format:   "html",
			Filename: slugify(d.Title) + ".html",
			Content:  renderHTML(d.Title, d.Content),
		}
	default:
		return nil, domain.NewValidationError("unsupported export format, use txt or html")
	}

	if s.recorder != nil {
		s.recorder.RecordDocumentExported(format)
	}
	return out, nil
}

// renderHTML wraps plain document text in a minimal standalone page
func renderHTML(title, content string) string {
	body := html.EscapeString(content)
	body = strings.ReplaceAll(body, "\n", "<br>\n")
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>body { font-family: Georgia, serif; max-width: 800px; margin: 2rem auto; line-height: 1.6; }</style>
</head>
<body>
<h1>%s</h1>
<div>%s</div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(title), body)
}

// slugify builds a filesystem-safe file name from a document title
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "documento"
	}
	return slug
}
