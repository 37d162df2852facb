package documents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/ai/llm"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// Analyze runs the AI analysis over caller-supplied content
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, req models.AnalyzeDocumentRequest) (*models.AnalyzeDocumentResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.CanAccess(domain.FeatureAnalyze) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureAnalyze))
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.NewValidationError("content is required")
	}

	language := domain.NormalizeLanguage(req.Language)
	resp, err := s.chat(ctx, "analyze", llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: llm.AnalysisSystemPrompt()},
			{Role: "user", Content: llm.AnalysisPrompt(req.Content, language)},
		},
		JSONMode: true,
	})
	if err != nil {
		return nil, domain.NewInternalError("document analysis failed", err)
	}

	analysis, err := llm.ParseAnalysis(resp.Message)
	if err != nil {
		return nil, domain.NewInternalError("document analysis failed", err)
	}

	if s.recorder != nil {
		s.recorder.RecordDocumentAnalyzed()
	}
	u.RecordUsage("analyze")
	if err := s.users.Update(ctx, u); err != nil {
		log.Printf("⚠️  Failed to record usage for %s: %v", u.Email, err)
	}

	return &models.AnalyzeDocumentResponse{
		Summary:  analysis.Summary,
		Risks:    analysis.Risks,
		Missing:  analysis.Missing,
		Keywords: analysis.Keywords,
	}, nil
}

// AIEdit applies a natural-language instruction to the document content and
// records the result as a new version
func (s *Service) AIEdit(ctx context.Context, userID, docID uuid.UUID, req models.AIEditRequest) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(u, d) {
		return nil, domain.NewForbiddenError("you do not have edit access to this document")
	}
	if !u.CanAccess(domain.FeatureEdit) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureEdit))
	}
	if req.Revision != d.Revision {
		return nil, domain.NewConflictError("document was modified by someone else, reload and retry")
	}

	edited, err := s.complete(ctx, "edit", llm.EditPrompt(d.Content, req.Instruction), llm.EditSystemPrompt())
	if err != nil {
		return nil, domain.NewInternalError("ai edit failed", err)
	}
	edited = strings.TrimSpace(edited)
	if edited == "" {
		return nil, domain.NewInternalError("ai edit failed", fmt.Errorf("empty model reply"))
	}

	if err := d.AppendVersion(u.ID, edited, "Edición con IA: "+req.Instruction); err != nil {
		return nil, err
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

// Translate produces a translated copy of the document as a new draft owned
// by the requesting user. The original document is left untouched.
func (s *Service) Translate(ctx context.Context, userID, docID uuid.UUID, req models.TranslateDocumentRequest) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	if !u.CanAccess(domain.FeatureEdit) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureEdit))
	}

	target := domain.NormalizeLanguage(req.TargetLanguage)
	translated, err := s.complete(ctx, "translate", llm.TranslatePrompt(d.Content, target), llm.EditSystemPrompt())
	if err != nil {
		return nil, domain.NewInternalError("translation failed", err)
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return nil, domain.NewInternalError("translation failed", fmt.Errorf("empty model reply"))
	}

	meta := d.Metadata
	meta.Language = target
	copyDoc, err := domain.NewDocument(u.ID, fmt.Sprintf("%s (%s)", d.Title, target), d.Type, d.Category, translated, meta, fmt.Sprintf("Traducción al %s", target))
	if err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, copyDoc); err != nil {
		return nil, err
	}

	s.countCreated("translation")
	u.RecordUsage("edit")
	if err := s.users.Update(ctx, u); err != nil {
		log.Printf("⚠️  Failed to record usage for %s: %v", u.Email, err)
	}

	return toDocumentResponse(copyDoc), nil
}

// Merge folds another document's content into this one via the model and
// appends the combined text as a new version
func (s *Service) Merge(ctx context.Context, userID, docID uuid.UUID, req models.AIMergeRequest) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(u, d) {
		return nil, domain.NewForbiddenError("you do not have edit access to this document")
	}
	if !u.CanAccess(domain.FeatureEdit) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureEdit))
	}
	if req.Revision != d.Revision {
		return nil, domain.NewConflictError("document was modified by someone else, reload and retry")
	}

	sourceID, err := uuid.Parse(req.SourceDocumentID)
	if err != nil {
		return nil, domain.NewValidationError("invalid source document id")
	}
	if sourceID == d.ID {
		return nil, domain.NewValidationError("cannot merge a document with itself")
	}
	source, err := s.docs.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, source) {
		return nil, domain.NewForbiddenError("you do not have access to the source document")
	}

	merged, err := s.complete(ctx, "merge", llm.MergePrompt(d.Content, source.Content), llm.EditSystemPrompt())
	if err != nil {
		return nil, domain.NewInternalError("merge failed", err)
	}
	merged = strings.TrimSpace(merged)
	if merged == "" {
		return nil, domain.NewInternalError("merge failed", fmt.Errorf("empty model reply"))
	}

	if err := d.AppendVersion(u.ID, merged, fmt.Sprintf("Fusionado con %q", source.Title)); err != nil {
		return nil, err
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
