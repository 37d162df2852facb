package documents

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/ai/llm"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

const (
	conversationKeyPrefix = "conversation:"
	conversationTTL       = 30 * time.Minute
	conversationMaxTurns  = 20
)

// conversationState is the Redis-held state of one guided generation flow
type conversationState struct {
	UserID   string            `json:"user_id"`
	Messages []llm.ChatMessage `json:"messages"`
	Category string            `json:"category,omitempty"`
}

// Generate asks the model for a document draft and stores it
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, req models.GenerateDocumentRequest) (*models.DocumentResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.CanAccess(domain.FeatureGenerateBasic) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureGenerateBasic))
	}

	language := domain.NormalizeLanguage(req.Metadata.Language)
	resp, err := s.chat(ctx, "generate", llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: llm.GenerationSystemPrompt()},
			{Role: "user", Content: llm.GenerationPrompt(req.Prompt, req.Category, language)},
		},
		JSONMode: true,
	})
	if err != nil {
		return nil, domain.NewInternalError("document generation failed", err)
	}

	draft, err := llm.ParseDraft(resp.Message)
	if err != nil {
		return nil, domain.NewInternalError("document generation failed", err)
	}

	return s.createFromDraft(ctx, u, draft, req.Category, req.Metadata, "prompt")
}

// GenerateFromTemplate asks the model to fill one of the known templates
func (s *Service) GenerateFromTemplate(ctx context.Context, userID uuid.UUID, req models.TemplateGenerateRequest) (*models.DocumentResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.CanAccess(domain.FeatureGenerateAdvanced) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureGenerateAdvanced))
	}
	if !llm.IsKnownTemplate(req.Template) {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown template %q", req.Template))
	}

	language := domain.NormalizeLanguage(req.Metadata.Language)
	resp, err := s.chat(ctx, "template", llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: llm.TemplateSystemPrompt(req.Template)},
			{Role: "user", Content: llm.TemplatePrompt(req.Template, req.Fields, language)},
		},
		JSONMode: true,
	})
	if err != nil {
		return nil, domain.NewInternalError("template generation failed", err)
	}

	draft, err := llm.ParseDraft(resp.Message)
	if err != nil {
		return nil, domain.NewInternalError("template generation failed", err)
	}

	return s.createFromDraft(ctx, u, draft, req.Template, req.Metadata, "template")
}

// Converse advances a guided generation conversation. An empty conversation
// id starts a new one; when the model marks the draft ready, the document is
// created and the conversation state dropped.
func (s *Service) Converse(ctx context.Context, userID uuid.UUID, req models.ConversationMessageRequest) (*models.ConversationResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.CanAccess(domain.FeatureGenerateBasic) {
		return nil, domain.NewPlanLimitError(string(domain.FeatureGenerateBasic))
	}

	conversationID := req.ConversationID
	var state conversationState

	if conversationID == "" {
		conversationID = uuid.NewString()
		state = conversationState{
			UserID: u.ID.String(),
			Messages: []llm.ChatMessage{
				{Role: "system", Content: llm.ConversationSystemPrompt()},
			},
		}
	} else {
		key := conversationKeyPrefix + conversationID
		if err := s.cache.GetJSON(ctx, key, &state); err != nil {
			return nil, domain.NewNotFoundError("conversation")
		}
		if state.UserID != u.ID.String() {
			return nil, domain.NewForbiddenError("conversation belongs to another user")
		}
	}

	if len(state.Messages) >= conversationMaxTurns*2 {
		return nil, domain.NewValidationError("conversation is too long, start a new one")
	}

	state.Messages = append(state.Messages, llm.ChatMessage{Role: "user", Content: req.Message})

	resp, err := s.chat(ctx, "conversation", llm.ChatRequest{
		Messages: state.Messages,
		JSONMode: true,
	})
	if err != nil {
		return nil, domain.NewInternalError("conversation failed", err)
	}

	turn, err := llm.ParseConversationTurn(resp.Message)
	if err != nil {
		return nil, domain.NewInternalError("conversation failed", err)
	}

	out := &models.ConversationResponse{
		ConversationID: conversationID,
		Reply:          turn.Reply,
		Ready:          turn.Ready,
	}

	key := conversationKeyPrefix + conversationID
	if turn.Ready {
		doc, err := s.createFromDraft(ctx, u, turn.Draft, turn.Draft.Category, models.MetadataPayload{}, "conversation")
		if err != nil {
			return nil, err
		}
		out.Document = doc
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Printf("⚠️  Failed to drop conversation %s: %v", conversationID, err)
		}
		return out, nil
	}

	state.Messages = append(state.Messages, llm.ChatMessage{Role: "assistant", Content: resp.Message})
	if err := s.cache.SetJSON(ctx, key, state, conversationTTL); err != nil {
		return nil, domain.NewInternalError("failed to save conversation", err)
	}
	return out, nil
}

// createFromDraft turns a model draft into a stored document and bumps
// the generation usage counters
func (s *Service) createFromDraft(ctx context.Context, u *domain.User, draft *llm.DocumentDraft, category string, meta models.MetadataPayload, source string) (*models.DocumentResponse, error) {
	docType := domain.DocumentType(draft.DocumentType)
	switch docType {
	case domain.TypeLegal, domain.TypeBusiness, domain.TypePersonal, domain.TypeOther:
	default:
		docType = domain.ClassifyDocumentType(category)
	}
	if draft.Category != "" {
		category = draft.Category
	}

	metadata := fromMetadataPayload(meta)
	metadata.Language = domain.NormalizeLanguage(draft.Language)
	if len(metadata.Keywords) == 0 {
		metadata.Keywords = draft.Keywords
	}

	d, err := domain.NewDocument(u.ID, draft.Title, docType, category, draft.Content, metadata, "Generado con IA")
	if err != nil {
		return nil, err
	}
	if err := s.docs.Create(ctx, d); err != nil {
		return nil, err
	}

	s.countCreated(source)
	u.RecordUsage("generate")
	if err := s.users.Update(ctx, u); err != nil {
		log.Printf("⚠️  Failed to record usage for %s: %v", u.Email, err)
	}

	log.Printf("🤖 Document generated: %s (%s) for %s", d.Title, d.ID, u.Email)
	return toDocumentResponse(d), nil
}
