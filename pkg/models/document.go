package models

import "time"

// PartyPayload represents a party named in document metadata
type PartyPayload struct {
	Name    string `json:"name" validate:"required"`
	Role    string `json:"role,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// MetadataPayload represents document metadata in requests and responses
type MetadataPayload struct {
	Language     string         `json:"language,omitempty"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Parties      []PartyPayload `json:"parties,omitempty" validate:"dive"`
	Keywords     []string       `json:"keywords,omitempty"`
}

// CreateDocumentRequest creates a document from caller-supplied content
type CreateDocumentRequest struct {
	Title    string          `json:"title" validate:"required,min=1,max=200"`
	Type     string          `json:"type,omitempty" validate:"omitempty,oneof=legal business personal other"`
	Category string          `json:"category,omitempty"`
	Content  string          `json:"content" validate:"required"`
	Metadata MetadataPayload `json:"metadata,omitempty"`
}

// GenerateDocumentRequest asks the AI to draft a document from a prompt
type GenerateDocumentRequest struct {
	Prompt   string          `json:"prompt" validate:"required,min=10"`
	Category string          `json:"category,omitempty"`
	Metadata MetadataPayload `json:"metadata,omitempty"`
}

// TemplateGenerateRequest asks the AI to fill a known template
type TemplateGenerateRequest struct {
	Template string            `json:"template" validate:"required"`
	Fields   map[string]string `json:"fields" validate:"required"`
	Metadata MetadataPayload   `json:"metadata,omitempty"`
}

// ConversationMessageRequest advances a guided generation conversation
type ConversationMessageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message" validate:"required"`
}

// ConversationResponse is one turn of a guided generation conversation
type ConversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Reply          string            `json:"reply"`
	Ready          bool              `json:"ready"`
	Document       *DocumentResponse `json:"document,omitempty"`
}

// AnalyzeDocumentRequest asks for an AI analysis of content
type AnalyzeDocumentRequest struct {
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
}

// AnalyzeDocumentResponse carries the structured analysis
type AnalyzeDocumentResponse struct {
	Summary  string   `json:"summary"`
	Risks    []string `json:"risks,omitempty"`
	Missing  []string `json:"missing_clauses,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// EditDocumentRequest mutates document content. Revision is the optimistic
// concurrency stamp the caller read; a stale value is rejected with a
// conflict so concurrent edits cannot silently overwrite each other.
type EditDocumentRequest struct {
	Title             string           `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content           string           `json:"content,omitempty"`
	ChangeDescription string           `json:"change_description,omitempty"`
	Metadata          *MetadataPayload `json:"metadata,omitempty"`
	Revision          int              `json:"revision" validate:"required,min=1"`
}

// AIEditRequest asks the AI to apply an instruction to the document
type AIEditRequest struct {
	Instruction string `json:"instruction" validate:"required,min=5"`
	Revision    int    `json:"revision" validate:"required,min=1"`
}

// AIMergeRequest asks the AI to fold another document into this one
type AIMergeRequest struct {
	SourceDocumentID string `json:"source_document_id" validate:"required,uuid"`
	Revision         int    `json:"revision" validate:"required,min=1"`
}

// TranslateDocumentRequest asks for a translated copy
type TranslateDocumentRequest struct {
	TargetLanguage string `json:"target_language" validate:"required,oneof=es en"`
}

// UpdateStatusRequest changes the document lifecycle status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft final signed archived"`
}

// CollaboratorPayload grants one user access to a document
type CollaboratorPayload struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	Permission string `json:"permission" validate:"required,oneof=view edit sign"`
}

// ShareDocumentRequest replaces the collaborator set
type ShareDocumentRequest struct {
	Collaborators []CollaboratorPayload `json:"collaborators" validate:"required,dive"`
}

// UpdateCollaboratorRequest changes one collaborator's permission
type UpdateCollaboratorRequest struct {
	Permission string `json:"permission" validate:"required,oneof=view edit sign"`
}

// SignerPayload lists one signer for the signature workflow
type SignerPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// PrepareSignatureRequest starts the signature workflow
type PrepareSignatureRequest struct {
	Signers []SignerPayload `json:"signers" validate:"required,min=1,dive"`
}

// SignerDecisionRequest records one signer's outcome
type SignerDecisionRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"required,oneof=signed declined"`
}

// SignerResponse is a signer in responses
type SignerResponse struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Status   string     `json:"status"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// SignatureResponse is the signing state in responses
type SignatureResponse struct {
	IsSignable bool             `json:"is_signable"`
	Status     string           `json:"status"`
	EnvelopeID string           `json:"envelope_id,omitempty"`
	Signers    []SignerResponse `json:"signers,omitempty"`
}

// CollaboratorResponse is a collaborator in responses
type CollaboratorResponse struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

// DocumentResponse is the full document representation
type DocumentResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Type          string                 `json:"type"`
	Category      string                 `json:"category"`
	Content       string                 `json:"content"`
	Status        string                 `json:"status"`
	CreatorID     string                 `json:"creator_id"`
	Metadata      MetadataPayload        `json:"metadata"`
	Collaborators []CollaboratorResponse `json:"collaborators,omitempty"`
	Signature     SignatureResponse      `json:"signature"`
	Version       int                    `json:"version"`
	Revision      int                    `json:"revision"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// DocumentSummary is the short listing representation
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentListResponse is a paged document listing
type DocumentListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// VersionResponse is one version history entry
type VersionResponse struct {
	Version           int       `json:"version"`
	Content           string    `json:"content,omitempty"`
	ModifiedBy        string    `json:"modified_by"`
	ModifiedAt        time.Time `json:"modified_at"`
	ChangeDescription string    `json:"change_description"`
}

// VersionListResponse lists version history newest first
type VersionListResponse struct {
	Versions []VersionResponse `json:"versions"`
	Current  int               `json:"current"`
}

// ExportResponse carries an exported rendering of a document
type ExportResponse struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
