package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType is the coarse classification of a document
type DocumentType string

const (
	TypeLegal    DocumentType = "legal"
	TypeBusiness DocumentType = "business"
	TypePersonal DocumentType = "personal"
	TypeOther    DocumentType = "other"
)

// DocumentStatus is the lifecycle state of a document
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusFinal    DocumentStatus = "final"
	StatusSigned   DocumentStatus = "signed"
	StatusArchived DocumentStatus = "archived"
)

// Permission is the access level granted to a collaborator
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
	PermissionSign Permission = "sign"
)

// Party is a person or entity named in a document
type Party struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Contact string `json:"contact,omitempty"`
}

// Metadata carries document attributes outside the content body
type Metadata struct {
	Language     string   `json:"language"`
	Jurisdiction string   `json:"jurisdiction"`
	Parties      []Party  `json:"parties,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Collaborator grants a non-creator user access to a document
type Collaborator struct {
	UserID     uuid.UUID  `json:"user_id"`
	Permission Permission `json:"permission"`
}

// VersionSnapshot is an immutable recorded state of a document's content
type VersionSnapshot struct {
	Version           int       `json:"version"`
	Content           string    `json:"content"`
	ModifiedBy        uuid.UUID `json:"modified_by"`
	ModifiedAt        time.Time `json:"modified_at"`
	ChangeDescription string    `json:"change_description"`
}

// Document is the core aggregate: content, metadata, collaborators,
// version history and signature state
type Document struct {
	ID            uuid.UUID
	Title         string
	Type          DocumentType
	Category      string
	Content       string
	Status        DocumentStatus
	CreatorID     uuid.UUID
	Metadata      Metadata
	Collaborators []Collaborator
	Signature     SignatureInfo
	History       []VersionSnapshot

	// Revision is an optimistic-concurrency stamp bumped on every persisted
	// mutation; a stale revision on write surfaces as a conflict.
	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDocument builds a draft document and seeds version 1 with the initial
// content. History always holds every version including the current one:
// the content field equals the highest-version snapshot.
func NewDocument(creator uuid.UUID, title string, docType DocumentType, category, content string, meta Metadata, changeDescription string) (*Document, error) {
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	if content == "" {
		return nil, NewValidationError("content is required")
	}
	if !validDocumentType(docType) {
		return nil, NewValidationError("unknown document type")
	}
	if category == "" {
		category = "General"
	}
	meta.Language = NormalizeLanguage(meta.Language)
	if meta.Jurisdiction == "" {
		meta.Jurisdiction = "general"
	}
	if changeDescription == "" {
		changeDescription = "Initial version"
	}

	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New(),
		Title:     title,
		Type:      docType,
		Category:  category,
		Content:   content,
		Status:    StatusDraft,
		CreatorID: creator,
		Metadata:  meta,
		Signature: SignatureInfo{Status: SignatureNotStarted},
		History: []VersionSnapshot{{
			Version:           1,
			Content:           content,
			ModifiedBy:        creator,
			ModifiedAt:        now,
			ChangeDescription: changeDescription,
		}},
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CurrentVersion returns the version number of the current content
func (d *Document) CurrentVersion() int {
	if len(d.History) == 0 {
		return 0
	}
	return d.History[len(d.History)-1].Version
}

// AppendVersion replaces the document content and records the new content as
// the next version snapshot. Version numbers increase by exactly one.
func (d *Document) AppendVersion(editor uuid.UUID, newContent, changeDescription string) error {
	if newContent == "" {
		return NewValidationError("content is required")
	}
	if changeDescription == "" {
		changeDescription = "Manual update"
	}
	next := d.CurrentVersion() + 1
	if next == 0 {
		next = 1
	}
	now := time.Now().UTC()
	d.History = append(d.History, VersionSnapshot{
		Version:           next,
		Content:           newContent,
		ModifiedBy:        editor,
		ModifiedAt:        now,
		ChangeDescription: changeDescription,
	})
	d.Content = newContent
	d.UpdatedAt = now
	return nil
}

// GetVersion returns the snapshot for a version number
func (d *Document) GetVersion(version int) (VersionSnapshot, error) {
	for _, v := range d.History {
		if v.Version == version {
			return v, nil
		}
	}
	return VersionSnapshot{}, NewNotFoundError("version")
}

// VersionsNewestFirst lists snapshots sorted by version descending
func (d *Document) VersionsNewestFirst() []VersionSnapshot {
	out := make([]VersionSnapshot, len(d.History))
	for i, v := range d.History {
		out[len(d.History)-1-i] = v
	}
	return out
}

// SetStatus validates and applies a lifecycle status
func (d *Document) SetStatus(status DocumentStatus) error {
	switch status {
	case StatusDraft, StatusFinal, StatusSigned, StatusArchived:
		d.Status = status
		d.UpdatedAt = time.Now().UTC()
		return nil
	}
	return NewValidationError("unknown document status")
}

// MergeMetadata overlays non-empty fields of the incoming metadata
func (d *Document) MergeMetadata(meta Metadata) {
	if meta.Language != "" {
		d.Metadata.Language = NormalizeLanguage(meta.Language)
	}
	if meta.Jurisdiction != "" {
		d.Metadata.Jurisdiction = meta.Jurisdiction
	}
	if len(meta.Parties) > 0 {
		d.Metadata.Parties = meta.Parties
	}
	if len(meta.Keywords) > 0 {
		d.Metadata.Keywords = meta.Keywords
	}
	d.UpdatedAt = time.Now().UTC()
}

// ReplaceCollaborators swaps the whole collaborator set. The replacement is
// not additive: omitted existing collaborators lose access. A user may
// appear at most once and the creator cannot be their own collaborator.
func (d *Document) ReplaceCollaborators(collaborators []Collaborator) error {
	seen := make(map[uuid.UUID]bool, len(collaborators))
	for _, c := range collaborators {
		if c.UserID == uuid.Nil {
			return NewValidationError("collaborator user id is required")
		}
		if c.UserID == d.CreatorID {
			return NewValidationError("creator cannot be added as a collaborator")
		}
		if seen[c.UserID] {
			return NewValidationError("duplicate collaborator")
		}
		if !validPermission(c.Permission) {
			return NewValidationError("unknown permission")
		}
		seen[c.UserID] = true
	}
	d.Collaborators = collaborators
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCollaboratorPermission updates a single collaborator's permission,
// failing with NotFound when the user is not currently a collaborator
func (d *Document) SetCollaboratorPermission(userID uuid.UUID, permission Permission) error {
	if !validPermission(permission) {
		return NewValidationError("unknown permission")
	}
	for i := range d.Collaborators {
		if d.Collaborators[i].UserID == userID {
			d.Collaborators[i].Permission = permission
			d.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return NewNotFoundError("collaborator")
}

// RemoveCollaborator drops a collaborator. Removing an absent user is a
// no-op success, so the operation is idempotent.
func (d *Document) RemoveCollaborator(userID uuid.UUID) {
	filtered := d.Collaborators[:0]
	for _, c := range d.Collaborators {
		if c.UserID != userID {
			filtered = append(filtered, c)
		}
	}
	d.Collaborators = filtered
	d.UpdatedAt = time.Now().UTC()
}

// CollaboratorPermission looks up the permission for a user, if any
func (d *Document) CollaboratorPermission(userID uuid.UUID) (Permission, bool) {
	for _, c := range d.Collaborators {
		if c.UserID == userID {
			return c.Permission, true
		}
	}
	return "", false
}

func validDocumentType(t DocumentType) bool {
	switch t {
	case TypeLegal, TypeBusiness, TypePersonal, TypeOther:
		return true
	}
	return false
}

func validPermission(p Permission) bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionSign:
		return true
	}
	return false
}

// ClassifyDocumentType maps a free-text category onto a document type
func ClassifyDocumentType(category string) DocumentType {
	legal := []string{"contrato", "demanda", "contrademanda", "afidavit", "acuerdo", "testamento", "nda", "contract", "agreement"}
	business := []string{"factura", "presupuesto", "propuesta", "plan_negocio", "invoice", "proposal"}
	personal := []string{"carta", "curriculum", "solicitud", "letter", "resume"}

	lower := strings.ToLower(category)
	for _, t := range legal {
		if strings.Contains(lower, t) {
			return TypeLegal
		}
	}
	for _, t := range business {
		if strings.Contains(lower, t) {
			return TypeBusiness
		}
	}
	for _, t := range personal {
		if strings.Contains(lower, t) {
			return TypePersonal
		}
	}
	return TypeOther
}
