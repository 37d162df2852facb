package documents

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/esign"
	"github.com/docuforge/docuforge/pkg/models"
)

// Share replaces the document's collaborator set. The replacement is full:
// collaborators omitted from the request lose access.
func (s *Service) Share(ctx context.Context, userID, docID uuid.UUID, req models.ShareDocumentRequest) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageCollaborators(u, d) {
		return nil, domain.NewForbiddenError("only the creator can manage collaborators")
	}

	collaborators := make([]domain.Collaborator, 0, len(req.Collaborators))
	added := make([]domain.Collaborator, 0, len(req.Collaborators))
	for _, c := range req.Collaborators {
		id, err := uuid.Parse(c.UserID)
		if err != nil {
			return nil, domain.NewValidationError("invalid collaborator user id")
		}
		collaborator := domain.Collaborator{UserID: id, Permission: domain.Permission(c.Permission)}
		if _, exists := d.CollaboratorPermission(id); !exists {
			added = append(added, collaborator)
		}
		collaborators = append(collaborators, collaborator)
	}

	if err := d.ReplaceCollaborators(collaborators); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}

	s.notifyShared(ctx, u, d, added)
	return toDocumentResponse(d), nil
}

// notifyShared emails newly added collaborators. Failures are logged, never
// surfaced: sharing succeeded once the collaborator set is stored.
func (s *Service) notifyShared(ctx context.Context, owner *domain.User, d *domain.Document, added []domain.Collaborator) {
	if s.notifier == nil {
		return
	}
	for _, c := range added {
		collaborator, err := s.users.GetByID(ctx, c.UserID)
		if err != nil {
			log.Printf("⚠️  Cannot notify collaborator %s: %v", c.UserID, err)
			continue
		}
		if err := s.notifier.SendDocumentSharedEmail(collaborator.Email, collaborator.Name, owner.Name, d.Title, string(c.Permission)); err != nil {
			log.Printf("⚠️  Failed to send share email to %s: %v", collaborator.Email, err)
		}
	}
}

// Collaborators lists the document's collaborator set
func (s *Service) Collaborators(ctx context.Context, userID, docID uuid.UUID) ([]models.CollaboratorResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	return toCollaboratorResponses(d.Collaborators), nil
}

// UpdateCollaborator changes one collaborator's permission
func (s *Service) UpdateCollaborator(ctx context.Context, userID, docID, collaboratorID uuid.UUID, permission string) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageCollaborators(u, d) {
		return nil, domain.NewForbiddenError("only the creator can manage collaborators")
	}
	if err := d.SetCollaboratorPermission(collaboratorID, domain.Permission(permission)); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}
	return toDocumentResponse(d), nil
}

// RemoveCollaborator revokes a collaborator's access. Removing a user who
// is not a collaborator succeeds silently.
func (s *Service) RemoveCollaborator(ctx context.Context, userID, docID, collaboratorID uuid.UUID) error {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return err
	}
	if !domain.CanManageCollaborators(u, d) {
		return domain.NewForbiddenError("only the creator can manage collaborators")
	}
	d.RemoveCollaborator(collaboratorID)
	return s.docs.Update(ctx, d)
}

// PrepareSignature starts the signing workflow, registers the envelope with
// the e-signature provider when one is configured, and emails the signers
func (s *Service) PrepareSignature(ctx context.Context, userID, docID uuid.UUID, req models.PrepareSignatureRequest) (*models.SignatureResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	signers := make([]domain.Signer, 0, len(req.Signers))
	for _, p := range req.Signers {
		signers = append(signers, domain.Signer{Name: p.Name, Email: p.Email})
	}
	if err := d.PrepareForSigning(u, signers); err != nil {
		return nil, err
	}

	if s.esign != nil && s.esign.IsEnabled() {
		esignSigners := make([]esign.Signer, 0, len(d.Signature.Signers))
		for _, signer := range d.Signature.Signers {
			esignSigners = append(esignSigners, esign.Signer{Name: signer.Name, Email: signer.Email})
		}
		envelopeID, err := s.esign.StartSigning(ctx, d.Title, d.Content, esignSigners)
		if err != nil {
			return nil, domain.NewInternalError("failed to start e-signature envelope", err)
		}
		if err := d.SetEnvelopeID(u, envelopeID); err != nil {
			return nil, err
		}
	}

	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, signer := range d.Signature.Signers {
			if err := s.notifier.SendSignatureRequestEmail(signer.Email, signer.Name, u.Name, d.Title); err != nil {
				log.Printf("⚠️  Failed to send signature request to %s: %v", signer.Email, err)
			}
		}
	}

	log.Printf("✍️  Signing started: %s with %d signers", d.ID, len(d.Signature.Signers))
	resp := toSignatureResponse(d.Signature)
	return &resp, nil
}

// SignatureStatus returns the current signing state
func (s *Service) SignatureStatus(ctx context.Context, userID, docID uuid.UUID) (*models.SignatureResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(u, d) {
		return nil, domain.NewForbiddenError("you do not have access to this document")
	}
	resp := toSignatureResponse(d.Signature)
	return &resp, nil
}

// RecordSignerDecision applies one signer's signed/declined outcome
func (s *Service) RecordSignerDecision(ctx context.Context, userID, docID uuid.UUID, req models.SignerDecisionRequest) (*models.SignatureResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if err := d.RecordSignerDecision(u, req.Email, domain.SignerStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}
	resp := toSignatureResponse(d.Signature)
	return &resp, nil
}

// CompleteSigning finalizes the workflow and marks the document signed
func (s *Service) CompleteSigning(ctx context.Context, userID, docID uuid.UUID) (*models.DocumentResponse, error) {
	u, d, err := s.load(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if err := d.CompleteSigning(u); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, d); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordSignatureCompleted()
	}
	log.Printf("✅ Signing completed: %s", d.ID)
	return toDocumentResponse(d), nil
}
