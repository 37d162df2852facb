package documents

import (
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

func toMetadataPayload(m domain.Metadata) models.MetadataPayload {
	out := models.MetadataPayload{
		Language:     m.Language,
		Jurisdiction: m.Jurisdiction,
		Keywords:     m.Keywords,
	}
	for _, p := range m.Parties {
		out.Parties = append(out.Parties, models.PartyPayload{
			Name:    p.Name,
			Role:    p.Role,
			Contact: p.Contact,
		})
	}
	return out
}

func fromMetadataPayload(m models.MetadataPayload) domain.Metadata {
	out := domain.Metadata{
		Language:     m.Language,
		Jurisdiction: m.Jurisdiction,
		Keywords:     m.Keywords,
	}
	for _, p := range m.Parties {
		out.Parties = append(out.Parties, domain.Party{
			Name:    p.Name,
			Role:    p.Role,
			Contact: p.Contact,
		})
	}
	return out
}

func toSignatureResponse(s domain.SignatureInfo) models.SignatureResponse {
	out := models.SignatureResponse{
		IsSignable: s.IsSignable,
		Status:     string(s.Status),
		EnvelopeID: s.EnvelopeID,
	}
	for _, signer := range s.Signers {
		out.Signers = append(out.Signers, models.SignerResponse{
			Name:     signer.Name,
			Email:    signer.Email,
			Status:   string(signer.Status),
			SignedAt: signer.SignedAt,
		})
	}
	return out
}

func toCollaboratorResponses(collaborators []domain.Collaborator) []models.CollaboratorResponse {
	out := make([]models.CollaboratorResponse, 0, len(collaborators))
	for _, c := range collaborators {
		out = append(out, models.CollaboratorResponse{
			UserID:     c.UserID.String(),
			Permission: string(c.Permission),
		})
	}
	return out
}

func toDocumentResponse(d *domain.Document) *models.DocumentResponse {
	return &models.DocumentResponse{
		ID:            d.ID.String(),
		Title:         d.Title,
		Type:          string(d.Type),
		Category:      d.Category,
		Content:       d.Content,
		Status:        string(d.Status),
		CreatorID:     d.CreatorID.String(),
		Metadata:      toMetadataPayload(d.Metadata),
		Collaborators: toCollaboratorResponses(d.Collaborators),
		Signature:     toSignatureResponse(d.Signature),
		Version:       d.CurrentVersion(),
		Revision:      d.Revision,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDocumentSummary(d *domain.Document) models.DocumentSummary {
	return models.DocumentSummary{
		ID:        d.ID.String(),
		Title:     d.Title,
		Type:      string(d.Type),
		Category:  d.Category,
		Status:    string(d.Status),
		Version:   d.CurrentVersion(),
		UpdatedAt: d.UpdatedAt,
	}
}

func toVersionResponses(snapshots []domain.VersionSnapshot, includeContent bool) []models.VersionResponse {
	out := make([]models.VersionResponse, 0, len(snapshots))
	for _, v := range snapshots {
		entry := models.VersionResponse{
			Version:           v.Version,
			ModifiedBy:        v.ModifiedBy.String(),
			ModifiedAt:        v.ModifiedAt,
			ChangeDescription: v.ChangeDescription,
		}
		if includeContent {
			entry.Content = v.Content
		}
		out = append(out, entry)
	}
	return out
}
