package esign

import (
	"context"
	"strings"
)

// Service wraps an e-signature provider. A nil provider disables the
// integration: the signature workflow then runs locally without an
// external envelope.
type Service struct {
	provider Provider
}

// NewService creates the e-signature service
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// IsEnabled returns true when an external provider is configured
func (s *Service) IsEnabled() bool {
	return s.provider != nil
}

// StartSigning creates and sends an envelope for the document, returning
// the provider envelope id. Disabled service returns an empty id.
func (s *Service) StartSigning(ctx context.Context, title, content string, signers []Signer) (string, error) {
	if !s.IsEnabled() {
		return "", nil
	}

	recipients := make([]Recipient, len(signers))
	for i, signer := range signers {
		first, last := splitName(signer.Name)
		recipients[i] = Recipient{
			Email:     signer.Email,
			FirstName: first,
			LastName:  last,
			Role:      "signer",
		}
	}

	envelope, err := s.provider.CreateEnvelope(ctx, title, content, recipients)
	if err != nil {
		return "", err
	}

	if err := s.provider.SendEnvelope(ctx, envelope.ID, "Solicitud de firma: "+title, ""); err != nil {
		return "", err
	}
	return envelope.ID, nil
}

// Status fetches the provider-side envelope status
func (s *Service) Status(ctx context.Context, envelopeID string) (string, error) {
	if !s.IsEnabled() || envelopeID == "" {
		return "", nil
	}
	envelope, err := s.provider.GetEnvelopeStatus(ctx, envelopeID)
	if err != nil {
		return "", err
	}
	return envelope.Status, nil
}

// Signer mirrors the domain signer for provider calls without importing
// the domain package
type Signer struct {
	Name  string
	Email string
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
