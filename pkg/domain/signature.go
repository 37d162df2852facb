package domain

import (
	"time"
)

// SignatureStatus is the document-level signing state
type SignatureStatus string

const (
	SignatureNotStarted SignatureStatus = "not_started"
	SignatureInProgress SignatureStatus = "in_progress"
	SignatureCompleted  SignatureStatus = "completed"
)

// SignerStatus is the per-signer state
type SignerStatus string

const (
	SignerPending  SignerStatus = "pending"
	SignerSigned   SignerStatus = "signed"
	SignerDeclined SignerStatus = "declined"
)

// Signer is an external party listed for a document's signature workflow
type Signer struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Status   SignerStatus `json:"status"`
	SignedAt *time.Time   `json:"signed_at,omitempty"`
}

// SignatureInfo tracks the signing lifecycle of a document
type SignatureInfo struct {
	IsSignable bool            `json:"is_signable"`
	Status     SignatureStatus `json:"signature_status"`
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Signers    []Signer        `json:"signers,omitempty"`
}

// PrepareForSigning starts the signing workflow. Only the creator may
// initiate signing; admins are explicitly excluded. At least one signer is
// required and the workflow restarts from not_started with all signers
// pending.
func (d *Document) PrepareForSigning(actor *User, signers []Signer) error {
	if actor.ID != d.CreatorID {
		return NewForbiddenError("only the creator can start the signing process")
	}
	if len(signers) == 0 {
		return NewValidationError("at least one signer is required")
	}
	prepared := make([]Signer, len(signers))
	for i, s := range signers {
		if s.Email == "" {
			return NewValidationError("signer email is required")
		}
		prepared[i] = Signer{
			Name:   s.Name,
			Email:  NormalizeEmail(s.Email),
			Status: SignerPending,
		}
	}
	d.Signature = SignatureInfo{
		IsSignable: true,
		Status:     SignatureNotStarted,
		Signers:    prepared,
	}
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordSignerDecision applies a single signer's outcome. The first recorded
// signature moves the document-level status to in_progress; the status stays
// there until the creator completes the process.
func (d *Document) RecordSignerDecision(actor *User, email string, status SignerStatus) error {
	if actor.ID != d.CreatorID {
		return NewForbiddenError("only the creator can record signer decisions")
	}
	if !d.Signature.IsSignable {
		return NewValidationError("document is not prepared for signing")
	}
	if status != SignerSigned && status != SignerDeclined {
		return NewValidationError("signer status must be signed or declined")
	}
	email = NormalizeEmail(email)
	for i := range d.Signature.Signers {
		if d.Signature.Signers[i].Email != email {
			continue
		}
		d.Signature.Signers[i].Status = status
		if status == SignerSigned {
			now := time.Now().UTC()
			d.Signature.Signers[i].SignedAt = &now
		}
		// The first signature moves the workflow forward; a declination alone does not.
		if status == SignerSigned && d.Signature.Status == SignatureNotStarted {
			d.Signature.Status = SignatureInProgress
		}
		d.UpdatedAt = time.Now().UTC()
		return nil
	}
	return NewNotFoundError("signer")
}

// CompleteSigning finalizes the workflow and marks the document signed.
// Only the creator may complete. There is no all-signers-signed
// precondition: the creator can force-complete a partially signed document.
func (d *Document) CompleteSigning(actor *User) error {
	if actor.ID != d.CreatorID {
		return NewForbiddenError("only the creator can complete the signing process")
	}
	if !d.Signature.IsSignable {
		return NewValidationError("document is not prepared for signing")
	}
	d.Signature.Status = SignatureCompleted
	d.Status = StatusSigned
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// AllSignersSigned reports whether every listed signer has signed
func (d *Document) AllSignersSigned() bool {
	if len(d.Signature.Signers) == 0 {
		return false
	}
	for _, s := range d.Signature.Signers {
		if s.Status != SignerSigned {
			return false
		}
	}
	return true
}

// SetEnvelopeID attaches an external e-signature envelope reference
func (d *Document) SetEnvelopeID(actor *User, envelopeID string) error {
	if actor.ID != d.CreatorID {
		return NewForbiddenError("only the creator can manage the signing process")
	}
	d.Signature.EnvelopeID = envelopeID
	d.UpdatedAt = time.Now().UTC()
	return nil
}
