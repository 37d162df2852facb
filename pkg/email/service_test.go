package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewService_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "")
	assert.False(t, svc.useSendGrid)
	assert.Equal(t, "from@example.com", svc.fromEmail)
	assert.Equal(t, "DocuForge", svc.fromName)
	assert.Equal(t, "https://app.docuforge.io", svc.baseURL)
}

func TestNewService_SendGridMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "SG.test-key")
	assert.True(t, svc.useSendGrid)
	assert.Equal(t, "SG.test-key", svc.sendGridKey)
}

func TestSendVerificationEmail_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "")

	err := svc.SendVerificationEmail("user@example.com", "Ana", "verify-token-123")
	assert.NoError(t, err, "Console mode should not error")
}

func TestSendPasswordResetEmail_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "")

	err := svc.SendPasswordResetEmail("user@example.com", "Ana", "reset-token-123")
	assert.NoError(t, err)
}

func TestSendDocumentSharedEmail_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "")

	err := svc.SendDocumentSharedEmail("collab@example.com", "Luis", "Ana", "Contrato de Servicios", "edit")
	assert.NoError(t, err)
}

func TestSendSignatureRequestEmail_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "DocuForge", "https://app.docuforge.io", "")

	err := svc.SendSignatureRequestEmail("signer@example.com", "Luis", "Ana", "Contrato de Servicios")
	assert.NoError(t, err)
}
