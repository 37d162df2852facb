package sms

import (
	"context"
	"fmt"
	"log"
)

// Provider delivers SMS messages (Twilio or compatible gateway)
type Provider interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service sends the SMS login codes. Without a configured provider it logs
// messages to the console, mirroring the email service's development mode.
type Service struct {
	provider Provider
}

// NewService creates a new SMS service
func NewService(provider Provider) *Service {
	if provider == nil {
		log.Printf("⚠️  SMS service in console-only mode (configure an SMS provider for production)")
	} else {
		log.Printf("✅ SMS service initialized")
	}
	return &Service{provider: provider}
}

// SendVerificationCode delivers a 6-digit login code
func (s *Service) SendVerificationCode(ctx context.Context, toPhone, code string) error {
	body := fmt.Sprintf("Tu código de acceso a DocuForge es %s. Caduca en 10 minutos.", code)

	if s.provider == nil {
		log.Printf("📱 [SMS console] to=%s body=%q", toPhone, body)
		return nil
	}
	return s.provider.SendSMS(ctx, toPhone, body)
}
