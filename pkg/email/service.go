package email

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	baseURL     string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, baseURL, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		baseURL:     baseURL,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendVerificationEmail sends an email verification link
func (s *Service) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email/%s", s.baseURL, token)

	subject := "Verifica tu cuenta de DocuForge"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>¡Bienvenido a DocuForge!</h2>
			<p>Hola %s,</p>
			<p>Gracias por registrarte en DocuForge. Verifica tu dirección de correo haciendo clic en el botón:</p>
			<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Verificar correo</a></p>
			<p>O copia y pega este enlace en tu navegador:</p>
			<p><a href="%s">%s</a></p>
			<p><strong>Este enlace expira en 24 horas.</strong></p>
			<p>Si no creaste una cuenta, puedes ignorar este mensaje.</p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, toName, verificationURL, verificationURL, verificationURL)

	plainText := fmt.Sprintf(`
Hola %s,

¡Bienvenido a DocuForge! Verifica tu dirección de correo con el siguiente enlace:

%s

Este enlace expira en 24 horas.

Si no creaste una cuenta, puedes ignorar este mensaje.

Gracias,
El equipo de DocuForge
	`, toName, verificationURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	// Development mode: log to console
	return s.logEmailToConsole(toEmail, toName, subject, verificationURL)
}

// SendPasswordResetEmail sends a password reset link
func (s *Service) SendPasswordResetEmail(toEmail, toName, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)

	subject := "Restablece tu contraseña de DocuForge"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Solicitud de restablecimiento de contraseña</h2>
			<p>Hola %s,</p>
			<p>Recibimos una solicitud para restablecer la contraseña de tu cuenta de DocuForge.</p>
			<p><a href="%s" style="background-color: #2196F3; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Restablecer contraseña</a></p>
			<p>O copia y pega este enlace en tu navegador:</p>
			<p><a href="%s">%s</a></p>
			<p><strong>Este enlace expira en 1 hora.</strong></p>
			<p>Si no solicitaste el cambio, ignora este mensaje. Tu contraseña no será modificada.</p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, toName, resetURL, resetURL, resetURL)

	plainText := fmt.Sprintf(`
Hola %s,

Recibimos una solicitud para restablecer la contraseña de tu cuenta de DocuForge.

Usa el siguiente enlace:

%s

Este enlace expira en 1 hora.

Si no solicitaste el cambio, ignora este mensaje.

Gracias,
El equipo de DocuForge
	`, toName, resetURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	return s.logEmailToConsole(toEmail, toName, subject, resetURL)
}

// SendDocumentSharedEmail notifies a collaborator that a document was shared
func (s *Service) SendDocumentSharedEmail(toEmail, toName, ownerName, documentTitle, permission string) error {
	documentsURL := fmt.Sprintf("%s/documents", s.baseURL)

	subject := fmt.Sprintf("%s compartió un documento contigo", ownerName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Documento compartido</h2>
			<p>Hola %s,</p>
			<p>%s compartió contigo el documento <strong>%s</strong> con permiso de <strong>%s</strong>.</p>
			<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Ver mis documentos</a></p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, toName, ownerName, documentTitle, permission, documentsURL)

	plainText := fmt.Sprintf(`
Hola %s,

%s compartió contigo el documento "%s" con permiso de %s.

Accede a tus documentos: %s

Gracias,
El equipo de DocuForge
	`, toName, ownerName, documentTitle, permission, documentsURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	return s.logEmailToConsole(toEmail, toName, subject, documentsURL)
}

// SendSignatureRequestEmail asks a signer to review and sign a document
func (s *Service) SendSignatureRequestEmail(toEmail, toName, ownerName, documentTitle string) error {
	signURL := fmt.Sprintf("%s/sign", s.baseURL)

	subject := fmt.Sprintf("Solicitud de firma: %s", documentTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Solicitud de firma</h2>
			<p>Hola %s,</p>
			<p>%s solicita tu firma en el documento <strong>%s</strong>.</p>
			<p><a href="%s" style="background-color: #2196F3; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Revisar y firmar</a></p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, toName, ownerName, documentTitle, signURL)

	plainText := fmt.Sprintf(`
Hola %s,

%s solicita tu firma en el documento "%s".

Revisa y firma aquí: %s

Gracias,
El equipo de DocuForge
	`, toName, ownerName, documentTitle, signURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	return s.logEmailToConsole(toEmail, toName, subject, signURL)
}

// SendRawEmail sends an arbitrary email, used by background jobs
func (s *Service) SendRawEmail(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody)
	}
	return s.logEmailToConsole(toEmail, toName, subject, "")
}

func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)

	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

func (s *Service) logEmailToConsole(toEmail, toName, subject, actionURL string) error {
	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s <%s>", toName, toEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	if actionURL != "" {
		log.Printf("   Action URL: %s", actionURL)
	}
	log.Printf("   ---")
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	log.Printf("   Set SENDGRID_API_KEY environment variable to enable email sending")
	log.Printf("   ---")
	return nil
}
