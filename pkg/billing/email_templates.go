package billing

import "fmt"

// buildSubscriptionActivatedEmail returns the email content for a newly activated subscription.
func buildSubscriptionActivatedEmail(userName, plan, baseURL string) (subject, html, plainText string) {
	subject = "Tu suscripción de DocuForge ha sido activada"

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>¡Suscripción activada!</h2>
			<p>Hola %s,</p>
			<p>Tu plan <strong>%s</strong> ya está activo. Esto es lo que incluye:</p>
			<ul>
				<li>Generación de documentos legales con IA</li>
				<li>Análisis de riesgos y cláusulas</li>
				<li>Edición asistida y versionado completo</li>
			</ul>
			<p><a href="%s/dashboard" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Ir al panel</a></p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, userName, plan, baseURL)

	plainText = fmt.Sprintf(`Hola %s,

Tu plan %s ya está activo. Esto es lo que incluye:

- Generación de documentos legales con IA
- Análisis de riesgos y cláusulas
- Edición asistida y versionado completo

Visita tu panel: %s/dashboard

Gracias,
El equipo de DocuForge
`, userName, plan, baseURL)

	return
}

// buildSubscriptionCancelledEmail returns the email content for a cancelled subscription.
func buildSubscriptionCancelledEmail(userName, baseURL string) (subject, html, plainText string) {
	subject = "Tu suscripción de DocuForge ha sido cancelada"

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Suscripción cancelada</h2>
			<p>Hola %s,</p>
			<p>Lamentamos verte partir. Tu suscripción ha sido cancelada y tu cuenta vuelve al plan gratuito.</p>
			<p><strong>Tus documentos se conservan.</strong> Puedes seguir consultándolos y descargándolos en cualquier momento.</p>
			<p>Puedes reactivar tu suscripción desde tu panel:</p>
			<p><a href="%s/dashboard/settings" style="background-color: #2196F3; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Reactivar suscripción</a></p>
			<p>Si tienes comentarios, nos encantaría escucharlos en soporte@docuforge.io.</p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, userName, baseURL)

	plainText = fmt.Sprintf(`Hola %s,

Lamentamos verte partir. Tu suscripción ha sido cancelada y tu cuenta vuelve al plan gratuito.

Tus documentos se conservan. Puedes seguir consultándolos y descargándolos en cualquier momento.

Puedes reactivar tu suscripción desde tu panel:
%s/dashboard/settings

Si tienes comentarios, nos encantaría escucharlos en soporte@docuforge.io.

Gracias,
El equipo de DocuForge
`, userName, baseURL)

	return
}

// buildSubscriptionRenewedEmail returns the email content for a renewed subscription.
func buildSubscriptionRenewedEmail(userName, plan, nextBillingDate, baseURL string) (subject, html, plainText string) {
	subject = "Tu suscripción de DocuForge ha sido renovada"

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Suscripción renovada</h2>
			<p>Hola %s,</p>
			<p>Tu plan <strong>%s</strong> se ha renovado correctamente.</p>
			<p><strong>Próxima fecha de cobro:</strong> %s</p>
			<p><a href="%s/dashboard" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Ir al panel</a></p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, userName, plan, nextBillingDate, baseURL)

	plainText = fmt.Sprintf(`Hola %s,

Tu plan %s se ha renovado correctamente.

Próxima fecha de cobro: %s

Visita tu panel: %s/dashboard

Gracias,
El equipo de DocuForge
`, userName, plan, nextBillingDate, baseURL)

	return
}

// buildPaymentFailedEmail returns the email content when a payment fails.
func buildPaymentFailedEmail(userName, baseURL string) (subject, html, plainText string) {
	subject = "Acción requerida: falló el pago de tu suscripción de DocuForge"

	html = fmt.Sprintf(`
		<html>
		<body>
			<h2>Problema con tu pago</h2>
			<p>Hola %s,</p>
			<p>No pudimos procesar el pago de tu suscripción. Volveremos a intentarlo en los próximos días.</p>
			<p>Para evitar la interrupción del servicio, actualiza tu método de pago:</p>
			<p><a href="%s/dashboard/settings" style="background-color: #f44336; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Actualizar método de pago</a></p>
			<p>Gracias,<br>El equipo de DocuForge</p>
		</body>
		</html>
	`, userName, baseURL)

	plainText = fmt.Sprintf(`Hola %s,

No pudimos procesar el pago de tu suscripción. Volveremos a intentarlo en los próximos días.

Para evitar la interrupción del servicio, actualiza tu método de pago:
%s/dashboard/settings

Gracias,
El equipo de DocuForge
`, userName, baseURL)

	return
}
