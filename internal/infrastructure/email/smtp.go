package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

func (s *SMTPEmailService) SendNearLimitEmail(to string, usagePercent float64, remaining int) error {
	subject := "Cerca del límite de mensajes"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Cerca del límite de mensajes</h2>
			<p>Has usado el %.0f%% de tus mensajes mensuales.</p>
			<p>Te quedan <strong>%d mensajes</strong> disponibles este período.</p>
			<p>Considera mejorar tu plan para no interrumpir tus conversaciones.</p>
		</body>
		</html>
	`, usagePercent, remaining)

	plainBody := fmt.Sprintf(`
Cerca del límite de mensajes

Has usado el %.0f%% de tus mensajes mensuales.
Te quedan %d mensajes disponibles este período.

Considera mejorar tu plan para no interrumpir tus conversaciones.
	`, usagePercent, remaining)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendLimitExceededEmail(to string) error {
	subject := "Límite de mensajes excedido"
	htmlBody := `
		<html>
		<body>
			<h2>Límite de mensajes excedido</h2>
			<p>Has alcanzado el límite de mensajes de tu plan actual.</p>
			<p>Actualiza tu plan para continuar enviando mensajes.</p>
		</body>
		</html>
	`

	plainBody := `
Límite de mensajes excedido

Has alcanzado el límite de mensajes de tu plan actual.
Actualiza tu plan para continuar enviando mensajes.
	`

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendSuspendedEmail(to string) error {
	subject := "Suscripción suspendida"
	htmlBody := `
		<html>
		<body>
			<h2>Suscripción suspendida</h2>
			<p>Tu suscripción fue suspendida por exceder el límite de mensajes de tu plan.</p>
			<p>Actualiza tu plan o espera a la renovación del período para reactivarla.</p>
		</body>
		</html>
	`

	plainBody := `
Suscripción suspendida

Tu suscripción fue suspendida por exceder el límite de mensajes de tu plan.
Actualiza tu plan o espera a la renovación del período para reactivarla.
	`

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendPaymentSuccessEmail(to, transactionID, planName, formattedAmount string) error {
	subject := "Pago confirmado"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Pago confirmado</h2>
			<p>Tu pago fue procesado exitosamente.</p>
			<ul>
				<li>Plan: %s</li>
				<li>Monto: %s</li>
				<li>Referencia: %s</li>
			</ul>
			<p>Gracias por tu compra.</p>
		</body>
		</html>
	`, planName, formattedAmount, transactionID)

	plainBody := fmt.Sprintf(`
Pago confirmado

Tu pago fue procesado exitosamente.

Plan: %s
Monto: %s
Referencia: %s

Gracias por tu compra.
	`, planName, formattedAmount, transactionID)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendPaymentFailureEmail(to, transactionID, reason string) error {
	subject := "Pago rechazado"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Pago rechazado</h2>
			<p>No pudimos procesar tu pago (referencia %s).</p>
			<p>Motivo: %s</p>
			<p>Puedes intentarlo nuevamente desde la sección de facturación.</p>
		</body>
		</html>
	`, transactionID, reason)

	plainBody := fmt.Sprintf(`
Pago rechazado

No pudimos procesar tu pago (referencia %s).
Motivo: %s

Puedes intentarlo nuevamente desde la sección de facturación.
	`, transactionID, reason)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
