package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

const resetTemplate = `<html>
<body style="font-family: sans-serif;">
  <p>Bonjour {{.Name}},</p>
  <p>Une réinitialisation de mot de passe a été demandée pour votre compte.
  Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe&nbsp;:</p>
  <p><a href="{{.ResetURL}}">Réinitialiser mon mot de passe</a></p>
  <p>Ce lien expire dans 15 minutes. Si vous n'êtes pas à l'origine de cette
  demande, ignorez simplement cet e-mail.</p>
  <p>— La boulangerie</p>
</body>
</html>`

type resetData struct {
	Name     string
	ResetURL string
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		tmpl:   template.Must(template.New("reset").Parse(resetTemplate)),
	}
}

// SendPasswordReset mails a reset link to the given address.
func (m *Mailer) SendPasswordReset(toEmail, toName, resetURL string) error {
	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, resetData{Name: toName, ResetURL: resetURL}); err != nil {
		return fmt.Errorf("render reset mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Réinitialisation de votre mot de passe")
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
