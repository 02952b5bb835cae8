package utils

import (
	"SurgiFlow/config"
	"SurgiFlow/services"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<!DOCTYPE html>
<html>
<head>
	<title>Your recovery questionnaires</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
		h1 { color: #333333; }
		td { padding: 4px 12px 4px 0; color: #666666; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Hello {{.Name}}</h1>
		<p>Your surgical team would like to follow your recovery. Please complete each questionnaire on or after its due date.</p>
		<table>
		{{range .Links}}<tr><td>{{.DueDate}}</td><td>{{.PromName}}</td><td><a href="{{.URL}}">Open questionnaire</a></td></tr>
		{{end}}</table>
	</div>
</body>
</html>
`))

// SMTPMailer sends PROM invitations over SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)}
}

// BuildInvitation assembles the message without sending it.
func (m *SMTPMailer) BuildInvitation(to, patientName string, links []services.FormLink) (*gomail.Message, error) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your recovery questionnaires")

	var text strings.Builder
	text.WriteString("Hello " + patientName + ",\n\nPlease complete the following questionnaires:\n")
	for _, l := range links {
		text.WriteString(l.DueDate.String() + "  " + l.PromName + "  " + l.URL + "\n")
	}
	msg.SetBody("text/plain", text.String())

	var html strings.Builder
	if err := invitationTemplate.Execute(&html, struct {
		Name  string
		Links []services.FormLink
	}{patientName, links}); err != nil {
		return nil, err
	}
	msg.AddAlternative("text/html", html.String())
	return msg, nil
}

func (m *SMTPMailer) SendPromInvitation(to, patientName string, links []services.FormLink) error {
	msg, err := m.BuildInvitation(to, patientName, links)
	if err != nil {
		return err
	}
	return m.dialer.DialAndSend(msg)
}
