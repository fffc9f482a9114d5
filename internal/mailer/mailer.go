package mailer

import "embed"

const (
	FromName          = "Balneário Rio Preto"
	maxRetries        = 3
	LeadAlertTemplate = "lead_alert.tmpl"
	IntakeTemplate    = "intake_summary.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
