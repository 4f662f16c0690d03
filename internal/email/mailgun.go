package email

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v5"
)

// MailgunService implements the Service interface using Mailgun's API.
type MailgunService struct {
	client      mailgun.Mailgun
	domain      string
	fromAddress string
	fromName    string
}

// NewMailgunService creates a new Mailgun email service.
// domain: Mailgun domain (e.g., "mg.example.com")
// apiKey: Mailgun API key
func NewMailgunService(domain, apiKey, fromAddress, fromName string) *MailgunService {
	// Values loaded from env files often carry trailing whitespace
	domain = strings.TrimSpace(domain)
	apiKey = strings.TrimSpace(apiKey)

	mg := mailgun.NewMailgun(apiKey)

	// EU accounts are served from a separate API host (MAILGUN_EU=true)
	if os.Getenv("MAILGUN_EU") == "true" {
		_ = mg.SetAPIBase("https://api.eu.mailgun.net")
	}
	return &MailgunService{
		client:      mg,
		domain:      domain,
		fromAddress: strings.TrimSpace(fromAddress),
		fromName:    strings.TrimSpace(fromName),
	}
}

// SendOptimizationReport sends the report as text with an HTML alternative.
func (s *MailgunService) SendOptimizationReport(ctx context.Context, to string, report Report) error {
	sender := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	message := mailgun.NewMessage(s.domain, sender, report.Subject, report.Text, to)
	message.SetHTML(report.HTML())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send optimization report: %w", err)
	}
	return nil
}
