// Package email delivers optimization reports to account holders.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

// Service defines the interface for sending emails.
// Implementations include Mailgun for production, Console for local
// development and Mock for testing.
type Service interface {
	// SendOptimizationReport sends a rendered run report to one recipient.
	SendOptimizationReport(ctx context.Context, to string, report Report) error
}

// Report is a rendered optimization run
type Report struct {
	RunID   string
	Subject string
	Text    string
	Link    string
}

// HTML wraps the plain-text tables in a preformatted block
func (r Report) HTML() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body style="font-family: Arial, sans-serif; color: #333;">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(r.Subject))
	fmt.Fprintf(&b, `<pre style="font-size: 12px;">%s</pre>`, html.EscapeString(r.Text))
	if r.Link != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View this run</a></p>`, html.EscapeString(r.Link))
	}
	b.WriteString(`<p style="color: #999; font-size: 12px;">This is an automated message, please do not reply.</p></body></html>`)
	return b.String()
}

// BuildReport renders a stored run as a plain-text report
func BuildReport(run *models.Run, appURL string) (Report, error) {
	var text, subject string
	switch run.Kind {
	case models.RunOptimize:
		var r models.OptimizationResult
		if err := json.Unmarshal(run.Result, &r); err != nil {
			return Report{}, fmt.Errorf("decode run result: %w", err)
		}
		subject = "Your GEM controller optimization"
		text = format.Result(format.ASCII, r)
	case models.RunTrip:
		var r models.TripOptimizationResult
		if err := json.Unmarshal(run.Result, &r); err != nil {
			return Report{}, fmt.Errorf("decode run result: %w", err)
		}
		subject = "Your GEM trip optimization"
		text = format.TripResult(format.ASCII, r)
	default:
		return Report{}, fmt.Errorf("unknown run kind %q", run.Kind)
	}

	rep := Report{RunID: run.ID.String(), Subject: subject, Text: text}
	if appURL != "" {
		rep.Link = fmt.Sprintf("%s/runs/%s", strings.TrimSuffix(appURL, "/"), run.ID)
	}
	return rep, nil
}

// New returns the service for the configured provider
func New(cfg *config.EmailConfig) Service {
	switch cfg.Provider {
	case config.EmailMailgun:
		return NewMailgunService(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.FromAddress, cfg.FromName)
	case config.EmailMock:
		return NewMockService()
	default:
		return NewConsoleService(cfg.FromAddress, cfg.FromName)
	}
}
