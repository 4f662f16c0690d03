package email

import (
	"context"
	"log"
)

// ConsoleService is an email service that logs emails to the console
// This is useful for local development and testing
type ConsoleService struct {
	fromAddress string
	fromName    string
}

// NewConsoleService creates a new console-based email service
func NewConsoleService(fromAddress, fromName string) *ConsoleService {
	return &ConsoleService{fromAddress: fromAddress, fromName: fromName}
}

// SendOptimizationReport logs the report to the console
func (s *ConsoleService) SendOptimizationReport(_ context.Context, to string, report Report) error {
	log.Println("========================================")
	log.Println("OPTIMIZATION REPORT EMAIL (Console Mode)")
	log.Println("========================================")
	log.Printf("To: %s", to)
	log.Printf("From: %s <%s>", s.fromName, s.fromAddress)
	log.Printf("Subject: %s", report.Subject)
	log.Println("----------------------------------------")
	log.Print("\n" + report.Text)
	if report.Link != "" {
		log.Printf("Link: %s", report.Link)
	}
	log.Println("========================================")
	return nil
}
