package utils

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

const (
	senderName  = "Catalogue Import"
	senderEmail = "no-reply@catalog-import.local"
)

// SendEmail sends an email using SendGrid
func SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	if config.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	from := mail.NewEmail(senderName, senderEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// EmailNotifier mails the summary of a finished auto-fill run.
type EmailNotifier struct {
	To     string
	Logger *logger.Logger
	// Send defaults to SendEmail.
	Send func(toName, toEmail, subject, textContent, htmlContent string) error
}

// NewEmailNotifier returns nil when no recipient is configured.
func NewEmailNotifier(to string, log *logger.Logger) *EmailNotifier {
	if to == "" {
		return nil
	}
	return &EmailNotifier{To: to, Logger: log, Send: SendEmail}
}

// AutoFillFinished sends the run summary.
func (n *EmailNotifier) AutoFillFinished(_ context.Context, result models.AutoFillResult) error {
	subject := fmt.Sprintf("Auto-fill: %d imported, %d skipped, %d errors",
		result.TotalImported, result.TotalSkipped, result.TotalErrors)
	if result.Aborted {
		subject += " (stopped)"
	}

	text := FormatAutoFillSummary(result)
	body := "<pre>" + html.EscapeString(text) + "</pre>"

	send := n.Send
	if send == nil {
		send = SendEmail
	}
	if err := send("", n.To, subject, text, body); err != nil {
		return err
	}
	if n.Logger != nil {
		n.Logger.Info("auto-fill summary sent", "to", n.To)
	}
	return nil
}

// formatErrors lists the categories that ended in error, for log lines.
func formatErrors(result models.AutoFillResult) string {
	var names []string
	for _, c := range result.Categories {
		if c.Status == models.CategoryError {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}
