// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock
// implementations in tests.
type Service interface {
	SendWelcomeEmail(toEmail, displayName string, migratedRecords int) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client *resend.Client
	from   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required")
	}

	return &ResendClient{
		client: resend.NewClient(config.ResendAPIKey),
		from:   config.ResendFromEmail,
	}, nil
}

// Disabled returns a Service for deployments without a Resend key. Every
// send fails with a clear error; callers already treat email as
// best-effort.
func Disabled() Service {
	return disabledClient{}
}

type disabledClient struct{}

func (disabledClient) SendWelcomeEmail(toEmail, displayName string, migratedRecords int) error {
	return fmt.Errorf("email delivery is not configured")
}

// SendWelcomeEmail composes and sends the post-signup welcome email. When
// guest data was migrated the email mentions how many records came along.
func (c *ResendClient) SendWelcomeEmail(toEmail, displayName string, migratedRecords int) error {
	if displayName == "" {
		displayName = "there"
	}

	migrated := ""
	if migratedRecords > 0 {
		migrated = fmt.Sprintf("<p>We moved %d records from your guest session into your account, so everything you captured is already here.</p>", migratedRecords)
	}

	html := fmt.Sprintf(`
		<h1>Welcome to StudyDeck</h1>
		<p>Hi %s,</p>
		<p>Your account is ready. Your notes, summaries, and quizzes now sync across devices.</p>
		%s
		<p>Happy studying!</p>`, displayName, migrated)

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{toEmail},
		Subject: "Welcome to StudyDeck",
		Html:    html,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send welcome email via Resend: %w", err)
	}
	return nil
}
