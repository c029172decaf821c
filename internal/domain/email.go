package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ModerationResultEmailData holds data for the event approved/rejected email
// sent to the organizer.
type ModerationResultEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	Approved   bool
	Reason     string
}

// RegistrationConfirmationEmailData holds data for the registration
// confirmation email.
type RegistrationConfirmationEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	EventDate  string
	EventTime  string
	Location   string
}

// EmailService defines the contract for sending domain-level emails.
// Delivery is best-effort; callers log failures and do not fail the
// triggering operation.
type EmailService interface {
	SendModerationResult(ctx context.Context, data *ModerationResultEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
}
