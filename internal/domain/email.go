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

// InvitationEmailData holds data for the invitation email.
type InvitationEmailData struct {
	Email         string
	TenantName    string
	InviterName   string
	RoleName      string
	AcceptURL     string
	ExpiresInDays int
	Locale        string
}

// WelcomeEmailData holds data for the club-registration welcome email.
type WelcomeEmailData struct {
	Email      string
	FirstName  string
	TenantName string
	Locale     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
}
