package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends transactional email through Resend. With no API key
// configured it logs and skips, so development environments work without an
// email provider.
type ResendMailer struct {
	client    *resend.Client
	fromEmail string
	webHost   string
}

func NewResendMailer(apiKey, fromEmail, webHost string) *ResendMailer {
	m := &ResendMailer{fromEmail: fromEmail, webHost: webHost}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

// SendInvitation emails the invitee a link carrying the invitation token.
func (m *ResendMailer) SendInvitation(ctx context.Context, toEmail, orgName, inviterName, roleName, token string, invitationID int64) error {
	if m.client == nil {
		log.Printf("email provider not configured, skipping invitation email invitation_id=%d", invitationID)
		return nil
	}

	inviteURL := fmt.Sprintf("%s/api/organizations/members/invite/accept?token=%s", m.webHost, token)

	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("You're invited to join %s", orgName),
		Html: fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hi,</p>
				<p><strong>%s</strong> has invited you to join <strong>%s</strong> as a <strong>%s</strong>.</p>
				<p><a href="%s">Accept Invitation</a></p>
				<p style="color: #666; font-size: 14px;">Or copy and paste this link into your browser:<br>%s</p>
				<p style="color: #666; font-size: 14px;">This invitation will expire in 7 days.</p>
				<p style="color: #666; font-size: 14px;">If you weren't expecting this invitation, you can safely ignore this email.</p>
			</div>`,
			inviterName, orgName, roleName, inviteURL, inviteURL),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	log.Printf("invitation email sent invitation_id=%d email=%s response_id=%s", invitationID, toEmail, sent.Id)
	return nil
}
