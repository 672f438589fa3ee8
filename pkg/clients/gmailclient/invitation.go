package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/jakechorley/catering-ops/pkg/db"
)

// SendInvitation emails the invitee a link to accept the invitation
func (c *Client) SendInvitation(ctx context.Context, inv db.Invitation) error {
	link, err := acceptLink(c.settings.AcceptURL, inv.ID)
	if err != nil {
		return err
	}
	subject, body := composeInvitation(inv, link)
	return c.SendEmail(ctx, inv.Email, subject, body)
}

// acceptLink appends the invitation id to the configured accept URL as ?invitation=<id>
func acceptLink(base, invitationID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid accept url: %w", err)
	}
	q := u.Query()
	q.Set("invitation", invitationID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func composeInvitation(inv db.Invitation, link string) (subject, body string) {
	subject = "You're invited to join the team"

	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\r\n\r\n")
	fmt.Fprintf(&b, "You have been invited to join as %s.\r\n\r\n", inv.Role)
	fmt.Fprintf(&b, "Accept the invitation here:\r\n%s\r\n\r\n", link)
	if !inv.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "This invitation expires on %s.\r\n", inv.ExpiresAt.UTC().Format("Monday 2 January 2006"))
	}
	return subject, b.String()
}

// encodeMessage builds an RFC 2822 message and base64url-encodes it for the Gmail API
func encodeMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
