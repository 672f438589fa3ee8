package gmailclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/catering-ops/internal/config"
	"github.com/jakechorley/catering-ops/pkg/utils"
)

const EMAIL_INTERVAL = 3 * time.Second

// sendFunc delivers one encoded message on behalf of userID
type sendFunc func(ctx context.Context, userID string, msg *gmail.Message) error

// Client sends invitation emails through the Gmail API
type Client struct {
	send     sendFunc
	settings config.InvitationsConfig
	logger   *zap.Logger
	limiter  *rate.Limiter
}

// NewClient creates a Gmail client using an existing OAuth token
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token, settings config.InvitationsConfig, logger *zap.Logger) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	send := func(ctx context.Context, userID string, msg *gmail.Message) error {
		_, err := service.Users.Messages.Send(userID, msg).Context(ctx).Do()
		return err
	}
	return newClient(send, settings, logger, EMAIL_INTERVAL), nil
}

// newClient allows one send per interval; an interval of zero disables throttling
func newClient(send sendFunc, settings config.InvitationsConfig, logger *zap.Logger, interval time.Duration) *Client {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Client{
		send:     send,
		settings: settings,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// SendEmail sends a plain text email, waiting for the send limiter first
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email to %s not sent: %w", to, err)
	}

	msg := &gmail.Message{Raw: encodeMessage(c.settings.Sender, to, subject, body)}
	if err := c.send(ctx, c.settings.GmailUserID, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
