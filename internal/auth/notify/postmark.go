package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/mrz1836/postmark"
)

type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	Sender       string
	CodeTTL      time.Duration

	// BaseURL overrides the Postmark API endpoint.
	BaseURL string
}

// Postmark sends reset codes as transactional email.
type Postmark struct {
	client *postmark.Client
	sender string
	ttl    time.Duration
}

func NewPostmark(cfg PostmarkConfig) (*Postmark, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}
	if _, err := mail.ParseAddress(cfg.Sender); err != nil {
		return nil, fmt.Errorf("%w: sender address: %w", ErrInvalidConfig, err)
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}

	return &Postmark{client: client, sender: cfg.Sender, ttl: cfg.CodeTTL}, nil
}

func (p *Postmark) SendResetCode(ctx context.Context, email, code string) error {
	msg := resetMessage(email, code, p.ttl)

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.sender,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		TextBody: msg.Body,
	})
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrDeliveryFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
