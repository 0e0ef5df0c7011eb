// Package notify delivers password reset codes to account holders.
package notify

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDeliveryFailed = errors.New("notify: delivery failed")
	ErrInvalidConfig  = errors.New("notify: invalid config")
)

const resetSubject = "Your password reset code"

// message is a plain-text reset notification.
type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tag     string `json:"tag"`
}

func resetMessage(to, code string, ttl time.Duration) message {
	return message{
		To:      to,
		Subject: resetSubject,
		Body: fmt.Sprintf(
			"Use this code to reset your password: %s\n\nThe code expires in %s. If you did not ask for a reset you can ignore this message.\n",
			code, humanDuration(ttl),
		),
		Tag: "password-reset",
	}
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "a few minutes"
	}
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
