package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrSendFailed = errors.New("notification: send failed")

type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("notification: recipient is required")
	}
	if m.Subject == "" {
		return errors.New("notification: subject is required")
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return errors.New("notification: body is required")
	}
	return nil
}

//go:generate mockgen -source=notification.go -destination=mock/notification_mock.go -package=mock
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// CredentialsMessage tells a freshly provisioned employee how to sign in.
func CredentialsMessage(to, name, password, loginURL string) Message {
	text := fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you.\n\nEmail: %s\nTemporary password: %s\n\nSign in at %s and change your password.\n",
		name, to, password, loginURL,
	)
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>An account has been created for you.</p><p>Email: <b>%s</b><br>Temporary password: <b>%s</b></p><p><a href=\"%s\">Sign in</a> and change your password.</p>",
		name, to, password, loginURL,
	)
	return Message{To: to, Subject: "Your HRIS account", TextBody: text, HTMLBody: html}
}

// ResetMessage carries a password reset link valid for ten minutes.
func ResetMessage(to, link string) Message {
	text := fmt.Sprintf(
		"Forgot your password? Set a new one at %s\n\nThe link is valid for 10 minutes. If you did not ask for this, ignore this email.\n",
		link,
	)
	html := fmt.Sprintf(
		"<p>Forgot your password? <a href=\"%s\">Set a new one</a>.</p><p>The link is valid for 10 minutes. If you did not ask for this, ignore this email.</p>",
		link,
	)
	return Message{To: to, Subject: "Your password reset token (valid for 10 min)", TextBody: text, HTMLBody: html}
}

// InviteMessage asks an employee to activate their account within a day.
func InviteMessage(to, name, link string) Message {
	text := fmt.Sprintf(
		"Hello %s,\n\nYou have been invited to the HRIS portal. Choose your password at %s\n\nThe invitation expires in 24 hours.\n",
		name, link,
	)
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>You have been invited to the HRIS portal. <a href=\"%s\">Choose your password</a>.</p><p>The invitation expires in 24 hours.</p>",
		name, link,
	)
	return Message{To: to, Subject: "You're invited to the HRIS portal", TextBody: text, HTMLBody: html}
}
