package reminder

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Email is the rendered payload of a single reminder.
type Email struct {
	Recipient    string
	MeetingTitle string
	ScheduledAt  time.Time
}

// Sender delivers a reminder email. Delivery transports live outside the
// core; implementations wrap whatever infrastructure the deployment has.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// NoopSender discards reminders. Used when no transport is configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, Email) error { return nil }

// SMTPSender delivers reminders over plain SMTP. Authentication is used
// only when both Username and Password are set.
type SMTPSender struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func (s *SMTPSender) Send(_ context.Context, email Email) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))

	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email.Recipient)
	fmt.Fprintf(&msg, "Subject: Reminder: %s\r\n", email.MeetingTitle)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "Reminder for: %s\r\n", email.MeetingTitle)
	fmt.Fprintf(&msg, "Scheduled at: %s\r\n", email.ScheduledAt.Format(time.RFC3339))

	if err := smtp.SendMail(addr, auth, s.From, []string{email.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send reminder mail to %s: %w", email.Recipient, err)
	}
	return nil
}
