// Package notify delivers best-effort email notifications. Delivery
// failures are surfaced to the caller per recipient; the caller decides
// whether to log or count them.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// EmailNotifier sends mail through a plain SMTP relay. It implements
// service.Notifier.
type EmailNotifier struct {
	addr string // host:port
	from string
}

func NewEmailNotifier(host, port, from string) *EmailNotifier {
	return &EmailNotifier{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if err := smtp.SendMail(n.addr, nil, n.from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", recipient, err)
	}
	return nil
}

// LogNotifier writes notifications to the process log instead of
// delivering them. Used when no SMTP relay is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	log.Printf("notify: [%s] %s", recipient, subject)
	return nil
}
