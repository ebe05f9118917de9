package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailChannel sends through a plain SMTP relay. Recipient, subject and body
// are the whole contract; formatting beyond headers stays out of scope.
type EmailChannel struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailChannel(host, port, username, password, from string) *EmailChannel {
	return &EmailChannel{host: host, port: port, username: username, password: password, from: from}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return &PermissionError{Channel: ChannelEmail, Reason: "no recipient address"}
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", c.from)
	fmt.Fprintf(&msg, "To: %s\r\n", n.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(n.Body)
	msg.WriteString("\r\n")

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	addr := fmt.Sprintf("%s:%s", c.host, c.port)
	if err := smtp.SendMail(addr, auth, c.from, []string{n.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.Recipient, err)
	}
	return nil
}
