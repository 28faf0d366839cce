package authkit

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Notifier delivers one-time codes out of band. A failed delivery aborts the
// operation that requested it; there is no partial success.
type Notifier interface {
	SendCode(ctx context.Context, name, email, code string) error
}

// ConsoleNotifier is a development implementation that logs codes instead of
// sending them.
type ConsoleNotifier struct{}

func (c *ConsoleNotifier) SendCode(ctx context.Context, name, email, code string) error {
	log.Printf("\n=== EMAIL: One-time code ===")
	log.Printf("To: %s <%s>", name, email)
	log.Printf("Code: %s", code)
	log.Printf("============================\n")
	return nil
}

// SMTPNotifier delivers codes over plain SMTP with AUTH PLAIN.
type SMTPNotifier struct {
	Host     string
	Port     int
	User     string
	Password string

	// AppName is used in the subject and body. Defaults to "CampusVendor".
	AppName string
}

func (n *SMTPNotifier) appName() string {
	if n.AppName != "" {
		return n.AppName
	}
	return "CampusVendor"
}

// SendCode emails the one-time code to the recipient.
func (n *SMTPNotifier) SendCode(ctx context.Context, name, email, code string) error {
	subject := fmt.Sprintf("YOUR %s OTP", strings.ToUpper(n.appName()))
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your %s verification code is:\n\n"+
			"    %s\n\n"+
			"Do not share this code with anyone. It expires in a few minutes.\n\n"+
			"The %s Team",
		name, n.appName(), code, n.appName())

	return n.send(email, subject, body)
}

// send performs the SMTP handshake and delivery. Headers are joined with
// CRLF per RFC 822, with a blank line separating headers from body.
func (n *SMTPNotifier) send(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)

	headers := []string{
		fmt.Sprintf("From: %s", n.User),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}
	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", n.User, n.Password, n.Host)
	return smtp.SendMail(addr, auth, n.User, []string{toEmail}, []byte(message))
}
