package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/examify/auth-service/internal/log"
)

// Sender dispatches the password-reset email. The SMTP implementation is used
// in deployments; LogSender serves dev runs without an SMTP relay.
type Sender interface {
	SendPasswordReset(to, link string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTP(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (s *SMTPSender) SendPasswordReset(to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Request")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>You requested a password reset</p>
<p>Click this link to reset your password:</p>
<a href="%s">%s</a>
<p>This link will expire in 5 minutes.</p>`, link, link))
	return s.dialer.DialAndSend(msg)
}

type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) SendPasswordReset(to, link string) error {
	log.Infof("[MAIL] password reset to=%s link=%s", log.EmailHash(to), link)
	return nil
}
