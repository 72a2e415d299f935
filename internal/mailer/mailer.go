// Package mailer delivers password reset links. Sending is fire-and-forget
// from the recovery flow's perspective; a transport failure is surfaced to the
// caller of issue and nothing is retried here.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/spf13/viper"
)

// Mailer sends a reset link to a contact address.
type Mailer interface {
	SendResetLink(username, address, resetURL string) error
}

// SMTPMailer sends reset mail over authenticated SMTP with STARTTLS.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
}

func NewSMTPMailer() *SMTPMailer {
	viper.SetDefault("smtp.port", "587")
	return &SMTPMailer{
		host: viper.GetString("smtp.host"),
		port: viper.GetString("smtp.port"),
		user: viper.GetString("smtp.user"),
		pass: viper.GetString("smtp.password"),
	}
}

func (m *SMTPMailer) SendResetLink(username, address, resetURL string) error {
	body := fmt.Sprintf("Hello %s,\r\n\r\nClick the link to reset your password:\r\n%s\r\n\r\nIf this wasn't you, ignore this message.\r\n", username, resetURL)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: RCMP123 Password Reset\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.user, address, body))

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.user, []string{address}, msg); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}
