package email

import (
	"errors"
	"fmt"

	mail "gopkg.in/mail.v2"
)

// Provider sends broadcast messages over SMTP
type Provider struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject,omitempty"`
}

// Validate the provider's configuration
func (p *Provider) Validate() error {
	if p.Host == "" || p.Port == 0 {
		return errors.New("email provider requires host and port")
	}
	if p.From == "" {
		return errors.New("email provider requires a from address")
	}
	return nil
}

// Send delivers one message to the hospital's inbox. SMTP has no delivery or
// read receipts, so the returned provider id is the local reference.
func (p *Provider) Send(recipient, content, reference string) (string, error) {
	m := mail.NewMessage()
	m.SetHeader("From", p.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", p.subject())
	m.SetHeader("X-Dispatch-Reference", reference)
	m.SetBody("text/plain", content)

	d := mail.NewDialer(p.Host, p.Port, p.Username, p.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return reference, nil
}

func (p *Provider) subject() string {
	if p.Subject != "" {
		return p.Subject
	}
	return "Emergency veterinary case - immediate attention requested"
}
