package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from, productName string) *EmailSender {
	return &EmailSender{
		From:        from,
		ProductName: productName,
		dialer:      gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendWelcome(to, name, referralLink string) error {
	data := WelcomeEmailData{Name: name, ProductName: s.ProductName, ReferralLink: referralLink}
	subject := fmt.Sprintf("You're on the %s waitlist, %s", s.ProductName, name)
	return s.send(to, subject, "welcome.html", data)
}

func (s *EmailSender) SendDesignPartnerInvite(to, name, organization string) error {
	data := DesignPartnerEmailData{Name: name, ProductName: s.ProductName, Organization: organization}
	subject := fmt.Sprintf("Become a %s design partner", s.ProductName)
	return s.send(to, subject, "design_partner.html", data)
}

func (s *EmailSender) SendReferralReminder(to, name, referralLink string, referrals int) error {
	data := ReminderEmailData{Name: name, ProductName: s.ProductName, ReferralLink: referralLink, Referrals: referrals}
	subject := fmt.Sprintf("Move up the %s waitlist", s.ProductName)
	return s.send(to, subject, "reminder.html", data)
}

func render(tmpl string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl, err)
	}
	return body.String(), nil
}

func (s *EmailSender) send(to, subject, tmpl string, data any) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}
	return nil
}
