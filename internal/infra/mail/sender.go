package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	s := &EmailSender{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		From:        from,
		ProjectName: "Presale",
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

// SendLeadConfirmation thanks the lead and points them at self-scheduling when configured.
func (s *EmailSender) SendLeadConfirmation(lead *entity.Lead) error {
	body, err := render("lead_confirmation.html", LeadConfirmationData{
		FirstName:   lead.FirstName,
		Phone:       lead.Phone,
		ProjectName: s.ProjectName,
		ScheduleURL: s.ScheduleURL,
	})
	if err != nil {
		return err
	}
	return s.deliver(lead.Email, fmt.Sprintf("%s presale: you're on the list, %s", s.ProjectName, lead.FirstName), body)
}

// SendOperatorAlert notifies the sales inbox. No-op when no operator address is configured.
func (s *EmailSender) SendOperatorAlert(lead *entity.Lead) error {
	if s.OperatorAddr == "" {
		return nil
	}
	body, err := render("operator_alert.html", newOperatorAlertData(lead))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New %s lead: %s (%s)", lead.BuyerType, lead.FullName(), lead.LeadSource)
	return s.deliver(s.OperatorAddr, subject, body)
}

func (s *EmailSender) deliver(to, subject, body string) error {
	if s.send == nil {
		return errors.New("email sender is not configured")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return body.String(), nil
}
