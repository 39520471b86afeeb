package notify

import (
	"fmt"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers mail messages; *gomail.Dialer satisfies it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer tells applicants the outcome of their agent registration
type Mailer struct {
	sender  Sender
	from    string
	storeNm string
}

func NewMailer(sender Sender, from, storeName string) *Mailer {
	return &Mailer{sender: sender, from: from, storeNm: storeName}
}

// NewSMTPMailer builds a Mailer on a gomail SMTP dialer
func NewSMTPMailer(host string, port int, username, password, from, storeName string) *Mailer {
	return NewMailer(gomail.NewDialer(host, port, username, password), from, storeName)
}

// RegistrationMessage builds the bilingual decision email for r
func (m *Mailer) RegistrationMessage(r domain.Registration) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", r.Email)

	var subject, body string
	switch r.Status {
	case domain.RegistrationApproved:
		subject = fmt.Sprintf("%s agent registration approved / Usajili wako umekubaliwa", m.storeNm)
		body = fmt.Sprintf("Hello %s,\n\nYour agent registration has been approved.\n\nHabari %s,\n\nUsajili wako wa uwakala umekubaliwa.\n", r.Name, r.Name)
	default:
		subject = fmt.Sprintf("%s agent registration update / Taarifa ya usajili", m.storeNm)
		body = fmt.Sprintf("Hello %s,\n\nYour agent registration was not approved.\n\nHabari %s,\n\nUsajili wako wa uwakala haukukubaliwa.\n", r.Name, r.Name)
	}
	if r.Notes != "" {
		body += "\nNotes / Maelezo: " + r.Notes + "\n"
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// SendRegistrationDecision mails the applicant; pending registrations are skipped
func (m *Mailer) SendRegistrationDecision(r domain.Registration) error {
	if !r.Status.Terminal() || r.Email == "" {
		return nil
	}
	if err := m.sender.DialAndSend(m.RegistrationMessage(r)); err != nil {
		return errors.Wrapf(err, "send registration mail to %s", r.Email)
	}
	zap.L().Info("registration decision mailed",
		zap.String("namespace", "notify"),
		zap.Int64("registration", r.ID),
		zap.String("status", string(r.Status)))
	return nil
}
