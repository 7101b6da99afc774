package email

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers rendered templates through an SMTP relay.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	return opts
}

func (s *SMTPSender) buildMessage(toEmail, subject, htmlContent string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)
	return msg, nil
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg, err := s.buildMessage(toEmail, subject, htmlContent)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendAppointmentConfirmation(ctx context.Context, toEmail string, details AppointmentDetails) error {
	content, err := renderEmailTemplate("appointment_confirmation.html", appointmentEmailData{
		baseEmailData:      baseEmailData{Title: "Cita confirmada", Heading: "Tu cita está agendada"},
		AppointmentDetails: details,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAppointmentConfirmationFmt, details.Date), content)
}

func (s *SMTPSender) SendAppointmentReminder(ctx context.Context, toEmail string, details AppointmentDetails) error {
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentEmailData{
		baseEmailData:      baseEmailData{Title: "Recordatorio de cita", Heading: "Tu cita es mañana"},
		AppointmentDetails: details,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAppointmentReminderFmt, details.Date, details.Time), content)
}

func (s *SMTPSender) SendFollowUpReminder(ctx context.Context, toEmail string, details AppointmentDetails) error {
	content, err := renderEmailTemplate("follow_up_reminder.html", appointmentEmailData{
		baseEmailData:      baseEmailData{Title: "Seguimiento pendiente", Heading: "Hoy toca dar seguimiento"},
		AppointmentDetails: details,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowUpReminderFmt, details.LeadName), content)
}

func (s *SMTPSender) SendLeadAssigned(ctx context.Context, toEmail string, details LeadAssignmentDetails) error {
	content, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData:         baseEmailData{Title: "Nuevo lead", Heading: "Tienes un nuevo lead"},
		LeadAssignmentDetails: details,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadAssignedFmt, details.LeadName), content)
}
