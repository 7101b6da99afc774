package email

import (
	"strings"
	"testing"
)

func TestRenderAppointmentConfirmation(t *testing.T) {
	html, err := renderEmailTemplate("appointment_confirmation.html", appointmentEmailData{
		baseEmailData: baseEmailData{Title: "Cita confirmada", Heading: "Tu cita está agendada"},
		AppointmentDetails: AppointmentDetails{
			RecipientName: "Ana <script>",
			Date:          "2026-03-02",
			Time:          "10:30",
			Location:      "Av. Reforma 222",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"2026-03-02", "10:30", "Av. Reforma 222", "Tu cita está agendada"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered email to contain %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected recipient name to be escaped")
	}
}

func TestRenderFollowUpSkipsEmptyNotes(t *testing.T) {
	html, err := renderEmailTemplate("follow_up_reminder.html", appointmentEmailData{
		AppointmentDetails: AppointmentDetails{RecipientName: "Carlos", LeadName: "Luis", Date: "2026-03-05"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "Notas:") {
		t.Fatalf("expected notes block to be omitted")
	}
}

func TestSMTPMessageHeaders(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "citas@example.com", "Inmobiliaria")
	msg, err := s.buildMessage("lead@example.com", "Hola", "<p>x</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	to := msg.GetToString()
	if len(to) != 1 || !strings.Contains(to[0], "lead@example.com") {
		t.Fatalf("unexpected recipients: %v", to)
	}
	if _, err := s.buildMessage("not-an-email", "Hola", "x"); err == nil {
		t.Fatalf("expected invalid recipient to fail")
	}
}

func TestRenderLeadAssigned(t *testing.T) {
	html, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData:         baseEmailData{Heading: "Tienes un nuevo lead"},
		LeadAssignmentDetails: LeadAssignmentDetails{RecipientName: "Carlos", LeadName: "Ana López", LeadPhone: "+525512345678"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// html/template escapes the leading plus of E.164 numbers.
	if !strings.Contains(html, "Ana López") || !strings.Contains(html, "&#43;525512345678") {
		t.Fatalf("expected lead details in rendered email")
	}
	if strings.Contains(html, "Correo:") {
		t.Fatalf("expected empty email block to be omitted")
	}
}
