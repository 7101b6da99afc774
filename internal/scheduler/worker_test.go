package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type recordingNotifier struct {
	reminders []uuid.UUID
	followUps []uuid.UUID
}

func (n *recordingNotifier) SendAppointmentReminder(_ context.Context, _, appointmentID uuid.UUID) error {
	n.reminders = append(n.reminders, appointmentID)
	return nil
}

func (n *recordingNotifier) SendFollowUpReminder(_ context.Context, _, appointmentID uuid.UUID) error {
	n.followUps = append(n.followUps, appointmentID)
	return nil
}

func TestMuxRoutesTasksByType(t *testing.T) {
	notifier := &recordingNotifier{}
	mux := newMux(notifier)
	payload := AppointmentTaskPayload{AppointmentID: uuid.NewString(), TenantID: uuid.NewString()}

	reminder, err := NewAppointmentReminderTask(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	followUp, err := NewFollowUpTask(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mux.ProcessTask(context.Background(), reminder); err != nil {
		t.Fatalf("reminder: %v", err)
	}
	if err := mux.ProcessTask(context.Background(), followUp); err != nil {
		t.Fatalf("follow up: %v", err)
	}

	if len(notifier.reminders) != 1 || len(notifier.followUps) != 1 {
		t.Fatalf("expected one call each, got %d reminders and %d follow-ups", len(notifier.reminders), len(notifier.followUps))
	}
	if notifier.reminders[0].String() != payload.AppointmentID {
		t.Fatalf("expected appointment %s, got %s", payload.AppointmentID, notifier.reminders[0])
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	mux := newMux(&recordingNotifier{})
	task := asynq.NewTask(TaskFollowUp, []byte(`{"appointmentId":"nope","tenantId":"x"}`))

	err := mux.ProcessTask(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.example.com:6380/2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "cache.example.com:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options: %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS config")
	}
}
