package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskAppointmentReminder = "appointments.reminder"
	TaskFollowUp            = "appointments.follow_up"
)

// AppointmentTaskPayload identifies the appointment a task acts on.
type AppointmentTaskPayload struct {
	AppointmentID string `json:"appointmentId"`
	TenantID      string `json:"tenantId"`
}

func NewAppointmentReminderTask(payload AppointmentTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

func NewFollowUpTask(payload AppointmentTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUp, data), nil
}

func ParseAppointmentTaskPayload(task *asynq.Task) (AppointmentTaskPayload, error) {
	var payload AppointmentTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AppointmentTaskPayload{}, err
	}
	return payload, nil
}
