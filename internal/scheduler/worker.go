package scheduler

import (
	"context"
	"fmt"

	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// AppointmentNotifier sends the messages behind scheduled tasks.
type AppointmentNotifier interface {
	SendAppointmentReminder(ctx context.Context, tenantID, appointmentID uuid.UUID) error
	SendFollowUpReminder(ctx context.Context, tenantID, appointmentID uuid.UUID) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	notifier AppointmentNotifier
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, notifier AppointmentNotifier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:   server,
		mux:      newMux(notifier),
		notifier: notifier,
		log:      log,
	}
	return w, nil
}

func newMux(notifier AppointmentNotifier) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAppointmentReminder, appointmentHandler(notifier.SendAppointmentReminder))
	mux.HandleFunc(TaskFollowUp, appointmentHandler(notifier.SendFollowUpReminder))
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// appointmentHandler decodes the payload and hands both ids to send.
// Malformed payloads are not retried.
func appointmentHandler(send func(ctx context.Context, tenantID, appointmentID uuid.UUID) error) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := ParseAppointmentTaskPayload(task)
		if err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}

		appointmentID, err := uuid.Parse(payload.AppointmentID)
		if err != nil {
			return fmt.Errorf("%w: appointment id: %v", asynq.SkipRetry, err)
		}
		tenantID, err := uuid.Parse(payload.TenantID)
		if err != nil {
			return fmt.Errorf("%w: tenant id: %v", asynq.SkipRetry, err)
		}

		return send(ctx, tenantID, appointmentID)
	}
}
