package bookings

import (
	"context"

	"festbook/internal/attempts"
	"festbook/internal/notifications"
	"festbook/internal/workflow"
	"festbook/pkg/logger"
)

// observe runs after every controller transition. Side effects here never
// change the outcome of the attempt.
func (s *service) observe(ctx context.Context, ev workflow.Event) {
	if !ev.Terminal() {
		return
	}

	s.mu.Lock()
	sess := s.sessions[ev.ControllerID]
	s.mu.Unlock()
	if sess != nil {
		s.releaseLock(ctx, sess)
	}

	log := s.log.WithSessionID(ev.ControllerID).WithStudentID(ev.StudentID)
	if ev.To == workflow.StateSuccess {
		if ev.Booking != nil {
			log.LogBookingCreated(ctx, ev.Booking.ID, ev.ProgramID, ev.StudentID)
		}
		if err := s.programs.Invalidate(ctx, ev.ProgramID); err != nil {
			log.WithError(err).WarnContext(ctx, "program cache invalidation failed")
		}
	} else {
		log.LogBookingFailed(ctx, ev.ControllerID, string(workflow.KindOf(ev.Err)), ev.Err.Error())
	}

	// Audit and broker writes run off the request path
	bg := context.WithoutCancel(ctx)
	s.effects.Go(func() {
		s.record(bg, log, ev)
	})
}

// record writes the audit row and publishes the outcome event
func (s *service) record(ctx context.Context, log *logger.Logger, ev workflow.Event) {
	if s.attempts != nil {
		if row, err := attempts.FromEvent(ev); err == nil {
			if err := s.attempts.Record(ctx, row); err != nil {
				log.ErrorWithContext(ctx, "attempt audit write failed", err, nil)
			}
		}
	}

	if event := notifications.FromWorkflowEvent(ev); event != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.ErrorWithContext(ctx, "booking outcome publish failed", err, map[string]interface{}{
				"type": string(event.Type),
			})
		}
	}
}
