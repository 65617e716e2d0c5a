package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"festbook/internal/workflow"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingSucceeded EventType = "booking.succeeded"
	EventBookingFailed    EventType = "booking.failed"
	EventBookingExpired   EventType = "booking.expired"
)

// Publisher sends booking outcome events to a broker
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Event is the outcome message consumed by mailers and dashboards
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         EventType `json:"type"`
	SessionID    string    `json:"session_id"`
	StudentID    int64     `json:"student_id"`
	ProgramID    int64     `json:"program_id"`
	BookingType  string    `json:"booking_type"`
	GroupSize    int       `json:"group_size"`
	BookingID    *int64    `json:"booking_id,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	PaymentID    string    `json:"payment_id,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// FromWorkflowEvent returns nil for transitions that do not end an attempt
func FromWorkflowEvent(ev workflow.Event) *Event {
	if !ev.Terminal() {
		return nil
	}
	out := &Event{
		ID:          uuid.New(),
		SessionID:   ev.ControllerID,
		StudentID:   ev.StudentID,
		ProgramID:   ev.ProgramID,
		BookingType: string(ev.BookingType),
		GroupSize:   ev.GroupSize,
		OrderID:     ev.OrderID,
		PaymentID:   ev.ConfirmedPaymentID(),
		OccurredAt:  ev.At,
	}
	if ev.To == workflow.StateSuccess {
		out.Type = EventBookingSucceeded
		if ev.Booking != nil {
			id := ev.Booking.ID
			out.BookingID = &id
		}
		return out
	}
	out.Type = EventBookingFailed
	if errors.Is(ev.Err, workflow.ErrDisposed) {
		out.Type = EventBookingExpired
	}
	out.ErrorKind = string(workflow.KindOf(ev.Err))
	out.ErrorMessage = ev.Err.Error()
	return out
}

// PartitionKey keeps one student's events in order
func (e *Event) PartitionKey() string {
	return strconv.FormatInt(e.StudentID, 10)
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
