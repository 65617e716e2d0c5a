package attempts

import (
	"errors"
	"time"

	"festbook/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeExpired   Outcome = "EXPIRED"
)

// Attempt is the audit row written when a booking attempt ends
type Attempt struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	StudentID    int64     `gorm:"index:idx_attempts_student_created,priority:1;not null" json:"student_id"`
	ProgramID    int64     `gorm:"index;not null" json:"program_id"`
	BookingType  string    `gorm:"type:varchar(10);not null" json:"booking_type"`
	GroupSize    int       `gorm:"not null" json:"group_size"`
	Outcome      Outcome   `gorm:"type:varchar(20);check:outcome IN ('SUCCEEDED', 'FAILED', 'EXPIRED');not null" json:"outcome"`
	ErrorKind    string    `gorm:"type:varchar(32)" json:"error_kind,omitempty"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	OrderID      string    `gorm:"type:varchar(64)" json:"order_id,omitempty"`
	PaymentID    string    `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	BookingID    *int64    `json:"booking_id,omitempty"`
	CreatedAt    time.Time `gorm:"index:idx_attempts_student_created,priority:2,sort:desc" json:"created_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

var ErrNotTerminal = errors.New("event does not end an attempt")

// FromEvent builds the audit row for a terminal workflow event
func FromEvent(ev workflow.Event) (*Attempt, error) {
	if !ev.Terminal() {
		return nil, ErrNotTerminal
	}

	a := &Attempt{
		SessionID:   ev.ControllerID,
		StudentID:   ev.StudentID,
		ProgramID:   ev.ProgramID,
		BookingType: string(ev.BookingType),
		GroupSize:   ev.GroupSize,
		OrderID:     ev.OrderID,
		PaymentID:   ev.ConfirmedPaymentID(),
		CreatedAt:   ev.At,
	}
	if ev.To == workflow.StateSuccess {
		a.Outcome = OutcomeSucceeded
		if ev.Booking != nil {
			id := ev.Booking.ID
			a.BookingID = &id
		}
		return a, nil
	}

	a.Outcome = OutcomeFailed
	if errors.Is(ev.Err, workflow.ErrDisposed) {
		a.Outcome = OutcomeExpired
	}
	a.ErrorKind = string(workflow.KindOf(ev.Err))
	a.ErrorMessage = ev.Err.Error()
	return a, nil
}

// ListQuery pages through a student's attempts, newest first
type ListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
}

type PaginatedAttempts struct {
	Attempts   []Attempt `json:"attempts"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
