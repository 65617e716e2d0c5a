package workflow

import (
	"time"

	"festbook/internal/checkout"
	"festbook/internal/festapi"
	"festbook/internal/roster"
)

type State string

const (
	StateIdle            State = "IDLE"
	StateValidating      State = "VALIDATING"
	StateOrderPending    State = "ORDER_PENDING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateSubmitting      State = "SUBMITTING"
	StateSuccess         State = "SUCCESS"
)

// Busy reports whether an attempt is between Initiate and its outcome
func (s State) Busy() bool {
	switch s {
	case StateValidating, StateOrderPending, StateAwaitingPayment, StateSubmitting:
		return true
	}
	return false
}

// Event is one state change of a controller
type Event struct {
	ControllerID string
	StudentID    int64
	ProgramID    int64
	BookingType  festapi.BookingType
	GroupSize    int
	From         State
	To           State
	Err          error
	OrderID      string
	PaymentID    string
	Booking      *festapi.Booking
	At           time.Time
}

// Terminal reports whether the event ends an attempt
func (e Event) Terminal() bool {
	return e.To == StateSuccess || (e.To == StateIdle && e.Err != nil)
}

// ConfirmedPaymentID prefers the id the backend recorded over the one the
// checkout confirmed
func (e Event) ConfirmedPaymentID() string {
	if e.Booking != nil && e.Booking.RazorpayPaymentID != "" {
		return e.Booking.RazorpayPaymentID
	}
	return e.PaymentID
}

// Snapshot is a consistent copy of a controller's visible state
type Snapshot struct {
	ID         string
	State      State
	Program    festapi.Program
	Members    []roster.Member
	MaxMembers int
	Err        error
	Checkout   *checkout.Options
	Booking    *festapi.Booking
}
