package workflow

import (
	"errors"
	"fmt"

	"festbook/internal/roster"
)

var (
	ErrAttemptInProgress  = errors.New("a booking attempt is already in progress")
	ErrNotAwaitingPayment = errors.New("no payment is awaited")
	ErrOrderMismatch      = errors.New("payment does not match the order of this attempt")
	ErrBookingComplete    = errors.New("booking is already complete")
	ErrNotGroupBooking    = errors.New("program does not take group bookings")
	ErrDisposed           = errors.New("booking session is closed")
)

// Kind names an attempt failure for logs, audit rows and events
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindAuthorization    Kind = "AUTHORIZATION"
	KindOrderCreation    Kind = "ORDER_CREATION"
	KindPaymentAbandoned Kind = "PAYMENT_ABANDONED"
	KindSubmission       Kind = "SUBMISSION"
	KindDisposed         Kind = "DISPOSED"
)

// ValidationError names the first roster member that failed the gate.
// MemberIndex is 1-based.
type ValidationError struct {
	MemberIndex int
	Field       roster.Field
	Message     string
}

func (e *ValidationError) Error() string { return e.Message }

type AuthorizationError struct {
	Role string
}

func (e *AuthorizationError) Error() string {
	if e.Role == "" {
		return "please login as a student to book programs"
	}
	return fmt.Sprintf("role %s cannot book programs", e.Role)
}

// OrderCreationError carries the backend's message verbatim
type OrderCreationError struct {
	Message string
	Err     error
}

func (e *OrderCreationError) Error() string { return e.Message }
func (e *OrderCreationError) Unwrap() error { return e.Err }

type PaymentAbandonedError struct {
	OrderID string
}

func (e *PaymentAbandonedError) Error() string { return "payment was cancelled" }

// SubmissionError carries the backend's message verbatim
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }
func (e *SubmissionError) Unwrap() error { return e.Err }

// KindOf classifies an attempt error. It returns "" for errors that are not
// attempt outcomes.
func KindOf(err error) Kind {
	var (
		valErr   *ValidationError
		authErr  *AuthorizationError
		orderErr *OrderCreationError
		payErr   *PaymentAbandonedError
		subErr   *SubmissionError
	)
	switch {
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &authErr):
		return KindAuthorization
	case errors.As(err, &orderErr):
		return KindOrderCreation
	case errors.As(err, &payErr):
		return KindPaymentAbandoned
	case errors.As(err, &subErr):
		return KindSubmission
	case errors.Is(err, ErrDisposed):
		return KindDisposed
	}
	return ""
}
