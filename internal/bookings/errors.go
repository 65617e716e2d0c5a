package bookings

import "errors"

var (
	ErrSessionNotFound     = errors.New("booking session not found")
	ErrAlreadyBooked       = errors.New("you have already booked this program")
	ErrReceiptUnavailable  = errors.New("receipt is available after the booking succeeds")
	ErrPaymentVerification = errors.New("payment could not be verified")
)
