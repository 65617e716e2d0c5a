package bookings

import (
	"errors"

	"festbook/internal/checkout"
	"festbook/internal/festapi"
	"festbook/internal/roster"
	"festbook/internal/workflow"
)

type SessionResponse struct {
	SessionID  string            `json:"session_id"`
	State      workflow.State    `json:"state"`
	Busy       bool              `json:"busy"`
	Program    ProgramSummary    `json:"program"`
	Members    []roster.Member   `json:"members,omitempty"`
	MaxMembers int               `json:"max_members,omitempty"`
	Error      *ErrorDetail      `json:"error,omitempty"`
	Checkout   *checkout.Options `json:"checkout,omitempty"`
	Booking    *festapi.Booking  `json:"booking,omitempty"`
}

type ProgramSummary struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Festival    string              `json:"festival,omitempty"`
	College     string              `json:"college,omitempty"`
	Date        string              `json:"date,omitempty"`
	Time        string              `json:"time,omitempty"`
	Venue       string              `json:"venue,omitempty"`
	BookingType festapi.BookingType `json:"booking_type"`
	TicketPrice float64             `json:"ticket_price"`
	Free        bool                `json:"free"`
}

// ErrorDetail is the last attempt failure shown next to the form
type ErrorDetail struct {
	Kind        workflow.Kind `json:"kind,omitempty"`
	Message     string        `json:"message"`
	MemberIndex int           `json:"member_index,omitempty"`
	Field       roster.Field  `json:"field,omitempty"`
}

func toSessionResponse(s workflow.Snapshot) SessionResponse {
	p := s.Program
	return SessionResponse{
		SessionID: s.ID,
		State:     s.State,
		Busy:      s.State.Busy(),
		Program: ProgramSummary{
			ID:          p.ID,
			Title:       p.Title,
			Festival:    p.FestTitle(),
			College:     p.CollegeName(),
			Date:        p.Date,
			Time:        p.Time,
			Venue:       p.Venue,
			BookingType: p.BookingType,
			TicketPrice: p.TicketPrice,
			Free:        p.IsFree(),
		},
		Members:    s.Members,
		MaxMembers: s.MaxMembers,
		Error:      toErrorDetail(s.Err),
		Checkout:   s.Checkout,
		Booking:    s.Booking,
	}
}

func toErrorDetail(err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	d := &ErrorDetail{Kind: workflow.KindOf(err), Message: err.Error()}
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		d.MemberIndex = verr.MemberIndex
		d.Field = verr.Field
	}
	return d
}
