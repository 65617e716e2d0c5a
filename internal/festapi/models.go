package festapi

import (
	"encoding/json"
	"strings"
)

type BookingType string

const (
	BookingTypeSolo  BookingType = "SOLO"
	BookingTypeGroup BookingType = "GROUP"
)

// UnmarshalJSON accepts "solo"/"group" in any case. Missing or unknown means SOLO.
func (b *BookingType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null
		*b = BookingTypeSolo
		return nil
	}
	*b = ParseBookingType(s)
	return nil
}

// ParseBookingType normalizes a booking type string
func ParseBookingType(s string) BookingType {
	if strings.EqualFold(strings.TrimSpace(s), string(BookingTypeGroup)) {
		return BookingTypeGroup
	}
	return BookingTypeSolo
}

// College is the host of a festival
type College struct {
	Name string `json:"name"`
}

// Festival is the parent of a program
type Festival struct {
	ID      int64   `json:"id,omitempty"`
	Title   string  `json:"title"`
	College College `json:"college"`
}

// Program is a bookable unit as returned by GET /api/programs/{id}
type Program struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Type            string      `json:"type"`
	Date            string      `json:"date"`
	Time            string      `json:"time"`
	Venue           string      `json:"venue"`
	BookingType     BookingType `json:"bookingType"`
	SeatLimit       int         `json:"seatLimit"`
	NumberOfTeams   int         `json:"numberOfTeams"`
	MaxGroupMembers int         `json:"maxGroupMembers"`
	TicketPrice     float64     `json:"ticketPrice"`
	Fest            *Festival   `json:"fest,omitempty"`
}

func (p *Program) IsGroup() bool { return p.BookingType == BookingTypeGroup }

func (p *Program) IsFree() bool { return p.TicketPrice <= 0 }

// FestTitle returns the parent festival title, or "" when the backend omitted it
func (p *Program) FestTitle() string {
	if p.Fest == nil {
		return ""
	}
	return p.Fest.Title
}

// CollegeName returns the hosting college name, or "" when unknown
func (p *Program) CollegeName() string {
	if p.Fest == nil {
		return ""
	}
	return p.Fest.College.Name
}

// CreateOrderRequest is the create-order body. The backend reads it as a
// string map, so both numbers travel as JSON strings.
type CreateOrderRequest struct {
	ProgramID int64 `json:"programId,string"`
	GroupSize int   `json:"groupSize,omitempty,string"`
}

// PaymentOrder is the backend-issued handle for a paid booking
type PaymentOrder struct {
	OrderID     string  `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
}

// GroupMember is a roster entry in the backend's field names
type GroupMember struct {
	ID          int64  `json:"id,omitempty"`
	MemberName  string `json:"memberName"`
	MemberEmail string `json:"memberEmail"`
	MemberPhone string `json:"memberPhone"`
}

// BookingRequest is the create-booking body
type BookingRequest struct {
	StudentID         int64         `json:"studentId"`
	ProgramID         int64         `json:"programId"`
	RazorpayPaymentID string        `json:"razorpayPaymentId,omitempty"`
	RazorpayOrderID   string        `json:"razorpayOrderId,omitempty"`
	RazorpaySignature string        `json:"razorpaySignature,omitempty"`
	IsGroupBooking    *bool         `json:"isGroupBooking,omitempty"`
	GroupSize         *int          `json:"groupSize,omitempty"`
	TotalAmount       *float64      `json:"totalAmount,omitempty"`
	GroupMembers      []GroupMember `json:"groupMembers,omitempty"`
}

// HasPayment reports whether any payment field is set
func (r *BookingRequest) HasPayment() bool {
	return r.RazorpayPaymentID != "" || r.RazorpayOrderID != "" || r.RazorpaySignature != ""
}

// Booking is the backend booking record
type Booking struct {
	ID                int64         `json:"id"`
	ProgramID         int64         `json:"programId"`
	StudentID         int64         `json:"studentId"`
	StudentEmail      string        `json:"studentEmail"`
	StudentName       string        `json:"studentName"`
	ProgramName       string        `json:"programName"`
	FestivalName      string        `json:"festivalName"`
	CollegeName       string        `json:"collegeName"`
	ProgramType       string        `json:"programType"`
	ProgramDate       string        `json:"programDate"`
	ProgramTime       string        `json:"programTime"`
	ProgramVenue      string        `json:"programVenue"`
	TicketPrice       float64       `json:"ticketPrice"`
	IsGroupBooking    bool          `json:"isGroupBooking"`
	GroupSize         int           `json:"groupSize"`
	TotalAmount       float64       `json:"totalAmount"`
	PaymentStatus     string        `json:"paymentStatus"`
	RazorpayPaymentID string        `json:"razorpayPaymentId,omitempty"`
	BookingDate       string        `json:"bookingDate"`
	GroupMembers      []GroupMember `json:"groupMembers,omitempty"`
}
