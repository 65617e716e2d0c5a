// Package receipts renders the PDF confirmation shown after a booking succeeds.
package receipts

import (
	"bytes"
	"fmt"
	"strings"

	"festbook/internal/festapi"
	"festbook/internal/users"

	"github.com/phpdave11/gofpdf"
)

// Data is everything printed on a receipt
type Data struct {
	Program festapi.Program
	Booking festapi.Booking
	Student users.User
	Amount  float64
}

// Render builds a single A4 page and returns the bytes and a download filename
func Render(d Data) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMED")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Program      : %s", safe(d.Program.Title, d.Booking.ProgramName)),
		fmt.Sprintf("Festival     : %s", safe(d.Program.FestTitle(), d.Booking.FestivalName)),
		fmt.Sprintf("College      : %s", safe(d.Program.CollegeName(), d.Booking.CollegeName)),
		fmt.Sprintf("Date / Time  : %s %s", safe(d.Program.Date, "-"), safe(d.Program.Time, "")),
		fmt.Sprintf("Venue        : %s", safe(d.Program.Venue, "-")),
		fmt.Sprintf("Student      : %s <%s>", safe(d.Student.Username, "-"), safe(d.Student.Email, "-")),
		fmt.Sprintf("Booking ID   : #%d", d.Booking.ID),
		fmt.Sprintf("Status       : %s", safe(d.Booking.PaymentStatus, "CONFIRMED")),
	}
	if d.Booking.RazorpayPaymentID != "" {
		lines = append(lines, fmt.Sprintf("Payment ID   : %s", d.Booking.RazorpayPaymentID))
	}
	lines = append(lines, fmt.Sprintf("Amount       : %s", formatAmount(d.Amount)))

	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if d.Booking.IsGroupBooking && len(d.Booking.GroupMembers) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Team (%d members)", len(d.Booking.GroupMembers)))
		pdf.Ln(9)

		widths := []float64{10, 60, 70, 40}
		pdf.SetFont("Helvetica", "B", 10)
		for i, h := range []string{"#", "Name", "Email", "Phone"} {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for i, m := range d.Booking.GroupMembers {
			row := []string{fmt.Sprintf("%d", i+1), m.MemberName, m.MemberEmail, m.MemberPhone}
			for j, v := range row {
				pdf.CellFormat(widths[j], 7, v, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this receipt at the venue. Your bookings are listed in the student dashboard.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}

	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", d.Booking.ID, filenamePart(d.Program.Title))
	return buf.Bytes(), filename, nil
}

func formatAmount(v float64) string {
	if v <= 0 {
		return "FREE"
	}
	return fmt.Sprintf("INR %.2f", v)
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func filenamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "program"
	}
	return b.String()
}
