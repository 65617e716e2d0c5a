package receipts

import (
	"bytes"
	"testing"

	"festbook/internal/festapi"
	"festbook/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Solo(t *testing.T) {
	pdf, name, err := Render(Data{
		Program: festapi.Program{ID: 42, Title: "Keynote: AI & You", Fest: &festapi.Festival{Title: "TechFest"}},
		Booking: festapi.Booking{ID: 900, PaymentStatus: "PAID"},
		Student: users.User{ID: 5, Username: "Asha", Email: "asha@college.edu"},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "RECEIPT_900_Keynote_AI__You.pdf", name)
}

func TestRender_GroupPaid(t *testing.T) {
	pdf, name, err := Render(Data{
		Program: festapi.Program{ID: 9, Title: "", BookingType: festapi.BookingTypeGroup},
		Booking: festapi.Booking{
			ID:                12,
			IsGroupBooking:    true,
			RazorpayPaymentID: "pay_1",
			GroupMembers: []festapi.GroupMember{
				{MemberName: "Asha", MemberEmail: "a@x.in", MemberPhone: "1"},
				{MemberName: "Ravi", MemberEmail: "r@x.in", MemberPhone: "2"},
			},
		},
		Amount: 750,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "RECEIPT_12_program.pdf", name)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "FREE", formatAmount(0))
	assert.Equal(t, "INR 500.00", formatAmount(500))
}
