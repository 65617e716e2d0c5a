package bookings

type OpenSessionRequest struct {
	ProgramID int64 `json:"programId" binding:"required,min=1"`
}

type GroupSizeRequest struct {
	Size *int `json:"size" binding:"required"`
}

type UpdateMemberRequest struct {
	Field string `json:"field" binding:"required,oneof=name email phone"`
	Value string `json:"value"`
}

// PaymentConfirmationRequest is the checkout widget's success payload
type PaymentConfirmationRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature"`
}
