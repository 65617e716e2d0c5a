package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidSignature = errors.New("payment signature mismatch")

// Verifier checks the gateway signature: hex(HMAC-SHA256(order_id|payment_id, secret))
type Verifier struct {
	secret []byte
}

// NewVerifier returns nil when secret is empty, which disables checking
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(conf Confirmation) error {
	if v == nil {
		return nil
	}
	got, err := hex.DecodeString(conf.Signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, v.sign(conf.OrderID, conf.PaymentID)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign produces the signature the gateway would attach
func (v *Verifier) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(v.sign(orderID, paymentID))
}

func (v *Verifier) sign(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}
