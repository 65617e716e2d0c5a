package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openOrder(t *testing.T, h *Hosted, orderID string) (*Confirmation, *bool) {
	t.Helper()
	var got Confirmation
	abandoned := false
	err := h.Open(context.Background(), Options{OrderID: orderID, Amount: 50000}, Callbacks{
		OnConfirmed: func(_ context.Context, conf Confirmation) error {
			got = conf
			return nil
		},
		OnAbandoned: func(context.Context) error {
			abandoned = true
			return nil
		},
	})
	require.NoError(t, err)
	return &got, &abandoned
}

func TestHosted_ConfirmRoutesToOpener(t *testing.T) {
	h := NewHosted(nil)
	got, _ := openOrder(t, h, "order_1")

	opts, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, int64(50000), opts.Amount)

	conf := Confirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"}
	require.NoError(t, h.Confirm(context.Background(), conf))

	assert.Equal(t, conf, *got)
	_, ok = h.Current()
	assert.False(t, ok)
}

func TestHosted_ConfirmWrongOrderKeepsCheckoutOpen(t *testing.T) {
	h := NewHosted(nil)
	got, _ := openOrder(t, h, "order_1")

	err := h.Confirm(context.Background(), Confirmation{PaymentID: "pay_1", OrderID: "order_other"})

	assert.ErrorIs(t, err, ErrUnknownOrder)
	assert.Empty(t, got.PaymentID)
	_, ok := h.Current()
	assert.True(t, ok)
}

func TestHosted_Abandon(t *testing.T) {
	h := NewHosted(nil)
	_, abandoned := openOrder(t, h, "order_1")

	require.NoError(t, h.Abandon(context.Background()))
	assert.True(t, *abandoned)

	assert.ErrorIs(t, h.Abandon(context.Background()), ErrNoPendingCheckout)
}

func TestHosted_OpenTwice(t *testing.T) {
	h := NewHosted(nil)
	openOrder(t, h, "order_1")

	err := h.Open(context.Background(), Options{OrderID: "order_2"}, Callbacks{})
	assert.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestHosted_OpenCancelledContext(t *testing.T) {
	h := NewHosted(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Open(ctx, Options{OrderID: "order_1"}, Callbacks{})
	assert.True(t, errors.Is(err, context.Canceled))
	_, ok := h.Current()
	assert.False(t, ok)
}

func TestHosted_CloseDropsWithoutCallback(t *testing.T) {
	h := NewHosted(nil)
	_, abandoned := openOrder(t, h, "order_1")

	h.Close()

	assert.False(t, *abandoned)
	assert.ErrorIs(t, h.Confirm(context.Background(), Confirmation{OrderID: "order_1"}), ErrNoPendingCheckout)
}

func TestHosted_CallbackErrorIsReturned(t *testing.T) {
	h := NewHosted(nil)
	boom := errors.New("booking rejected")
	require.NoError(t, h.Open(context.Background(), Options{OrderID: "order_1"}, Callbacks{
		OnConfirmed: func(context.Context, Confirmation) error { return boom },
	}))

	err := h.Confirm(context.Background(), Confirmation{OrderID: "order_1", PaymentID: "pay_1"})
	assert.ErrorIs(t, err, boom)
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("s3cret")
	sig := v.Sign("order_1", "pay_1")

	assert.NoError(t, v.Verify(Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: sig}))
	assert.ErrorIs(t, v.Verify(Confirmation{OrderID: "order_1", PaymentID: "pay_2", Signature: sig}), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "zz"}), ErrInvalidSignature)

	assert.Nil(t, NewVerifier(""))
	var none *Verifier
	assert.NoError(t, none.Verify(Confirmation{}))
}

func TestHosted_RejectsBadSignature(t *testing.T) {
	v := NewVerifier("s3cret")
	h := NewHosted(v)
	got, _ := openOrder(t, h, "order_1")

	err := h.Confirm(context.Background(), Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "00"})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, got.PaymentID)

	err = h.Confirm(context.Background(), Confirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: v.Sign("order_1", "pay_1")})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", got.PaymentID)
}
