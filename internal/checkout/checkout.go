// Package checkout models the hosted payment widget. The browser renders the
// real widget from the published Options; its handler and dismiss callbacks
// come back to this service and are routed to whoever opened the widget.
package checkout

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNoPendingCheckout = errors.New("no checkout is open")
	ErrAlreadyOpen       = errors.New("checkout is already open")
	ErrUnknownOrder      = errors.New("confirmation does not belong to the open checkout")
)

type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Theme struct {
	Color string `json:"color"`
}

// Options is what the browser needs to open the widget.
// Amount is in minor currency units.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Confirmation is the payload the widget hands to its success handler
type Confirmation struct {
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature string `json:"razorpay_signature"`
}

// Callbacks are the two ways a widget can finish
type Callbacks struct {
	OnConfirmed func(ctx context.Context, conf Confirmation) error
	OnAbandoned func(ctx context.Context) error
}

// Widget opens a checkout for an order. Open does not block on the payment.
type Widget interface {
	Open(ctx context.Context, opts Options, cb Callbacks) error
}

// Hosted is a Widget whose outcome is reported over HTTP. One Hosted serves
// one booking session, so at most one checkout is open at a time.
type Hosted struct {
	verifier *Verifier

	mu      sync.Mutex
	opts    *Options
	pending Callbacks
}

// NewHosted returns a widget that checks confirmations with v. A nil v
// accepts any signature.
func NewHosted(v *Verifier) *Hosted {
	return &Hosted{verifier: v}
}

// Open publishes opts and waits for Confirm or Abandon
func (h *Hosted) Open(ctx context.Context, opts Options, cb Callbacks) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.opts != nil {
		return ErrAlreadyOpen
	}
	o := opts
	h.opts = &o
	h.pending = cb
	return nil
}

// Current returns the options of the open checkout, if any
func (h *Hosted) Current() (Options, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.opts == nil {
		return Options{}, false
	}
	return *h.opts, true
}

// Confirm routes a widget success to the opener. The checkout closes only
// when the confirmation is accepted as belonging to it.
func (h *Hosted) Confirm(ctx context.Context, conf Confirmation) error {
	cb, err := h.take(func(o *Options) error {
		if conf.OrderID != o.OrderID {
			return ErrUnknownOrder
		}
		return h.verifier.Verify(conf)
	})
	if err != nil {
		return err
	}
	if cb.OnConfirmed == nil {
		return nil
	}
	return cb.OnConfirmed(ctx, conf)
}

// Abandon routes a widget dismissal to the opener
func (h *Hosted) Abandon(ctx context.Context) error {
	cb, err := h.take(nil)
	if err != nil {
		return err
	}
	if cb.OnAbandoned == nil {
		return nil
	}
	return cb.OnAbandoned(ctx)
}

// Close drops the open checkout without calling back
func (h *Hosted) Close() {
	h.mu.Lock()
	h.opts = nil
	h.pending = Callbacks{}
	h.mu.Unlock()
}

func (h *Hosted) take(check func(*Options) error) (Callbacks, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.opts == nil {
		return Callbacks{}, ErrNoPendingCheckout
	}
	if check != nil {
		if err := check(h.opts); err != nil {
			return Callbacks{}, err
		}
	}
	cb := h.pending
	h.opts = nil
	h.pending = Callbacks{}
	return cb, nil
}
