// Package workflow drives one booking attempt from roster validation through
// payment to the backend's booking record.
package workflow

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"festbook/internal/checkout"
	"festbook/internal/festapi"
	"festbook/internal/roster"
	"festbook/internal/users"
	"festbook/pkg/logger"
)

const (
	msgOrderFailed   = "Failed to create order"
	msgBookingFailed = "Booking failed"
	msgCheckoutDown  = "Payment gateway is unavailable. Please try again."
)

// Backend is the part of the festival backend an attempt needs
type Backend interface {
	CreateOrder(ctx context.Context, req festapi.CreateOrderRequest) (*festapi.PaymentOrder, error)
	CreateBooking(ctx context.Context, req festapi.BookingRequest) (*festapi.Booking, error)
}

// Observer receives every transition after the controller lock is released
type Observer interface {
	Transitioned(ctx context.Context, ev Event)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Transitioned(ctx context.Context, ev Event) { f(ctx, ev) }

// CheckoutSettings are the merchant-side widget options
type CheckoutSettings struct {
	KeyID      string
	Currency   string
	Name       string
	ThemeColor string
}

type Params struct {
	ID       string
	Program  festapi.Program
	User     users.User
	Backend  Backend
	Widget   checkout.Widget
	Checkout CheckoutSettings
	Observer Observer
	Logger   *logger.Logger
}

// Controller is the state machine of one booking page visit. All methods are
// safe for concurrent use; backend calls run without holding the lock.
type Controller struct {
	id       string
	program  festapi.Program
	user     users.User
	backend  Backend
	widget   checkout.Widget
	settings CheckoutSettings
	observer Observer
	log      *logger.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	state    State
	attempt  uint64
	disposed bool
	roster   *roster.Roster
	err      error
	order    *festapi.PaymentOrder
	payment  string
	options  *checkout.Options
	booking  *festapi.Booking
	pending  []Event
}

func New(p Params) *Controller {
	log := p.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:       p.ID,
		program:  p.Program,
		user:     p.User,
		backend:  p.Backend,
		widget:   p.Widget,
		settings: p.Checkout,
		observer: p.Observer,
		log:      log.WithSessionID(p.ID),
		lifetime: ctx,
		cancel:   cancel,
		state:    StateIdle,
	}
	if p.Program.IsGroup() {
		c.roster = roster.New(p.Program.MaxGroupMembers)
	}
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:      c.id,
		State:   c.state,
		Program: c.program,
		Err:     c.err,
		Booking: c.booking,
	}
	if c.roster != nil {
		s.Members = c.roster.Members()
		s.MaxMembers = c.roster.Max()
	}
	if c.options != nil && c.state == StateAwaitingPayment {
		opts := *c.options
		s.Checkout = &opts
	}
	return s
}

// SetGroupSize resizes the roster. Roster edits are refused while an attempt runs.
func (c *Controller) SetGroupSize(n int) error {
	return c.editRoster(func(r *roster.Roster) { r.SetGroupSize(n) })
}

func (c *Controller) AddMember() error {
	return c.editRoster(func(r *roster.Roster) { r.AddMember() })
}

func (c *Controller) RemoveMember(index int) error {
	return c.editRoster(func(r *roster.Roster) { r.RemoveMember(index) })
}

func (c *Controller) UpdateMember(index int, field roster.Field, value string) error {
	return c.editRoster(func(r *roster.Roster) { r.UpdateMember(index, field, value) })
}

func (c *Controller) editRoster(edit func(*roster.Roster)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.idleLocked(); err != nil {
		return err
	}
	if c.roster == nil {
		return ErrNotGroupBooking
	}
	edit(c.roster)
	return nil
}

// Initiate starts an attempt. The free path submits before returning; the
// paid path returns once the checkout widget is open.
func (c *Controller) Initiate(ctx context.Context) error {
	c.mu.Lock()
	if err := c.idleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	c.attempt++
	attempt := c.attempt
	c.err = nil
	c.order = nil
	c.payment = ""
	c.options = nil

	if !c.user.CanBook() {
		err := &AuthorizationError{Role: string(c.user.Role)}
		c.failLocked(err)
		c.unlockAndNotify(ctx)
		return err
	}

	c.transitionLocked(StateValidating)
	if c.roster != nil {
		if verr := Validate(c.roster.Members()); verr != nil {
			c.failLocked(verr)
			c.unlockAndNotify(ctx)
			return verr
		}
	}

	if c.program.IsFree() {
		c.transitionLocked(StateSubmitting)
		req := c.bookingRequestLocked(nil)
		c.unlockAndNotify(ctx)
		return c.submit(ctx, attempt, req)
	}

	orderReq := festapi.CreateOrderRequest{ProgramID: c.program.ID}
	if c.roster != nil {
		orderReq.GroupSize = c.roster.Len()
	}
	c.transitionLocked(StateOrderPending)
	c.unlockAndNotify(ctx)

	return c.createOrder(ctx, attempt, orderReq)
}

func (c *Controller) createOrder(ctx context.Context, attempt uint64, req festapi.CreateOrderRequest) error {
	callCtx, stop := c.callContext(ctx)
	defer stop()

	order, err := c.backend.CreateOrder(callCtx, req)

	c.mu.Lock()
	if !c.currentLocked(attempt, StateOrderPending) {
		c.mu.Unlock()
		return ErrDisposed
	}
	if err != nil {
		oerr := &OrderCreationError{Message: festapi.UserMessage(err, msgOrderFailed), Err: err}
		c.failLocked(oerr)
		c.unlockAndNotify(ctx)
		return oerr
	}

	opts := c.checkoutOptionsLocked(order)
	c.order = order
	c.options = &opts
	c.transitionLocked(StateAwaitingPayment)
	c.unlockAndNotify(ctx)

	// The widget may call back synchronously, so it is opened unlocked.
	openErr := c.widget.Open(callCtx, opts, checkout.Callbacks{
		OnConfirmed: c.Submit,
		OnAbandoned: c.AbandonPayment,
	})
	if openErr == nil {
		return nil
	}

	c.mu.Lock()
	if !c.currentLocked(attempt, StateAwaitingPayment) {
		c.mu.Unlock()
		return ErrDisposed
	}
	oerr := &OrderCreationError{Message: msgCheckoutDown, Err: openErr}
	c.failLocked(oerr)
	c.unlockAndNotify(ctx)
	return oerr
}

// Submit completes a paid attempt with the widget's confirmation
func (c *Controller) Submit(ctx context.Context, conf checkout.Confirmation) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state != StateAwaitingPayment {
		c.mu.Unlock()
		return ErrNotAwaitingPayment
	}
	if c.order == nil || conf.OrderID != c.order.OrderID || conf.PaymentID == "" {
		c.mu.Unlock()
		return ErrOrderMismatch
	}

	attempt := c.attempt
	c.payment = conf.PaymentID
	c.transitionLocked(StateSubmitting)
	req := c.bookingRequestLocked(&conf)
	c.unlockAndNotify(ctx)

	return c.submit(ctx, attempt, req)
}

func (c *Controller) submit(ctx context.Context, attempt uint64, req festapi.BookingRequest) error {
	callCtx, stop := c.callContext(ctx)
	defer stop()

	booking, err := c.backend.CreateBooking(callCtx, req)

	c.mu.Lock()
	if !c.currentLocked(attempt, StateSubmitting) {
		c.mu.Unlock()
		return ErrDisposed
	}
	if err != nil {
		serr := &SubmissionError{Message: festapi.UserMessage(err, msgBookingFailed), Err: err}
		c.failLocked(serr)
		c.unlockAndNotify(ctx)
		return serr
	}

	c.booking = booking
	c.options = nil
	c.transitionLocked(StateSuccess)
	c.unlockAndNotify(ctx)
	return nil
}

// AbandonPayment ends an attempt whose checkout was dismissed
func (c *Controller) AbandonPayment(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state != StateAwaitingPayment {
		c.mu.Unlock()
		return ErrNotAwaitingPayment
	}
	err := &PaymentAbandonedError{OrderID: c.order.OrderID}
	c.failLocked(err)
	c.unlockAndNotify(ctx)
	return err
}

// Reset clears the last error so the student can fix the roster and retry
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.idleLocked(); err != nil {
		return err
	}
	c.err = nil
	return nil
}

// Dispose ends the page visit. In-flight calls are cancelled and their
// responses are dropped. An attempt still in flight ends with ErrDisposed.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.cancel()
	if c.state.Busy() {
		c.failLocked(ErrDisposed)
	}
	c.unlockAndNotify(context.Background())
}

func (c *Controller) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *Controller) idleLocked() error {
	switch {
	case c.disposed:
		return ErrDisposed
	case c.state == StateSuccess:
		return ErrBookingComplete
	case c.state != StateIdle:
		return ErrAttemptInProgress
	}
	return nil
}

// currentLocked reports whether a resumed call still owns the controller
func (c *Controller) currentLocked(attempt uint64, want State) bool {
	return !c.disposed && c.attempt == attempt && c.state == want
}

func (c *Controller) failLocked(err error) {
	c.err = err
	c.options = nil
	c.transitionLocked(StateIdle)
}

func (c *Controller) transitionLocked(to State) {
	ev := Event{
		ControllerID: c.id,
		StudentID:    c.user.ID,
		ProgramID:    c.program.ID,
		BookingType:  c.program.BookingType,
		GroupSize:    1,
		From:         c.state,
		To:           to,
		At:           time.Now().UTC(),
	}
	if c.roster != nil {
		ev.GroupSize = c.roster.Len()
	}
	if to == StateIdle {
		ev.Err = c.err
	}
	if c.order != nil {
		ev.OrderID = c.order.OrderID
	}
	ev.PaymentID = c.payment
	if to == StateSuccess {
		ev.Booking = c.booking
	}
	c.state = to
	c.pending = append(c.pending, ev)
}

func (c *Controller) unlockAndNotify(ctx context.Context) {
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	notifyCtx := context.WithoutCancel(ctx)
	for _, ev := range events {
		c.log.LogAttemptTransition(notifyCtx, c.id, string(ev.From), string(ev.To))
		if c.observer != nil {
			c.observer.Transitioned(notifyCtx, ev)
		}
	}
}

// callContext is cancelled when either ctx or the controller's lifetime ends
func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) bookingRequestLocked(conf *checkout.Confirmation) festapi.BookingRequest {
	req := festapi.BookingRequest{
		StudentID: c.user.ID,
		ProgramID: c.program.ID,
	}
	if conf != nil {
		req.RazorpayPaymentID = conf.PaymentID
		req.RazorpayOrderID = conf.OrderID
		req.RazorpaySignature = conf.Signature
	}
	if c.roster != nil {
		isGroup := true
		size := c.roster.Len()
		total := c.program.TicketPrice
		req.IsGroupBooking = &isGroup
		req.GroupSize = &size
		req.TotalAmount = &total
		for _, m := range c.roster.Members() {
			req.GroupMembers = append(req.GroupMembers, festapi.GroupMember{
				MemberName:  m.Name,
				MemberEmail: m.Email,
				MemberPhone: m.Phone,
			})
		}
	}
	return req
}

func (c *Controller) checkoutOptionsLocked(order *festapi.PaymentOrder) checkout.Options {
	amount := c.program.TicketPrice
	if order.TotalAmount > 0 {
		amount = order.TotalAmount
	}
	description := c.program.Title
	if fest := c.program.FestTitle(); fest != "" {
		description = fmt.Sprintf("%s - %s", c.program.Title, fest)
	}
	return checkout.Options{
		Key:         c.settings.KeyID,
		Amount:      int64(math.Round(amount * 100)),
		Currency:    c.settings.Currency,
		Name:        c.settings.Name,
		Description: description,
		OrderID:     order.OrderID,
		Prefill: checkout.Prefill{
			Name:  c.user.Username,
			Email: c.user.Email,
		},
		Theme: checkout.Theme{Color: c.settings.ThemeColor},
	}
}
