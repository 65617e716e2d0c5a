package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"festbook/internal/attempts"
	"festbook/internal/checkout"
	"festbook/internal/festapi"
	"festbook/internal/notifications"
	"festbook/internal/receipts"
	"festbook/internal/roster"
	"festbook/internal/users"
	"festbook/internal/workflow"
	"festbook/pkg/logger"

	"github.com/google/uuid"
)

// Upstream is the festival backend as seen by booking sessions
type Upstream interface {
	workflow.Backend
	StudentBookings(ctx context.Context, studentID int64) ([]festapi.Booking, error)
	HasBooked(ctx context.Context, studentID, programID int64) (bool, error)
}

// ProgramDirectory resolves program details, usually through the cache
type ProgramDirectory interface {
	GetProgram(ctx context.Context, programID int64) (*festapi.Program, error)
	Invalidate(ctx context.Context, programID int64) error
}

type Service interface {
	Open(ctx context.Context, user users.User, programID int64) (workflow.Snapshot, error)
	Get(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error)

	SetGroupSize(ctx context.Context, user users.User, sessionID string, size int) (workflow.Snapshot, error)
	AddMember(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error)
	RemoveMember(ctx context.Context, user users.User, sessionID string, index int) (workflow.Snapshot, error)
	UpdateMember(ctx context.Context, user users.User, sessionID string, index int, field roster.Field, value string) (workflow.Snapshot, error)

	Initiate(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error)
	ConfirmPayment(ctx context.Context, user users.User, sessionID string, conf checkout.Confirmation) (workflow.Snapshot, error)
	AbandonPayment(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error)
	Reset(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error)
	Close(ctx context.Context, user users.User, sessionID string) error

	Receipt(ctx context.Context, user users.User, sessionID string) ([]byte, string, error)
	ListAttempts(ctx context.Context, user users.User, q attempts.ListQuery) (*attempts.PaginatedAttempts, error)
	MyBookings(ctx context.Context, user users.User) ([]festapi.Booking, error)

	SweepIdle(ctx context.Context) int
	Shutdown(ctx context.Context)
}

// Options tune the session layer
type Options struct {
	SessionTTL time.Duration
	Checkout   workflow.CheckoutSettings
	Verifier   *checkout.Verifier
}

type Deps struct {
	Upstream  Upstream
	Programs  ProgramDirectory
	Attempts  attempts.Service
	Publisher notifications.Publisher
	Lock      *AttemptLock
	Logger    *logger.Logger
}

type service struct {
	upstream  Upstream
	programs  ProgramDirectory
	attempts  attempts.Service
	publisher notifications.Publisher
	lock      *AttemptLock
	log       *logger.Logger
	opts      Options
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	effects sync.WaitGroup
}

func NewService(deps Deps, opts Options) Service {
	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = notifications.Noop{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	return &service{
		upstream:  deps.Upstream,
		programs:  deps.Programs,
		attempts:  deps.Attempts,
		publisher: publisher,
		lock:      deps.Lock,
		log:       log,
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *service) Open(ctx context.Context, user users.User, programID int64) (workflow.Snapshot, error) {
	program, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		return workflow.Snapshot{}, err
	}

	booked, err := s.upstream.HasBooked(ctx, user.ID, programID)
	if err != nil {
		return workflow.Snapshot{}, fmt.Errorf("check existing bookings: %w", err)
	}
	if booked {
		return workflow.Snapshot{}, ErrAlreadyBooked
	}

	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		studentID: user.ID,
		programID: programID,
		widget:    checkout.NewHosted(s.opts.Verifier),
		createdAt: now,
		lastSeen:  now,
	}
	sess.ctrl = workflow.New(workflow.Params{
		ID:       sess.id,
		Program:  *program,
		User:     user,
		Backend:  s.upstream,
		Widget:   sess.widget,
		Checkout: s.opts.Checkout,
		Observer: workflow.ObserverFunc(s.observe),
		Logger:   s.log,
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.WithSessionID(sess.id).WithStudentID(user.ID).InfoWithContext(ctx, "booking session opened", map[string]interface{}{
		"program_id":   programID,
		"booking_type": string(program.BookingType),
	})
	return sess.ctrl.Snapshot(), nil
}

func (s *service) Get(_ context.Context, user users.User, sessionID string) (workflow.Snapshot, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return sess.ctrl.Snapshot(), nil
}

func (s *service) SetGroupSize(_ context.Context, user users.User, sessionID string, size int) (workflow.Snapshot, error) {
	return s.edit(user, sessionID, func(c *workflow.Controller) error { return c.SetGroupSize(size) })
}

func (s *service) AddMember(_ context.Context, user users.User, sessionID string) (workflow.Snapshot, error) {
	return s.edit(user, sessionID, func(c *workflow.Controller) error { return c.AddMember() })
}

func (s *service) RemoveMember(_ context.Context, user users.User, sessionID string, index int) (workflow.Snapshot, error) {
	return s.edit(user, sessionID, func(c *workflow.Controller) error { return c.RemoveMember(index) })
}

func (s *service) UpdateMember(_ context.Context, user users.User, sessionID string, index int, field roster.Field, value string) (workflow.Snapshot, error) {
	return s.edit(user, sessionID, func(c *workflow.Controller) error { return c.UpdateMember(index, field, value) })
}

func (s *service) Reset(_ context.Context, user users.User, sessionID string) (workflow.Snapshot, error) {
	return s.edit(user, sessionID, func(c *workflow.Controller) error { return c.Reset() })
}

func (s *service) edit(user users.User, sessionID string, fn func(*workflow.Controller) error) (workflow.Snapshot, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := fn(sess.ctrl); err != nil {
		return sess.ctrl.Snapshot(), err
	}
	return sess.ctrl.Snapshot(), nil
}

func (s *service) Initiate(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}

	// Only an idle controller may take the lock; otherwise let it report why.
	if sess.ctrl.State() == workflow.StateIdle && s.lock != nil {
		ok, lockErr := s.lock.Acquire(ctx, sess.studentID, sess.programID, sess.id)
		switch {
		case lockErr != nil:
			s.log.WithSessionID(sess.id).WithError(lockErr).WarnContext(ctx, "attempt lock unavailable, continuing")
		case !ok:
			return sess.ctrl.Snapshot(), workflow.ErrAttemptInProgress
		}
	}

	err = sess.ctrl.Initiate(ctx)
	if errors.Is(err, workflow.ErrBookingComplete) || errors.Is(err, workflow.ErrDisposed) {
		s.releaseLock(ctx, sess)
	}
	return sess.ctrl.Snapshot(), err
}

func (s *service) ConfirmPayment(ctx context.Context, user users.User, sessionID string, conf checkout.Confirmation) (workflow.Snapshot, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}

	err = sess.widget.Confirm(ctx, conf)
	switch {
	case errors.Is(err, checkout.ErrNoPendingCheckout):
		err = workflow.ErrNotAwaitingPayment
	case errors.Is(err, checkout.ErrUnknownOrder):
		err = workflow.ErrOrderMismatch
	case errors.Is(err, checkout.ErrInvalidSignature):
		s.log.WithSessionID(sess.id).WarnContext(ctx, "payment signature rejected", "order_id", conf.OrderID)
		err = ErrPaymentVerification
	}
	return sess.ctrl.Snapshot(), err
}

func (s *service) AbandonPayment(ctx context.Context, user users.User, sessionID string) (workflow.Snapshot, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}

	err = sess.widget.Abandon(ctx)
	var abandoned *workflow.PaymentAbandonedError
	switch {
	case errors.As(err, &abandoned):
		// Expected outcome; the snapshot carries the error for display.
		err = nil
	case errors.Is(err, checkout.ErrNoPendingCheckout):
		err = workflow.ErrNotAwaitingPayment
	}
	return sess.ctrl.Snapshot(), err
}

func (s *service) Close(ctx context.Context, user users.User, sessionID string) error {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return err
	}
	s.remove(ctx, sess, "closed")
	return nil
}

func (s *service) Receipt(ctx context.Context, user users.User, sessionID string) ([]byte, string, error) {
	sess, err := s.lookup(user, sessionID)
	if err != nil {
		return nil, "", err
	}
	snap := sess.ctrl.Snapshot()
	if snap.State != workflow.StateSuccess || snap.Booking == nil {
		return nil, "", ErrReceiptUnavailable
	}

	amount := snap.Booking.TotalAmount
	if amount <= 0 {
		amount = snap.Program.TicketPrice
	}
	return receipts.Render(receipts.Data{
		Program: snap.Program,
		Booking: *snap.Booking,
		Student: user,
		Amount:  amount,
	})
}

func (s *service) ListAttempts(ctx context.Context, user users.User, q attempts.ListQuery) (*attempts.PaginatedAttempts, error) {
	return s.attempts.ListForStudent(ctx, user.ID, q)
}

func (s *service) MyBookings(ctx context.Context, user users.User) ([]festapi.Booking, error) {
	out, err := s.upstream.StudentBookings(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []festapi.Booking{}
	}
	return out, nil
}

// SweepIdle disposes sessions nobody touched within the session TTL
func (s *service) SweepIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	var stale []*session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.dispose(ctx, sess, "expired")
	}
	return len(stale)
}

// Shutdown disposes every session and waits for pending audit writes and
// outcome events until ctx ends
func (s *service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.dispose(ctx, sess, "shutdown")
	}

	done := make(chan struct{})
	go func() {
		s.effects.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.WarnContext(ctx, "shutdown before booking outcomes were recorded")
	}
}

// lookup returns the caller's session. Sessions of other students look missing.
func (s *service) lookup(user users.User, sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.studentID != user.ID {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *service) remove(ctx context.Context, sess *session, reason string) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.dispose(ctx, sess, reason)
}

func (s *service) dispose(ctx context.Context, sess *session, reason string) {
	state := sess.ctrl.State()
	sess.dispose()
	s.releaseLock(ctx, sess)
	s.log.WithSessionID(sess.id).InfoWithContext(ctx, "booking session disposed", map[string]interface{}{
		"reason": reason,
		"state":  string(state),
	})
}

func (s *service) releaseLock(ctx context.Context, sess *session) {
	if s.lock == nil {
		return
	}
	if err := s.lock.Release(context.WithoutCancel(ctx), sess.studentID, sess.programID, sess.id); err != nil {
		s.log.WithSessionID(sess.id).WithError(err).WarnContext(ctx, "attempt lock release failed")
	}
}
