package bookings

import (
	"time"

	"festbook/internal/checkout"
	"festbook/internal/workflow"
)

// session is one booking page visit owned by one student
type session struct {
	id        string
	studentID int64
	programID int64
	ctrl      *workflow.Controller
	widget    *checkout.Hosted
	createdAt time.Time
	lastSeen  time.Time
}

func (s *session) dispose() {
	s.ctrl.Dispose()
	s.widget.Close()
}
