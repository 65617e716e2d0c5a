package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
	assert.Equal(t, slog.LevelInfo, getLogLevel("verbose"))
}

func TestLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithSessionID("sess-1").WithStudentID(12)

	l.LogAttemptTransition(context.Background(), "sess-1", "IDLE", "VALIDATING")
	l.LogBookingFailed(context.Background(), "sess-1", "submission", "No more teams can register for this event.")
	l.LogUpstreamCall(context.Background(), "POST", "/api/program-bookings/create", 400, time.Millisecond, errors.New("rejected"))

	out := buf.String()
	assert.Contains(t, out, "Booking Attempt Transition")
	assert.Contains(t, out, "VALIDATING")
	assert.Contains(t, out, "No more teams can register for this event.")
	assert.Contains(t, out, "Upstream Call Failed")
	assert.Contains(t, out, "student_id=12")
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "error")

	l.LogUpstreamCall(context.Background(), "GET", "/api/programs/1", 200, time.Millisecond, nil)

	assert.Empty(t, buf.String())
}
