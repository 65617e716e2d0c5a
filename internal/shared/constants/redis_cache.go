package constants

import (
	"fmt"
	"time"
)

// Redis keys used by festbook
// Pattern: festbook:{module}:{operation}:{identifier}

const CACHE_PREFIX = "festbook"

// ================== TTL DEFAULTS ==================

const (
	TTL_PROGRAM_DETAIL = 2 * time.Minute  // program details, seat counts move slowly
	TTL_ATTEMPT_LOCK   = 30 * time.Minute // one in-flight attempt per student and program
)

// ================== PROGRAMS MODULE ==================

const (
	CACHE_KEY_PROGRAM_DETAIL = CACHE_PREFIX + ":programs:detail:" // + program-id
)

// ================== BOOKINGS MODULE ==================

const (
	LOCK_KEY_BOOKING_ATTEMPT = CACHE_PREFIX + ":bookings:lock:" // + student-id:program-id
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:" // + bucket:identifier
)

// ================== KEY BUILDERS ==================

func BuildProgramDetailKey(programID int64) string {
	return fmt.Sprintf("%s%d", CACHE_KEY_PROGRAM_DETAIL, programID)
}

func BuildAttemptLockKey(studentID, programID int64) string {
	return fmt.Sprintf("%s%d:%d", LOCK_KEY_BOOKING_ATTEMPT, studentID, programID)
}

func BuildRateLimitKey(bucket, identifier string) string {
	return RATE_LIMIT_PREFIX + bucket + ":" + identifier
}
