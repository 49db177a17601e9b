package booking

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError rejects malformed input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CooldownError signals a resend attempted before the cooldown elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("code was sent recently; retry in %d seconds", int(e.Remaining.Seconds()))
}

// InvalidCodeError signals a wrong code with attempts still remaining.
type InvalidCodeError struct {
	AttemptsLeft int
}

func (e InvalidCodeError) Error() string {
	return fmt.Sprintf("incorrect code; %d attempts remaining", e.AttemptsLeft)
}

var (
	// ErrNotAllowed is returned when the caller is not a party to the
	// booking or the role does not permit the operation.
	ErrNotAllowed = errors.New("operation not permitted for this actor")

	// ErrNoSession is returned when verification is attempted before any
	// code was issued.
	ErrNoSession = errors.New("no verification code has been issued")

	// ErrCodeExpired is returned when the verification session is older
	// than its lifetime.
	ErrCodeExpired = errors.New("verification code has expired")

	// ErrMaxAttempts is returned once the attempt counter is exhausted,
	// regardless of code correctness.
	ErrMaxAttempts = errors.New("maximum verification attempts exceeded")

	// ErrDeliveryFailed wraps failures of the external code channel.
	ErrDeliveryFailed = errors.New("code delivery failed")
)
