package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"fixify/database/repository"
	"fixify/models"
)

// startedBooking builds a booking in in_progress assigned to pro-1.
func startedBooking(t *testing.T, env *testEnv) *models.Booking {
	t.Helper()
	env.addProfessional("pro-1", 12.9352, 77.6245, 4.5, 50, "plumbing")
	b := env.createBooking(t, false)
	ctx := context.Background()
	if _, err := env.svc.Accept(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := env.svc.Start(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return b
}

func TestIssueCodeGuards(t *testing.T) {
	env := newTestEnv()
	env.addProfessional("pro-1", 12.93, 77.62, 4, 10, "plumbing")
	b := env.createBooking(t, false)
	ctx := context.Background()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("unassigned issue: got %v, want ErrNotAllowed", err)
	}

	env.svc.Accept(ctx, b.ID, "pro-1")
	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Errorf("issue before start: got %v, want ErrInvalidTransition", err)
	}

	env.svc.Start(ctx, b.ID, "pro-1")
	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "someone-else"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("stranger issue: got %v, want ErrNotAllowed", err)
	}

	sessionID, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if sessionID == "" {
		t.Errorf("empty session id")
	}
}

func TestIssueCodeCooldown(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}

	_, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1")
	var cdErr CooldownError
	if !errors.As(err, &cdErr) {
		t.Fatalf("immediate resend: got %v, want CooldownError", err)
	}
	if cdErr.Remaining <= 0 || cdErr.Remaining > 30*time.Second {
		t.Errorf("remaining = %v, want (0, 30s]", cdErr.Remaining)
	}

	// After the cooldown window a resend goes through and resets attempts.
	env.store.mu.Lock()
	env.store.bookings[b.ID].Verification.SentAt = time.Now().Add(-time.Minute)
	env.store.bookings[b.ID].Verification.Attempts = 2
	env.store.mu.Unlock()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("resend after cooldown failed: %v", err)
	}
	env.store.mu.Lock()
	attempts := env.store.bookings[b.ID].Verification.Attempts
	env.store.mu.Unlock()
	if attempts != 0 {
		t.Errorf("attempts after resend = %d, want 0", attempts)
	}
}

func TestVerifyCompletesAndSettles(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	env.svc.AddCharge(ctx, b.ID, "pro-1", "extra pipe", 50)
	env.svc.AddCharge(ctx, b.ID, "pro-1", "sealant", 100)

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	got, payout, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "482915")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.Status != models.BookingCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.PaymentStatus != models.PaymentSettled {
		t.Errorf("paymentStatus = %s, want settled", got.PaymentStatus)
	}
	if got.Tracking.IsActive || got.Tracking.EndedAt == nil {
		t.Errorf("tracking not deactivated: %+v", got.Tracking)
	}

	if payout.TotalAmount != 650 {
		t.Errorf("payout total = %v, want 650", payout.TotalAmount)
	}
	if payout.PlatformCommission != 97.50 {
		t.Errorf("commission = %v, want 97.50", payout.PlatformCommission)
	}
	if payout.ProfessionalPayout != 552.50 {
		t.Errorf("payout = %v, want 552.50", payout.ProfessionalPayout)
	}

	prof := env.store.professionals["pro-1"]
	if prof.CurrentBooking != nil || !prof.IsAvailable {
		t.Errorf("professional not released: %+v", prof)
	}
	if prof.CompletedJobs != 51 {
		t.Errorf("completedJobs = %d, want 51", prof.CompletedJobs)
	}
}

func TestVerifyWrongCodeBurnsAttempts(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	for want := 2; want >= 1; want-- {
		_, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "000000")
		var codeErr InvalidCodeError
		if !errors.As(err, &codeErr) {
			t.Fatalf("wrong code: got %v, want InvalidCodeError", err)
		}
		if codeErr.AttemptsLeft != want {
			t.Errorf("attempts left = %d, want %d", codeErr.AttemptsLeft, want)
		}
	}

	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "000000"); !errors.Is(err, ErrMaxAttempts) {
		t.Errorf("third wrong: got %v, want ErrMaxAttempts", err)
	}

	// Even the correct code is refused once attempts are exhausted.
	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "482915"); !errors.Is(err, ErrMaxAttempts) {
		t.Errorf("correct code after exhaustion: got %v, want ErrMaxAttempts", err)
	}

	got, _ := env.svc.Repo.GetByID(ctx, b.ID)
	if got.Status != models.BookingInProgress {
		t.Errorf("status = %s, want still in_progress", got.Status)
	}
}

func TestVerifyExpiredSession(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	env.store.mu.Lock()
	env.store.bookings[b.ID].Verification.SentAt = time.Now().Add(-11 * time.Minute)
	env.store.mu.Unlock()

	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "482915"); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("expired session: got %v, want ErrCodeExpired", err)
	}
}

func TestVerifyInputGuards(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	cases := []string{"", "12", "1234567", "12a456"}
	for _, code := range cases {
		_, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", code)
		var vErr ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("code %q: got %v, want ValidationError", code, err)
		}
	}

	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "123456"); !errors.Is(err, ErrNoSession) {
		t.Errorf("no session: got %v, want ErrNoSession", err)
	}

	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "stranger", "123456"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("stranger verify: got %v, want ErrNotAllowed", err)
	}
}

func TestVerifyDeliveryFailure(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	env.codes.sendErr = errors.New("gateway down")
	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("gateway failure: got %v, want ErrDeliveryFailed", err)
	}

	// No session must be recorded for a failed delivery.
	got, _ := env.svc.Repo.GetByID(ctx, b.ID)
	if got.Verification != nil {
		t.Errorf("verification session stored despite delivery failure")
	}
}

func TestVerifyUpstreamFailureKeepsAttempts(t *testing.T) {
	env := newTestEnv()
	b := startedBooking(t, env)
	ctx := context.Background()

	if _, err := env.svc.IssueCompletionCode(ctx, b.ID, "pro-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// A broken check channel is not the customer's mistake and must not
	// consume the attempt budget.
	env.codes.checkErr = errors.New("gateway down")
	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "482915"); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("upstream failure: got %v, want ErrDeliveryFailed", err)
	}

	env.store.mu.Lock()
	attempts := env.store.bookings[b.ID].Verification.Attempts
	env.store.mu.Unlock()
	if attempts != 0 {
		t.Errorf("attempts after upstream failure = %d, want 0", attempts)
	}

	// Once the channel recovers the correct code still completes.
	env.codes.checkErr = nil
	if _, _, err := env.svc.VerifyCompletionCode(ctx, b.ID, "pro-1", "482915"); err != nil {
		t.Errorf("verify after recovery failed: %v", err)
	}
}
