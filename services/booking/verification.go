package booking

import (
	"context"
	"time"

	"fixify/database/repository"
	"fixify/models"
	"fixify/utils"

	"go.uber.org/zap"
)

func isCodeShaped(code string) bool {
	if len(code) < 4 || len(code) > 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IssueCompletionCode sends a one-time code to the booking's customer so
// completion can be confirmed in person. Only the assigned professional may
// trigger it, only while the booking is in_progress, and resends are rate
// limited per booking.
func (s *DefaultBookingService) IssueCompletionCode(ctx context.Context, bookingID, professionalID string) (string, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if b.ProfessionalID != professionalID {
		return "", ErrNotAllowed
	}
	if b.Status != models.BookingInProgress {
		return "", repository.ErrInvalidTransition
	}

	if b.Verification != nil {
		elapsed := time.Since(b.Verification.SentAt)
		if elapsed < utils.CodeResendCooldown {
			return "", CooldownError{Remaining: utils.CodeResendCooldown - elapsed}
		}
	}

	customer, err := s.CustomerRepo.GetByID(ctx, b.CustomerID)
	if err != nil {
		return "", err
	}

	sessionID, err := s.Codes.Send(ctx, customer.PhoneNumber)
	if err != nil {
		utils.GetLogger().Error("completion code delivery failed",
			zap.String("bookingId", bookingID), zap.Error(err))
		return "", ErrDeliveryFailed
	}

	// A fresh session resets the attempt counter.
	session := models.VerificationSession{
		SessionID: sessionID,
		SentAt:    time.Now(),
		Attempts:  0,
	}
	if err := s.Repo.SetVerification(ctx, bookingID, &session); err != nil {
		return "", err
	}
	return sessionID, nil
}

// VerifyCompletionCode checks the code the customer read out. A correct
// code within the attempt budget completes the booking and settles the
// payout in one transaction.
func (s *DefaultBookingService) VerifyCompletionCode(ctx context.Context, bookingID, professionalID, code string) (*models.Booking, *models.PayoutBreakdown, error) {
	if !isCodeShaped(code) {
		return nil, nil, ValidationError{Field: "code", Reason: "must be 4 to 6 digits"}
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.ProfessionalID != professionalID {
		return nil, nil, ErrNotAllowed
	}
	if b.Status != models.BookingInProgress {
		return nil, nil, repository.ErrInvalidTransition
	}
	if b.Verification == nil {
		return nil, nil, ErrNoSession
	}
	if time.Since(b.Verification.SentAt) > utils.CodeTTL {
		return nil, nil, ErrCodeExpired
	}
	if b.Verification.Attempts >= utils.MaxCodeAttempts {
		return nil, nil, ErrMaxAttempts
	}

	customer, err := s.CustomerRepo.GetByID(ctx, b.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := s.Codes.Check(ctx, customer.PhoneNumber, code)
	if err != nil {
		// An upstream failure is not the customer's mistake; the attempt
		// budget stays untouched.
		return nil, nil, ErrDeliveryFailed
	}
	if !ok {
		attempts, err := s.Repo.IncrementVerificationAttempts(ctx, bookingID)
		if err != nil {
			return nil, nil, err
		}
		left := utils.MaxCodeAttempts - attempts
		if left <= 0 {
			return nil, nil, ErrMaxAttempts
		}
		return nil, nil, InvalidCodeError{AttemptsLeft: left}
	}

	breakdown := Breakdown(b.ServiceAmount, b.AdditionalCharges, s.CommissionRate)
	completed, err := s.Repo.Complete(ctx, bookingID, breakdown.TotalAmount, time.Now())
	if err != nil {
		return nil, nil, err
	}

	s.afterTransition(ctx, completed, "completed")
	return completed, &breakdown, nil
}
