package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixify/database/repository"
	"fixify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// runInTransaction wraps fn in a MongoDB multi-document transaction.
// A failed precondition aborts before any write becomes visible, so no
// compensating action is ever needed.
func (r *MongoBookingRepo) runInTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

func (r *MongoBookingRepo) bookingInSession(sc mongo.SessionContext, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.bookingColl.FindOne(sc, bson.M{"id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) professionalInSession(sc mongo.SessionContext, id string) (*models.Professional, error) {
	var p models.Professional
	if err := r.professionalColl.FindOne(sc, bson.M{"id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read professional %s: %w", id, err)
	}
	return &p, nil
}

// Accept resolves the assignment race. It re-reads both records inside the
// transaction, re-asserts every precondition in the write filters, and
// commits the dual write (booking assignment + professional lock) or
// nothing at all.
func (r *MongoBookingRepo) Accept(ctx context.Context, bookingID string, p AcceptParams) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var accepted *models.Booking
	err := r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		b, err := r.bookingInSession(sc, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingPending || b.ProfessionalID != "" {
			return repository.ErrAlreadyAssigned
		}

		prof, err := r.professionalInSession(sc, p.ProfessionalID)
		if err != nil {
			return err
		}
		if !prof.IsAvailable || prof.CurrentBooking != nil {
			return repository.ErrProfessionalUnavailable
		}
		if !prof.HasSpecialization(b.Category) {
			return repository.ErrCapabilityMismatch
		}

		// The filters re-assert the preconditions so a concurrent writer
		// that slipped between the reads and these updates cannot win twice.
		res, err := r.bookingColl.UpdateOne(sc,
			bson.M{
				"id":             bookingID,
				"status":         models.BookingPending,
				"professionalId": bson.M{"$in": bson.A{nil, ""}},
			},
			bson.M{"$set": bson.M{
				"professionalId":      p.ProfessionalID,
				"status":              models.BookingAccepted,
				"acceptedAt":          p.Now,
				"tracking.distanceKm": p.DistanceKm,
				"tracking.etaMinutes": p.ETAMinutes,
				"updatedAt":           p.Now,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to assign booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return repository.ErrAlreadyAssigned
		}

		res, err = r.professionalColl.UpdateOne(sc,
			bson.M{
				"id":             p.ProfessionalID,
				"isAvailable":    true,
				"currentBooking": nil,
			},
			bson.M{"$set": bson.M{
				"isAvailable": false,
				"currentBooking": models.BookingRef{
					BookingID:  bookingID,
					AcceptedAt: p.Now,
				},
				"updatedAt": p.Now,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to lock professional: %w", err)
		}
		if res.MatchedCount == 0 {
			return repository.ErrProfessionalUnavailable
		}

		b.ProfessionalID = p.ProfessionalID
		b.Status = models.BookingAccepted
		b.AcceptedAt = &p.Now
		b.Tracking.DistanceKm = p.DistanceKm
		b.Tracking.ETAMinutes = p.ETAMinutes
		b.UpdatedAt = p.Now
		accepted = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// Start moves accepted → in_progress and stamps the tracking start.
func (r *MongoBookingRepo) Start(ctx context.Context, bookingID, professionalID string, now time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.bookingColl.FindOneAndUpdate(ctx,
		bson.M{
			"id":             bookingID,
			"status":         models.BookingAccepted,
			"professionalId": professionalID,
		},
		bson.M{"$set": bson.M{
			"status":             models.BookingInProgress,
			"tracking.startedAt": now,
			"tracking.isActive":  true,
			"updatedAt":          now,
		}},
		findOneAndUpdateReturnAfter(),
	).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.classifyStartFailure(ctx, bookingID, professionalID)
		}
		return nil, fmt.Errorf("failed to start booking %s: %w", bookingID, err)
	}
	return &b, nil
}

// classifyStartFailure distinguishes not-found from wrong-state once the
// conditional update matched nothing.
func (r *MongoBookingRepo) classifyStartFailure(ctx context.Context, bookingID, professionalID string) error {
	b, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ProfessionalID != professionalID {
		return repository.ErrProfessionalUnavailable
	}
	return repository.ErrInvalidTransition
}

// Cancel terminalizes the booking and releases the professional lock in the
// same transaction when one was held.
func (r *MongoBookingRepo) Cancel(ctx context.Context, bookingID string, p CancelParams) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var cancelled *models.Booking
	err := r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		b, err := r.bookingInSession(sc, bookingID)
		if err != nil {
			return err
		}
		switch b.Status {
		case models.BookingPending, models.BookingAccepted, models.BookingInProgress:
		default:
			return repository.ErrInvalidTransition
		}

		update := bson.M{"$set": bson.M{
			"status":            models.BookingCancelled,
			"cancelledAt":       p.Now,
			"cancelledBy":       p.ActorID,
			"cancelReason":      p.Reason,
			"tracking.isActive": false,
			"paymentStatus":     models.PaymentVoided,
			"updatedAt":         p.Now,
		}}
		res, err := r.bookingColl.UpdateOne(sc,
			bson.M{"id": bookingID, "status": b.Status},
			update,
		)
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return repository.ErrInvalidTransition
		}

		if b.ProfessionalID != "" {
			if err := r.releaseProfessional(sc, b.ProfessionalID, bookingID, p.Now, false); err != nil {
				return err
			}
		}

		b.Status = models.BookingCancelled
		b.CancelledAt = &p.Now
		b.CancelledBy = p.ActorID
		b.CancelReason = p.Reason
		b.Tracking.IsActive = false
		b.PaymentStatus = models.PaymentVoided
		b.UpdatedAt = p.Now
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Complete terminalizes an in_progress booking: status, tracking
// deactivation, payment settlement and professional release land together.
func (r *MongoBookingRepo) Complete(ctx context.Context, bookingID string, totalAmount float64, now time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var completed *models.Booking
	err := r.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		b, err := r.bookingInSession(sc, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingInProgress {
			return repository.ErrInvalidTransition
		}

		serviceMins := 0
		if b.Tracking.StartedAt != nil {
			serviceMins = int(now.Sub(*b.Tracking.StartedAt).Minutes())
		}

		res, err := r.bookingColl.UpdateOne(sc,
			bson.M{"id": bookingID, "status": models.BookingInProgress},
			bson.M{"$set": bson.M{
				"status":                    models.BookingCompleted,
				"totalAmount":               totalAmount,
				"paymentStatus":             models.PaymentSettled,
				"tracking.isActive":         false,
				"tracking.endedAt":          now,
				"tracking.completedAt":      now,
				"tracking.totalServiceMins": serviceMins,
				"updatedAt":                 now,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to complete booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return repository.ErrInvalidTransition
		}

		if b.ProfessionalID != "" {
			if err := r.releaseProfessional(sc, b.ProfessionalID, bookingID, now, true); err != nil {
				return err
			}
		}

		b.Status = models.BookingCompleted
		b.TotalAmount = totalAmount
		b.PaymentStatus = models.PaymentSettled
		b.Tracking.IsActive = false
		b.Tracking.CompletedAt = &now
		b.Tracking.EndedAt = &now
		b.Tracking.TotalServiceMins = serviceMins
		b.UpdatedAt = now
		completed = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// releaseProfessional clears the single-owner lock. The filter pins the
// lock to this booking so a release can never free a lock acquired by a
// different booking.
func (r *MongoBookingRepo) releaseProfessional(sc mongo.SessionContext, professionalID, bookingID string, now time.Time, completedJob bool) error {
	update := bson.M{
		"$set": bson.M{
			"isAvailable":    true,
			"currentBooking": nil,
			"updatedAt":      now,
		},
	}
	if completedJob {
		update["$inc"] = bson.M{"completedJobs": 1}
	}
	_, err := r.professionalColl.UpdateOne(sc,
		bson.M{"id": professionalID, "currentBooking.bookingId": bookingID},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to release professional %s: %w", professionalID, err)
	}
	return nil
}
