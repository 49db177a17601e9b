package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixify/database"
	"fixify/database/repository"
	"fixify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements Repository on MongoDB. It holds both the
// booking and professional collections because the lifecycle transactions
// span the two.
type MongoBookingRepo struct {
	bookingColl      *mongo.Collection
	professionalColl *mongo.Collection
}

// NewMongoBookingRepo returns a booking repository over the shared database.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.GetDatabase()
	return &MongoBookingRepo{
		bookingColl:      db.Collection("bookings"),
		professionalColl: db.Collection("professionals"),
	}
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.bookingColl.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) UpdateTracking(ctx context.Context, bookingID string, t models.Tracking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.bookingColl.UpdateOne(ctx,
		bson.M{"id": bookingID},
		bson.M{"$set": bson.M{"tracking": t, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update tracking for booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepo) SetVerification(ctx context.Context, bookingID string, v *models.VerificationSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.bookingColl.UpdateOne(ctx,
		bson.M{"id": bookingID},
		bson.M{"$set": bson.M{"verification": v, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set verification for booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// IncrementVerificationAttempts bumps the attempt counter and returns the
// new value. The per-document write ordering of MongoDB serializes
// concurrent bumps on the same booking.
func (r *MongoBookingRepo) IncrementVerificationAttempts(ctx context.Context, bookingID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var updated models.Booking
	err := r.bookingColl.FindOneAndUpdate(ctx,
		bson.M{"id": bookingID, "verification": bson.M{"$ne": nil}},
		bson.M{
			"$inc": bson.M{"verification.attempts": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		findOneAndUpdateReturnAfter(),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment verification attempts: %w", err)
	}
	if updated.Verification == nil {
		return 0, repository.ErrNotFound
	}
	return updated.Verification.Attempts, nil
}

func (r *MongoBookingRepo) AppendCharge(ctx context.Context, bookingID string, charge models.AdditionalCharge, newTotal float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.bookingColl.UpdateOne(ctx,
		bson.M{"id": bookingID, "status": models.BookingInProgress},
		bson.M{
			"$push": bson.M{"additionalCharges": charge},
			"$set":  bson.M{"totalAmount": newTotal, "updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append charge to booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrInvalidTransition
	}
	return nil
}
