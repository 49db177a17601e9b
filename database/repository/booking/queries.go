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
	"go.mongodb.org/mongo-driver/mongo/options"
)

func findOneAndUpdateReturnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

var activeStatuses = bson.A{
	models.BookingPending,
	models.BookingAccepted,
	models.BookingInProgress,
}

func (r *MongoBookingRepo) findActive(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter["status"] = bson.M{"$in": activeStatuses}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var b models.Booking
	if err := r.bookingColl.FindOne(ctx, filter, opts).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch active booking: %w", err)
	}
	return &b, nil
}

// ActiveByCustomer returns the customer's most recent non-terminal booking.
func (r *MongoBookingRepo) ActiveByCustomer(ctx context.Context, customerID string) (*models.Booking, error) {
	return r.findActive(ctx, bson.M{"customerId": customerID})
}

// ActiveByProfessional returns the booking currently locking the professional.
func (r *MongoBookingRepo) ActiveByProfessional(ctx context.Context, professionalID string) (*models.Booking, error) {
	return r.findActive(ctx, bson.M{"professionalId": professionalID})
}

// PendingByCategories lists unassigned pending bookings whose category is in
// the given set, oldest first so long-waiting requests surface sooner.
func (r *MongoBookingRepo) PendingByCategories(ctx context.Context, categories []string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":         models.BookingPending,
		"professionalId": bson.M{"$in": bson.A{nil, ""}},
	}
	if len(categories) > 0 {
		filter["category"] = bson.M{"$in": categories}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode pending bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M, status models.BookingStatus) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)

	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// ListByCustomer returns a customer's booking history, optionally filtered
// by status.
func (r *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string, status models.BookingStatus) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"customerId": customerID}, status)
}

// ListByProfessional returns a professional's booking history, optionally
// filtered by status.
func (r *MongoBookingRepo) ListByProfessional(ctx context.Context, professionalID string, status models.BookingStatus) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"professionalId": professionalID}, status)
}
