package professionalRepo

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

// MongoProfessionalRepo implements Repository on MongoDB.
type MongoProfessionalRepo struct {
	coll *mongo.Collection
}

func NewMongoProfessionalRepo() *MongoProfessionalRepo {
	return &MongoProfessionalRepo{coll: database.GetDatabase().Collection("professionals")}
}

func (r *MongoProfessionalRepo) Create(ctx context.Context, p *models.Professional) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert professional: %w", err)
	}
	return nil
}

func (r *MongoProfessionalRepo) GetByID(ctx context.Context, id string) (*models.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Professional
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch professional %s: %w", id, err)
	}
	return &p, nil
}

// UpdateLocation overwrites the live position and mirrors the point into
// the indexed locationGeo field.
func (r *MongoProfessionalRepo) UpdateLocation(ctx context.Context, id string, loc models.LiveLocation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"currentLocation": loc,
			"locationGeo":     loc.Point,
			"updatedAt":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update location for professional %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetAvailability flips the availability flag. It refuses to mark a
// professional available while a booking still holds the lock.
func (r *MongoProfessionalRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if available {
		filter["currentBooking"] = nil
	}
	res, err := r.coll.UpdateOne(ctx,
		filter,
		bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set availability for professional %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrProfessionalUnavailable
	}
	return nil
}
