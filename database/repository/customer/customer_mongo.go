package customerRepo

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

// MongoCustomerRepo implements Repository on MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

func NewMongoCustomerRepo() *MongoCustomerRepo {
	return &MongoCustomerRepo{coll: database.GetDatabase().Collection("customers")}
}

func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Customer
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", id, err)
	}
	return &c, nil
}
