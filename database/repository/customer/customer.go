package customerRepo

import (
	"context"

	"fixify/models"
)

// Repository is the read surface the dispatch engine needs from customer
// records: delivery targets for codes and pushes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Customer, error)
}
