package serviceRepo

import (
	"context"

	"fixify/models"
)

// Repository is the read surface of the service catalog. The catalog
// itself is maintained by an external admin workflow.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}
