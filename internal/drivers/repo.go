package drivers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
)

// Filters narrows the workspace driver listing.
type Filters struct {
	Country   string
	City      string
	Available *bool
}

// Repository lists driver accounts for the assignment pickers.
type Repository interface {
	ListWorkspaceDrivers(ctx context.Context, workspaceID uuid.UUID, filters Filters) ([]models.User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListWorkspaceDrivers(ctx context.Context, workspaceID uuid.UUID, filters Filters) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Where("created_by = ?", workspaceID).
		Where("role = ?", enums.UserRoleDriver.String())
	if filters.Country != "" {
		query = query.Where("LOWER(country) = LOWER(?)", filters.Country)
	}
	if filters.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filters.City)
	}
	if filters.Available != nil {
		query = query.Where("available = ?", *filters.Available)
	}

	var found []models.User
	if err := query.Order("created_at ASC").Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}
