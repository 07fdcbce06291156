package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

// Repository owns order persistence. WithTx returns a copy bound to the
// supplied transaction so services can compose multi-step writes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error)
	ListForExport(ctx context.Context, filters ListFilters, maxRows int) ([]models.Order, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, filters DriverListFilters, params pagination.Params) ([]models.Order, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountByDriver(ctx context.Context, driverIDs []uuid.UUID) (map[uuid.UUID]DriverOrderCounts, error)
}
