package drivers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/db/models"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
)

// DriverResponse is one workspace driver with their current workload.
type DriverResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Available bool      `json:"available"`
	Assigned  int64     `json:"assignedOrders"`
	Delivered int64     `json:"deliveredOrders"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service lists workspace drivers for assignment pickers.
type Service interface {
	ListWorkspaceDrivers(ctx context.Context, workspaceID uuid.UUID, filters Filters) ([]DriverResponse, error)
}

type service struct {
	repo   Repository
	orders orders.Repository
}

// NewService wires the driver listing service.
func NewService(repo Repository, orderRepo orders.Repository) Service {
	return &service{repo: repo, orders: orderRepo}
}

func (s *service) ListWorkspaceDrivers(ctx context.Context, workspaceID uuid.UUID, filters Filters) ([]DriverResponse, error) {
	found, err := s.repo.ListWorkspaceDrivers(ctx, workspaceID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list drivers")
	}

	ids := make([]uuid.UUID, 0, len(found))
	for _, driver := range found {
		ids = append(ids, driver.ID)
	}
	counts, err := s.orders.CountByDriver(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count driver orders")
	}

	result := make([]DriverResponse, 0, len(found))
	for _, driver := range found {
		result = append(result, toDriverResponse(driver, counts[driver.ID]))
	}
	return result, nil
}

func toDriverResponse(driver models.User, counts orders.DriverOrderCounts) DriverResponse {
	return DriverResponse{
		ID:        driver.ID,
		Name:      driver.Name,
		Email:     driver.Email,
		Phone:     driver.Phone,
		Country:   driver.Country,
		City:      driver.City,
		Available: driver.Available,
		Assigned:  counts.Assigned,
		Delivered: counts.Delivered,
		CreatedAt: driver.CreatedAt,
	}
}
