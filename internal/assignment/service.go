package assignment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AssignInput carries the actor making the assignment alongside the
// order and driver being joined.
type AssignInput struct {
	OrderID   uuid.UUID
	DriverID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// Service assigns drivers to orders under workspace, country and city
// rules.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*orders.OrderResponse, error)
}

type service struct {
	orders orders.Repository
	users  userFinder
	tx     txRunner
	logg   *logger.Logger
}

// NewService wires the assignment service.
func NewService(orderRepo orders.Repository, users userFinder, tx txRunner, logg *logger.Logger) Service {
	return &service{orders: orderRepo, users: users, tx: tx, logg: logg}
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*orders.OrderResponse, error) {
	var assigned *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
		}
		if order.ShipmentStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Cannot assign a driver to a finalized order")
		}

		driver, err := s.users.FindByID(ctx, input.DriverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load driver")
		}
		if driver.Role != enums.UserRoleDriver {
			return pkgerrors.New(pkgerrors.CodeValidation, "Selected user is not a driver")
		}

		actor, err := s.users.FindByID(ctx, input.ActorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "Actor account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load actor")
		}

		if err := canAssign(actor, driver, order); err != nil {
			return err
		}

		updates := map[string]any{
			"driver_id":  driver.ID,
			"updated_at": time.Now().UTC(),
		}
		if order.ShipmentStatus == enums.ShipmentStatusPending {
			updates["shipment_status"] = enums.ShipmentStatusAssigned.String()
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to assign driver")
		}

		order.DriverID = &driver.ID
		if status, ok := updates["shipment_status"].(string); ok {
			order.ShipmentStatus = enums.ShipmentStatus(status)
		}
		assigned = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, assigned.ID.String()),
		"driver_id", input.DriverID.String())
	s.logg.Info(logCtx, "order.driver_assigned")

	resp := orders.ToOrderResponse(*assigned)
	return &resp, nil
}

// canAssign applies the per-role assignment rules. It is pure so the
// rule table can be tested without storage.
func canAssign(actor, driver *models.User, order *models.Order) error {
	switch actor.Role {
	case enums.UserRoleAdmin:
		// Admins oversee every workspace.
	case enums.UserRoleUser:
		if driver.CreatedBy == nil || *driver.CreatedBy != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Driver belongs to another workspace")
		}
	case enums.UserRoleManager:
		if actor.CreatedBy == nil || driver.CreatedBy == nil || *actor.CreatedBy != *driver.CreatedBy {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Driver belongs to another workspace")
		}
		if actor.AssignedCountry != "" {
			if !strings.EqualFold(driver.Country, actor.AssignedCountry) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "Driver is outside your assigned country")
			}
			if order.Country != "" && !strings.EqualFold(order.Country, actor.AssignedCountry) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "Order is outside your assigned country")
			}
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "Role cannot assign drivers")
	}

	if order.City != "" && driver.City != "" && !strings.EqualFold(order.City, driver.City) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Driver city does not match the order city").
			WithDetails(map[string]any{
				"orderCity":  order.City,
				"driverCity": driver.City,
			})
	}
	return nil
}
