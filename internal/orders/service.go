package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/internal/catalog"
	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// profitDistributor allocates investor profit when an order is
// delivered. Implementations must be non-fatal: allocation problems are
// logged, never surfaced to the transition.
type profitDistributor interface {
	Distribute(ctx context.Context, tx *gorm.DB, order *models.Order)
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderResponse, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, filters DriverListFilters, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderResponse, error)
	DriverTransition(ctx context.Context, input DriverTransitionInput) (*OrderResponse, error)
	Export(ctx context.Context, w io.Writer, filters ListFilters) error
}

type service struct {
	repo          Repository
	catalog       catalog.Repository
	users         userFinder
	tx            txRunner
	profit        profitDistributor
	logg          *logger.Logger
	maxExportRows int
}

// NewService wires the order service with its collaborators.
func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	users userFinder,
	tx txRunner,
	profit profitDistributor,
	logg *logger.Logger,
	maxExportRows int,
) Service {
	return &service{
		repo:          repo,
		catalog:       catalogRepo,
		users:         users,
		tx:            tx,
		profit:        profit,
		logg:          logg,
		maxExportRows: maxExportRows,
	}
}

const maxItemQty = 1000

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderResponse, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}
	if !input.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid order source")
	}

	if input.CustomerID != nil && (input.CustomerName == "" || input.CustomerPhone == "") {
		customer, err := s.users.FindByID(ctx, *input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Customer account not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load customer")
		}
		if input.CustomerName == "" {
			input.CustomerName = customer.Name
		}
		if input.CustomerPhone == "" {
			input.CustomerPhone = customer.Phone
		}
	}

	if err := validateDelivery(input); err != nil {
		return nil, err
	}

	lines := mergeItems(input.Items)
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.catalog.FindVisibleByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "One or more products are not available").
				WithDetails(map[string]any{"productId": line.ProductID.String()})
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" || !enums.Currency(currency).IsValid() {
		currency = enums.CurrencyDefault.String()
	}

	order := &models.Order{
		ID:               uuid.New(),
		Source:           input.Source,
		Status:           enums.OrderStatusNew,
		ShipmentStatus:   enums.ShipmentStatusPending,
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
		PhoneCountryCode: strings.TrimSpace(input.PhoneCountryCode),
		Country:          strings.TrimSpace(input.Country),
		City:             strings.TrimSpace(input.City),
		Area:             strings.TrimSpace(input.Area),
		Address:          strings.TrimSpace(input.Address),
		Details:          strings.TrimSpace(input.Details),
		Currency:         currency,
		CustomerID:       input.CustomerID,
		CreatedBy:        input.ActorID,
	}

	total := decimal.Zero
	for _, line := range lines {
		product := byID[line.ProductID]
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Qty:       line.Qty,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.Total = total

	if input.ActorRole == enums.UserRoleDropshipper && input.DropshipperProfit != nil {
		if input.DropshipperProfit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Dropshipper profit cannot be negative")
		}
		amount := input.DropshipperProfit.Round(2)
		order.DropshipperProfit = &amount
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create order")
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"source": order.Source.String(),
		"total":  order.Total.String(),
		"items":  len(order.Items),
	})
	s.logg.Info(logCtx, "order.created")

	resp := ToOrderResponse(*order)
	return &resp, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}
	resp := ToOrderResponse(*order)
	return &resp, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	params = params.Normalize()
	found, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list orders")
	}
	return ToListResult(found, params.Page, params.Limit, total, pagination.HasMore(total, params)), nil
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID, filters DriverListFilters, params pagination.Params) (*ListResult, error) {
	params = params.Normalize()
	found, total, err := s.repo.ListByDriver(ctx, driverID, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list driver orders")
	}
	return ToListResult(found, params.Page, params.Limit, total, pagination.HasMore(total, params)), nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderResponse, error) {
	if input.Status == nil && input.ShipmentStatus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No status changes requested")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid order status %q", *input.Status))
	}

	if input.ShipmentStatus != nil {
		return s.transition(ctx, input.OrderID, *input.ShipmentStatus, input.Status, func(order *models.Order) error {
			// Operators may set any non-terminal order to any valid state,
			// including corrections backwards and direct side exits.
			return nil
		})
	}

	return s.updateProcessingStatus(ctx, input.OrderID, *input.Status)
}

// updateProcessingStatus applies a lone back-office status change without
// touching the shipment machine.
func (s *service) updateProcessingStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}

	if order.Status != status {
		now := time.Now().UTC()
		updates := map[string]any{
			"status":     status.String(),
			"updated_at": now,
		}
		if err := s.repo.Update(ctx, order.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update order status")
		}
		order.Status = status
		order.UpdatedAt = now

		logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, order.ID.String()), "status", status.String())
		s.logg.Info(logCtx, "order.status.changed")
	}

	resp := ToOrderResponse(*order)
	return &resp, nil
}

func (s *service) DriverTransition(ctx context.Context, input DriverTransitionInput) (*OrderResponse, error) {
	return s.transition(ctx, input.OrderID, input.Status, nil, func(order *models.Order) error {
		if order.DriverID == nil || *order.DriverID != input.DriverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Order is not assigned to you")
		}
		if input.Status == enums.ShipmentStatusCancelled || input.Status == enums.ShipmentStatusReturned {
			return nil
		}
		if input.Status.Rank() <= order.ShipmentStatus.Rank() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot move shipment from %s back to %s", order.ShipmentStatus, input.Status))
		}
		return nil
	})
}

// transition is the single writer for shipment status. Both the
// operator and driver paths funnel through it so the delivered side
// effects fire exactly once.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, next enums.ShipmentStatus, statusOverride *enums.OrderStatus, guard func(order *models.Order) error) (*OrderResponse, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid shipment status %q", next))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
		}

		if order.ShipmentStatus == next {
			updated = order
			return nil
		}
		if order.ShipmentStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Shipment already finalized as %s", order.ShipmentStatus))
		}
		if err := guard(order); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"shipment_status": next.String(),
			"updated_at":      now,
		}
		switch next {
		case enums.ShipmentStatusDelivered:
			updates["status"] = enums.OrderStatusDone.String()
			updates["delivered_at"] = now
		case enums.ShipmentStatusCancelled, enums.ShipmentStatusReturned:
			updates["status"] = enums.OrderStatusCancelled.String()
		default:
			// Delivery side effects win over an explicit status; a plain
			// forward move honors the caller's status when given.
			if statusOverride != nil {
				updates["status"] = statusOverride.String()
			} else if order.Status == enums.OrderStatusNew {
				updates["status"] = enums.OrderStatusProcessing.String()
			}
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update shipment status")
		}

		order.ShipmentStatus = next
		if status, ok := updates["status"].(string); ok {
			order.Status = enums.OrderStatus(status)
		}
		if next == enums.ShipmentStatusDelivered {
			order.DeliveredAt = &now
			s.profit.Distribute(ctx, tx, order)
		}
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, updated.ID.String()),
		"shipment_status", updated.ShipmentStatus.String())
	s.logg.Info(logCtx, "order.shipment_status.changed")

	resp := ToOrderResponse(*updated)
	return &resp, nil
}

func validateDelivery(input CreateOrderInput) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(input.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		missing = append(missing, "customerPhone")
	}
	if strings.TrimSpace(input.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(input.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(input.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required delivery fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

// mergeItems collapses duplicate product lines and clamps quantities
// into a sane range, preserving first-seen order.
func mergeItems(items []CreateOrderItemInput) []CreateOrderItemInput {
	merged := make([]CreateOrderItemInput, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		if qty > maxItemQty {
			qty = maxItemQty
		}
		if at, ok := index[item.ProductID]; ok {
			merged[at].Qty += qty
			if merged[at].Qty > maxItemQty {
				merged[at].Qty = maxItemQty
			}
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, CreateOrderItemInput{ProductID: item.ProductID, Qty: qty})
	}
	return merged
}
