package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
)

// CreateOrderItemInput is one requested cart line. Quantity is clamped
// to at least one before pricing.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Qty       int       `json:"qty"`
}

// CreateOrderInput carries everything needed to price and persist a new
// order. Actor fields are empty for anonymous storefront checkouts.
type CreateOrderInput struct {
	Source            enums.OrderSource
	ActorID           *uuid.UUID
	ActorRole         enums.UserRole
	CustomerID        *uuid.UUID
	CustomerName      string
	CustomerPhone     string
	PhoneCountryCode  string
	Country           string
	City              string
	Area              string
	Address           string
	Details           string
	Currency          string
	Items             []CreateOrderItemInput
	DropshipperProfit *decimal.Decimal
}

// ListFilters narrows operator-facing order listings and exports.
type ListFilters struct {
	Search         string
	Status         *enums.OrderStatus
	ShipmentStatus *enums.ShipmentStatus
	Source         *enums.OrderSource
	Country        string
	City           string
	DriverID       *uuid.UUID
	ProductID      *uuid.UUID
	Unassigned     bool
	CreatedBy      *uuid.UUID
	CustomerID     *uuid.UUID
	From           *time.Time
	To             *time.Time
}

// DriverListFilters narrows the driver portal listing.
type DriverListFilters struct {
	ShipmentStatus *enums.ShipmentStatus
}

// DriverOrderCounts aggregates per-driver workload for listings.
type DriverOrderCounts struct {
	Assigned  int64 `json:"assigned"`
	Delivered int64 `json:"delivered"`
}

// UpdateStatusInput captures an operator status PATCH. Either field may be
// provided on its own; shipment changes run through the transition machine
// while a lone processing status is applied directly.
type UpdateStatusInput struct {
	OrderID        uuid.UUID
	Status         *enums.OrderStatus
	ShipmentStatus *enums.ShipmentStatus
	ActorID        uuid.UUID
	ActorRole      enums.UserRole
}

// DriverTransitionInput captures a driver-initiated shipment-status change.
type DriverTransitionInput struct {
	OrderID  uuid.UUID
	DriverID uuid.UUID
	Status   enums.ShipmentStatus
}

// OrderItemResponse is the priced line item as it was captured at
// creation time.
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderResponse is the API projection of an order.
type OrderResponse struct {
	ID                uuid.UUID            `json:"id"`
	Source            enums.OrderSource    `json:"source"`
	Status            enums.OrderStatus    `json:"status"`
	ShipmentStatus    enums.ShipmentStatus `json:"shipmentStatus"`
	CustomerName      string               `json:"customerName"`
	CustomerPhone     string               `json:"customerPhone"`
	PhoneCountryCode  string               `json:"phoneCountryCode,omitempty"`
	Country           string               `json:"country"`
	City              string               `json:"city"`
	Area              string               `json:"area,omitempty"`
	Address           string               `json:"address,omitempty"`
	Details           string               `json:"details,omitempty"`
	Currency          string               `json:"currency"`
	Total             decimal.Decimal      `json:"total"`
	DriverID          *uuid.UUID           `json:"driverId,omitempty"`
	CreatedBy         *uuid.UUID           `json:"createdBy,omitempty"`
	CustomerID        *uuid.UUID           `json:"customerId,omitempty"`
	DropshipperProfit *ProfitShareResponse `json:"dropshipperProfit,omitempty"`
	InvestorProfit    *InvestorShareView   `json:"investorProfit,omitempty"`
	DeliveredAt       *time.Time           `json:"deliveredAt,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	Items             []OrderItemResponse  `json:"items"`
}

// ProfitShareResponse is the dropshipper margin captured on the order.
type ProfitShareResponse struct {
	Amount decimal.Decimal `json:"amount"`
	IsPaid bool            `json:"isPaid"`
}

// InvestorShareView is the investor allocation captured on the order.
type InvestorShareView struct {
	InvestorID uuid.UUID       `json:"investorId"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ListResult is one page of orders plus pagination metadata.
type ListResult struct {
	Orders  []OrderResponse `json:"orders"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int64           `json:"total"`
	HasMore bool            `json:"hasMore"`
}

// ToOrderResponse maps the stored order to its API projection.
func ToOrderResponse(order models.Order) OrderResponse {
	resp := OrderResponse{
		ID:               order.ID,
		Source:           order.Source,
		Status:           order.Status,
		ShipmentStatus:   order.ShipmentStatus,
		CustomerName:     order.CustomerName,
		CustomerPhone:    order.CustomerPhone,
		PhoneCountryCode: order.PhoneCountryCode,
		Country:          order.Country,
		City:             order.City,
		Area:             order.Area,
		Address:          order.Address,
		Details:          order.Details,
		Currency:         order.Currency,
		Total:            order.Total,
		DriverID:         order.DriverID,
		CreatedBy:        order.CreatedBy,
		CustomerID:       order.CustomerID,
		DeliveredAt:      order.DeliveredAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Items:            make([]OrderItemResponse, 0, len(order.Items)),
	}
	if order.DropshipperProfit != nil {
		resp.DropshipperProfit = &ProfitShareResponse{
			Amount: *order.DropshipperProfit,
			IsPaid: order.DropshipperProfitPaid,
		}
	}
	if order.InvestorID != nil && order.InvestorProfitAmount != nil && order.InvestorProfitPercentage != nil {
		resp.InvestorProfit = &InvestorShareView{
			InvestorID: *order.InvestorID,
			Amount:     *order.InvestorProfitAmount,
			Percentage: *order.InvestorProfitPercentage,
		}
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			LineTotal: item.LineTotal,
		})
	}
	return resp
}

// ToListResult maps a page of stored orders into the list envelope.
func ToListResult(orders []models.Order, page, limit int, total int64, hasMore bool) *ListResult {
	result := &ListResult{
		Orders:  make([]OrderResponse, 0, len(orders)),
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: hasMore,
	}
	for _, order := range orders {
		result.Orders = append(result.Orders, ToOrderResponse(order))
	}
	return result
}
