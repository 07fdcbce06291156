package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	"github.com/thehassans/sial-backend/internal/assignment"
	internalorders "github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

type createOrderRequest struct {
	CustomerName      string                                `json:"customerName"`
	CustomerPhone     string                                `json:"customerPhone"`
	PhoneCountryCode  string                                `json:"phoneCountryCode"`
	Country           string                                `json:"country" validate:"required"`
	City              string                                `json:"city" validate:"required"`
	Area              string                                `json:"area"`
	Address           string                                `json:"address" validate:"required"`
	Details           string                                `json:"details"`
	Currency          string                                `json:"currency"`
	Items             []internalorders.CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
	DropshipperProfit *decimal.Decimal                      `json:"dropshipperProfit"`
}

type updateOrderStatusRequest struct {
	Status         *string `json:"status"`
	ShipmentStatus *string `json:"shipmentStatus"`
}

type assignDriverRequest struct {
	DriverID uuid.UUID `json:"driverId" validate:"required"`
}

// CreateOrder handles operator-side order creation.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			Source:            enums.OrderSourceInHouse,
			ActorID:           &actorID,
			ActorRole:         role,
			CustomerName:      req.CustomerName,
			CustomerPhone:     req.CustomerPhone,
			PhoneCountryCode:  req.PhoneCountryCode,
			Country:           req.Country,
			City:              req.City,
			Area:              req.Area,
			Address:           req.Address,
			Details:           req.Details,
			Currency:          req.Currency,
			Items:             req.Items,
			DropshipperProfit: req.DropshipperProfit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the workspace-scoped order listing with filters.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, params, err := orderFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scopeOrderFilters(&filters, actorID, role)

		list, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order with its priced line items.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ExportOrders streams the filtered listing as CSV.
func ExportOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, _, err := orderFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scopeOrderFilters(&filters, actorID, role)

		filename := "orders-" + time.Now().UTC().Format("20060102-150405") + ".csv"
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := svc.Export(r.Context(), w, filters); err != nil {
			// Headers may already be on the wire; log instead of
			// rewriting the response as JSON.
			logg.Error(r.Context(), "orders.export.failed", err)
		}
	}
}

// UpdateOrderStatus handles the operator shipment-status PATCH.
func UpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalorders.UpdateStatusInput{
			OrderID:   orderID,
			ActorID:   actorID,
			ActorRole: role,
		}
		if req.Status != nil {
			status, err := enums.ParseOrderStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if req.ShipmentStatus != nil {
			status, err := enums.ParseShipmentStatus(*req.ShipmentStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status"))
				return
			}
			input.ShipmentStatus = &status
		}

		order, err := svc.UpdateStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AssignDriver joins a driver to an order under the workspace rules.
func AssignDriver(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignDriverRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Assign(r.Context(), assignment.AssignInput{
			OrderID:   orderID,
			DriverID:  req.DriverID,
			ActorID:   actorID,
			ActorRole: role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderFiltersFromQuery(r *http.Request) (internalorders.ListFilters, pagination.Params, error) {
	var filters internalorders.ListFilters
	var params pagination.Params

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return filters, params, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return filters, params, err
	}
	params = pagination.Params{Page: page, Limit: limit}

	query := r.URL.Query()
	filters.Search = strings.TrimSpace(query.Get("search"))
	filters.Country = strings.TrimSpace(query.Get("country"))
	filters.City = strings.TrimSpace(query.Get("city"))

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("shipmentStatus")); raw != "" {
		status, err := enums.ParseShipmentStatus(raw)
		if err != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status filter")
		}
		filters.ShipmentStatus = &status
	}
	if raw := strings.TrimSpace(query.Get("source")); raw != "" {
		source, err := enums.ParseOrderSource(raw)
		if err != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source filter")
		}
		filters.Source = &source
	}
	if raw := strings.TrimSpace(query.Get("driverId")); raw != "" {
		driverID, err := uuid.Parse(raw)
		if err != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid driverId filter")
		}
		filters.DriverID = &driverID
	}
	if raw := strings.TrimSpace(query.Get("productId")); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid productId filter")
		}
		filters.ProductID = &productID
	}
	unassigned, err := validators.ParseQueryBool(r, "unassigned", false)
	if err != nil {
		return filters, params, err
	}
	filters.Unassigned = unassigned

	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return filters, params, err
	}
	filters.From = from
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return filters, params, err
	}
	filters.To = to

	return filters, params, nil
}

// scopeOrderFilters narrows a listing to what the actor is allowed to
// see. Dropshippers only ever see their own orders; owner, manager and
// admin roles see the full listing.
func scopeOrderFilters(filters *internalorders.ListFilters, actorID uuid.UUID, role enums.UserRole) {
	if role == enums.UserRoleDropshipper {
		id := actorID
		filters.CreatedBy = &id
	}
}
