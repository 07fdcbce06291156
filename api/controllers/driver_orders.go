package controllers

import (
	"net/http"
	"strings"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	internalorders "github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

type driverStatusRequest struct {
	ShipmentStatus string `json:"shipmentStatus" validate:"required"`
}

// DriverOrders returns the paginated list of orders assigned to the
// calling driver.
func DriverOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters internalorders.DriverListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("shipmentStatus")); raw != "" {
			status, err := enums.ParseShipmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status filter"))
				return
			}
			filters.ShipmentStatus = &status
		}

		list, err := svc.ListForDriver(r.Context(), driverID, filters, pagination.Params{Page: page, Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DriverOrderStatus lets a driver advance the shipment status of an
// order assigned to them.
func DriverOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req driverStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseShipmentStatus(req.ShipmentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status"))
			return
		}

		order, err := svc.DriverTransition(r.Context(), internalorders.DriverTransitionInput{
			OrderID:  orderID,
			DriverID: driverID,
			Status:   status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
