package controllers

import (
	"net/http"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	internalorders "github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/internal/profit"
	"github.com/thehassans/sial-backend/pkg/enums"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

// DropshipperDashboard returns the profit aggregate for the calling
// dropshipper.
func DropshipperDashboard(svc profit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dropshipperID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.DropshipperSummary(r.Context(), dropshipperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// DropshipperFinances lists the caller's delivered orders carrying a
// profit share.
func DropshipperFinances(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dropshipperID, _, err := actorFromContext(r.Context())
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

		delivered := enums.ShipmentStatusDelivered
		filters := internalorders.ListFilters{
			CreatedBy:      &dropshipperID,
			ShipmentStatus: &delivered,
		}
		list, err := svc.List(r.Context(), filters, pagination.Params{Page: page, Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
