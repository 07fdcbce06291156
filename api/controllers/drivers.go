package controllers

import (
	"net/http"
	"strings"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	"github.com/thehassans/sial-backend/internal/drivers"
	"github.com/thehassans/sial-backend/pkg/logger"
)

// ListDrivers returns workspace drivers with their current workload,
// for the assignment picker.
func ListDrivers(svc drivers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := workspaceFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filters := drivers.Filters{
			Country: strings.TrimSpace(query.Get("country")),
			City:    strings.TrimSpace(query.Get("city")),
		}
		if query.Has("available") {
			available, err := validators.ParseQueryBool(r, "available", true)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.Available = &available
		}

		roster, err := svc.ListWorkspaceDrivers(r.Context(), workspaceID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}
