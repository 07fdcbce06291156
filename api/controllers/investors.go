package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	"github.com/thehassans/sial-backend/internal/investors"
	"github.com/thehassans/sial-backend/internal/profit"
	"github.com/thehassans/sial-backend/pkg/logger"
)

// CreateInvestor onboards an investor into the caller's workspace.
func CreateInvestor(svc investors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := workspaceFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req investors.CreateInvestorInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		investor, err := svc.Create(r.Context(), workspaceID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, investor)
	}
}

// ListInvestors returns the workspace investor roster.
func ListInvestors(svc investors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := workspaceFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		roster, err := svc.List(r.Context(), workspaceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}

// UpdateInvestor changes investor profile fields.
func UpdateInvestor(svc investors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := workspaceFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		investorID, err := parseUUIDParam(r, "investorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req investors.UpdateInvestorInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		investor, err := svc.Update(r.Context(), workspaceID, investorID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, investor)
	}
}

// PauseInvestor removes the investor from the profit rotation.
func PauseInvestor(svc investors.Service, logg *logger.Logger) http.HandlerFunc {
	return investorStatusHandler(svc.Pause, logg)
}

// ResumeInvestor returns a paused investor to the profit rotation.
func ResumeInvestor(svc investors.Service, logg *logger.Logger) http.HandlerFunc {
	return investorStatusHandler(svc.Resume, logg)
}

// InvestorStats returns the investor dashboard read model.
func InvestorStats(svc profit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		investorID, err := parseUUIDParam(r, "investorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.InvestorStats(r.Context(), investorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func investorStatusHandler(
	change func(ctx context.Context, workspaceID, investorID uuid.UUID) (*investors.InvestorResponse, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID, err := workspaceFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		investorID, err := parseUUIDParam(r, "investorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		investor, err := change(r.Context(), workspaceID, investorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, investor)
	}
}
