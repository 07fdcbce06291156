package controllers

import (
	"net/http"

	"github.com/thehassans/sial-backend/api/responses"
	"github.com/thehassans/sial-backend/api/validators"
	internalorders "github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/pkg/enums"
	"github.com/thehassans/sial-backend/pkg/logger"
)

type storefrontOrderRequest struct {
	CustomerName     string                                `json:"customerName" validate:"required"`
	CustomerPhone    string                                `json:"customerPhone" validate:"required"`
	PhoneCountryCode string                                `json:"phoneCountryCode"`
	Country          string                                `json:"country" validate:"required"`
	City             string                                `json:"city" validate:"required"`
	Area             string                                `json:"area"`
	Address          string                                `json:"address" validate:"required"`
	Details          string                                `json:"details"`
	Currency         string                                `json:"currency"`
	Items            []internalorders.CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type customerOrderRequest struct {
	PhoneCountryCode string                                `json:"phoneCountryCode"`
	Country          string                                `json:"country" validate:"required"`
	City             string                                `json:"city" validate:"required"`
	Area             string                                `json:"area"`
	Address          string                                `json:"address" validate:"required"`
	Details          string                                `json:"details"`
	Currency         string                                `json:"currency"`
	Items            []internalorders.CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// StorefrontCreateOrder handles anonymous storefront checkout. Customer
// identity comes from the submitted contact fields.
func StorefrontCreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storefrontOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			Source:           enums.OrderSourceStorefront,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			PhoneCountryCode: req.PhoneCountryCode,
			Country:          req.Country,
			City:             req.City,
			Area:             req.Area,
			Address:          req.Address,
			Details:          req.Details,
			Currency:         req.Currency,
			Items:            req.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CustomerCreateOrder handles checkout for a signed-in customer.
// Customer name and phone are derived from the account.
func CustomerCreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, _, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			Source:           enums.OrderSourceStorefront,
			CustomerID:       &customerID,
			PhoneCountryCode: req.PhoneCountryCode,
			Country:          req.Country,
			City:             req.City,
			Area:             req.Area,
			Address:          req.Address,
			Details:          req.Details,
			Currency:         req.Currency,
			Items:            req.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
