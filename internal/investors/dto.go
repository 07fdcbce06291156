package investors

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
)

// CreateInvestorInput is the payload for onboarding an investor into a
// workspace.
type CreateInvestorInput struct {
	Name             string          `json:"name" validate:"required"`
	Email            string          `json:"email" validate:"required,email"`
	Password         string          `json:"password" validate:"required,min=8"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	ProfitAmount     decimal.Decimal `json:"profitAmount"`
}

// UpdateInvestorInput carries the tunable investor profile fields. Nil
// fields are left untouched.
type UpdateInvestorInput struct {
	Name             *string          `json:"name"`
	InvestmentAmount *decimal.Decimal `json:"investmentAmount"`
	ProfitPercentage *decimal.Decimal `json:"profitPercentage"`
	ProfitAmount     *decimal.Decimal `json:"profitAmount"`
}

// InvestorResponse is the API projection of an investor account.
type InvestorResponse struct {
	ID               uuid.UUID            `json:"id"`
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Status           enums.InvestorStatus `json:"status"`
	InvestmentAmount decimal.Decimal      `json:"investmentAmount"`
	ProfitPercentage decimal.Decimal      `json:"profitPercentage"`
	ProfitAmount     decimal.Decimal      `json:"profitAmount"`
	EarnedProfit     decimal.Decimal      `json:"earnedProfit"`
	TotalReturn      decimal.Decimal      `json:"totalReturn"`
	CompletedAt      *time.Time           `json:"completedAt,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// ToInvestorResponse maps the stored account to its API projection.
func ToInvestorResponse(user models.User) InvestorResponse {
	return InvestorResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Status:           user.InvestorStatus,
		InvestmentAmount: user.InvestmentAmount,
		ProfitPercentage: user.ProfitPercentage,
		ProfitAmount:     user.ProfitAmount,
		EarnedProfit:     user.EarnedProfit,
		TotalReturn:      user.TotalReturn(),
		CompletedAt:      user.CompletedAt,
		CreatedAt:        user.CreatedAt,
	}
}
