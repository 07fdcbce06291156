package investors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/internal/users"
	"github.com/thehassans/sial-backend/pkg/config"
	"github.com/thehassans/sial-backend/pkg/db"
	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/security"
)

// Service manages investor accounts inside a workspace.
type Service interface {
	Create(ctx context.Context, workspaceID uuid.UUID, input CreateInvestorInput) (*InvestorResponse, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]InvestorResponse, error)
	Update(ctx context.Context, workspaceID, investorID uuid.UUID, input UpdateInvestorInput) (*InvestorResponse, error)
	Pause(ctx context.Context, workspaceID, investorID uuid.UUID) (*InvestorResponse, error)
	Resume(ctx context.Context, workspaceID, investorID uuid.UUID) (*InvestorResponse, error)
}

type service struct {
	users       users.Repository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService wires the investor management service.
func NewService(userRepo users.Repository, passwordCfg config.PasswordConfig, logg *logger.Logger) Service {
	return &service{users: userRepo, passwordCfg: passwordCfg, logg: logg}
}

var percentCeiling = decimal.NewFromInt(100)

func (s *service) Create(ctx context.Context, workspaceID uuid.UUID, input CreateInvestorInput) (*InvestorResponse, error) {
	if err := validateProfile(input.InvestmentAmount, input.ProfitPercentage, input.ProfitAmount); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}

	workspace := workspaceID
	investor := &models.User{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(input.Name),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:     hash,
		Role:             enums.UserRoleInvestor,
		CreatedBy:        &workspace,
		InvestorStatus:   enums.InvestorStatusActive,
		InvestmentAmount: input.InvestmentAmount.Round(2),
		ProfitPercentage: input.ProfitPercentage.Round(2),
		ProfitAmount:     input.ProfitAmount.Round(2),
		EarnedProfit:     decimal.Zero,
	}

	if err := s.users.Create(ctx, investor); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "An account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create investor")
	}

	s.logg.Info(s.logg.WithField(ctx, "investor_id", investor.ID.String()), "investor.created")

	resp := ToInvestorResponse(*investor)
	return &resp, nil
}

func (s *service) List(ctx context.Context, workspaceID uuid.UUID) ([]InvestorResponse, error) {
	found, err := s.users.ListByWorkspaceAndRole(ctx, workspaceID, enums.UserRoleInvestor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list investors")
	}
	result := make([]InvestorResponse, 0, len(found))
	for _, investor := range found {
		result = append(result, ToInvestorResponse(investor))
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, workspaceID, investorID uuid.UUID, input UpdateInvestorInput) (*InvestorResponse, error) {
	investor, err := s.findWorkspaceInvestor(ctx, workspaceID, investorID)
	if err != nil {
		return nil, err
	}
	if investor.InvestorStatus == enums.InvestorStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Completed investors cannot be changed")
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name cannot be empty")
		}
		updates["name"] = name
		investor.Name = name
	}
	if input.InvestmentAmount != nil {
		investor.InvestmentAmount = input.InvestmentAmount.Round(2)
		updates["investment_amount"] = investor.InvestmentAmount
	}
	if input.ProfitPercentage != nil {
		investor.ProfitPercentage = input.ProfitPercentage.Round(2)
		updates["profit_percentage"] = investor.ProfitPercentage
	}
	if input.ProfitAmount != nil {
		investor.ProfitAmount = input.ProfitAmount.Round(2)
		updates["profit_amount"] = investor.ProfitAmount
	}
	if err := validateProfile(investor.InvestmentAmount, investor.ProfitPercentage, investor.ProfitAmount); err != nil {
		return nil, err
	}
	if len(updates) == 1 {
		resp := ToInvestorResponse(*investor)
		return &resp, nil
	}

	if err := s.users.Update(ctx, investor.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update investor")
	}

	resp := ToInvestorResponse(*investor)
	return &resp, nil
}

func (s *service) Pause(ctx context.Context, workspaceID, investorID uuid.UUID) (*InvestorResponse, error) {
	return s.setStatus(ctx, workspaceID, investorID, enums.InvestorStatusPaused)
}

func (s *service) Resume(ctx context.Context, workspaceID, investorID uuid.UUID) (*InvestorResponse, error) {
	return s.setStatus(ctx, workspaceID, investorID, enums.InvestorStatusActive)
}

func (s *service) setStatus(ctx context.Context, workspaceID, investorID uuid.UUID, next enums.InvestorStatus) (*InvestorResponse, error) {
	investor, err := s.findWorkspaceInvestor(ctx, workspaceID, investorID)
	if err != nil {
		return nil, err
	}
	// Completed is terminal: a funded-out investor never re-enters the
	// rotation.
	if investor.InvestorStatus == enums.InvestorStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Completed investors cannot be changed")
	}
	if investor.InvestorStatus != next {
		err := s.users.Update(ctx, investor.ID, map[string]any{
			"investor_status": next.String(),
			"updated_at":      time.Now().UTC(),
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update investor status")
		}
		investor.InvestorStatus = next
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"investor_id": investor.ID.String(),
			"status":      next.String(),
		}), "investor.status_changed")
	}
	resp := ToInvestorResponse(*investor)
	return &resp, nil
}

func (s *service) findWorkspaceInvestor(ctx context.Context, workspaceID, investorID uuid.UUID) (*models.User, error) {
	investor, err := s.users.FindByID(ctx, investorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Investor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load investor")
	}
	if investor.Role != enums.UserRoleInvestor {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Investor not found")
	}
	if investor.CreatedBy == nil || *investor.CreatedBy != workspaceID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Investor belongs to another workspace")
	}
	return investor, nil
}

func validateProfile(investment, percentage, target decimal.Decimal) error {
	if investment.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Investment amount cannot be negative")
	}
	if percentage.IsNegative() || percentage.GreaterThan(percentCeiling) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Profit percentage must be between 0 and 100")
	}
	if target.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Profit target cannot be negative")
	}
	return nil
}
