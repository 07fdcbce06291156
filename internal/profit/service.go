package profit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
	"github.com/thehassans/sial-backend/pkg/logger"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service allocates investor profit on delivery and serves the finance
// read models for dropshippers and investors.
type Service interface {
	Distribute(ctx context.Context, tx *gorm.DB, order *models.Order)
	DropshipperSummary(ctx context.Context, dropshipperID uuid.UUID) (*DropshipperSummary, error)
	InvestorStats(ctx context.Context, investorID uuid.UUID) (*InvestorStats, error)
}

type service struct {
	repo  Repository
	users userFinder
	logg  *logger.Logger
}

// NewService wires the profit engine.
func NewService(repo Repository, users userFinder, logg *logger.Logger) Service {
	return &service{repo: repo, users: users, logg: logg}
}

const recentInvestorOrders = 10

// Distribute allocates the delivered order's profit to the oldest
// active investor of the owning workspace. It is deliberately
// best-effort: delivery must never fail because profit bookkeeping did,
// so every problem is logged and swallowed. Re-dispatch for an order
// that already carries an allocation is a no-op thanks to the
// conditional claim.
func (s *service) Distribute(ctx context.Context, tx *gorm.DB, order *models.Order) {
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())

	if order.InvestorID != nil {
		return
	}

	workspaceID, err := s.resolveWorkspace(ctx, order)
	if err != nil {
		s.logg.Error(logCtx, "profit.distribute.workspace_lookup_failed", err)
		return
	}
	if workspaceID == nil {
		return
	}

	repo := s.repo.WithTx(tx)

	investor, err := repo.FindOldestActiveInvestor(ctx, *workspaceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Error(logCtx, "profit.distribute.investor_lookup_failed", err)
		}
		return
	}

	percentage := investor.ProfitPercentage
	amount := order.Total.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
	if !amount.IsPositive() {
		return
	}

	claimed, err := repo.ClaimOrderProfit(ctx, order.ID, investor.ID, amount, percentage)
	if err != nil {
		s.logg.Error(logCtx, "profit.distribute.claim_failed", err)
		return
	}
	if !claimed {
		return
	}

	updated, err := repo.AddEarnedProfit(ctx, investor.ID, amount)
	if err != nil {
		s.logg.Error(logCtx, "profit.distribute.credit_failed", err)
		return
	}

	order.InvestorID = &investor.ID
	order.InvestorProfitAmount = &amount
	order.InvestorProfitPercentage = &percentage

	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"investor_id": investor.ID.String(),
		"amount":      amount.String(),
		"percentage":  percentage.String(),
	})
	s.logg.Info(logCtx, "profit.distributed")

	if updated.ProfitAmount.IsPositive() && updated.EarnedProfit.GreaterThanOrEqual(updated.ProfitAmount) {
		completed, err := repo.MarkInvestorCompleted(ctx, investor.ID, time.Now().UTC())
		if err != nil {
			s.logg.Error(logCtx, "profit.distribute.completion_failed", err)
			return
		}
		if completed {
			s.logg.Info(logCtx, "profit.investor_completed")
		}
	}
}

// resolveWorkspace walks from the order's creator up to the workspace
// owner account. Orders with no creator (anonymous storefront checkouts
// before assignment) have no workspace to allocate against.
func (s *service) resolveWorkspace(ctx context.Context, order *models.Order) (*uuid.UUID, error) {
	if order.CreatedBy == nil {
		return nil, nil
	}
	creator, err := s.users.FindByID(ctx, *order.CreatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if creator.Role == enums.UserRoleUser || creator.Role == enums.UserRoleAdmin {
		id := creator.ID
		return &id, nil
	}
	return creator.CreatedBy, nil
}

// DropshipperSummary is the dashboard aggregate for a dropshipper.
type DropshipperSummary struct {
	OrderCount   int64           `json:"orderCount"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
	PaidProfit   decimal.Decimal `json:"paidProfit"`
	UnpaidProfit decimal.Decimal `json:"unpaidProfit"`
}

func (s *service) DropshipperSummary(ctx context.Context, dropshipperID uuid.UUID) (*DropshipperSummary, error) {
	totals, err := s.repo.DropshipperTotals(ctx, dropshipperID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load dropshipper totals")
	}
	return &DropshipperSummary{
		OrderCount:   totals.OrderCount,
		TotalProfit:  totals.TotalProfit,
		PaidProfit:   totals.PaidProfit,
		UnpaidProfit: totals.UnpaidProfit,
	}, nil
}

// InvestorStats is the investor dashboard read model.
type InvestorStats struct {
	InvestorID       uuid.UUID             `json:"investorId"`
	Name             string                `json:"name"`
	Status           enums.InvestorStatus  `json:"status"`
	InvestmentAmount decimal.Decimal       `json:"investmentAmount"`
	ProfitPercentage decimal.Decimal       `json:"profitPercentage"`
	ProfitTarget     decimal.Decimal       `json:"profitTarget"`
	EarnedProfit     decimal.Decimal       `json:"earnedProfit"`
	TotalReturn      decimal.Decimal       `json:"totalReturn"`
	ProgressPercent  decimal.Decimal       `json:"progressPercent"`
	CompletedAt      *time.Time            `json:"completedAt,omitempty"`
	OrderCount       int64                 `json:"orderCount"`
	RecentOrders     []InvestorOrderRecord `json:"recentOrders"`
}

// InvestorOrderRecord is one credited order in the investor's history.
type InvestorOrderRecord struct {
	OrderID     uuid.UUID       `json:"orderId"`
	Total       decimal.Decimal `json:"total"`
	Profit      decimal.Decimal `json:"profit"`
	DeliveredAt *time.Time      `json:"deliveredAt,omitempty"`
}

func (s *service) InvestorStats(ctx context.Context, investorID uuid.UUID) (*InvestorStats, error) {
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

	stats, err := s.repo.InvestorOrderStats(ctx, investorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load investor stats")
	}
	recent, err := s.repo.ListInvestorOrders(ctx, investorID, recentInvestorOrders)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load investor orders")
	}

	progress := decimal.Zero
	if investor.ProfitAmount.IsPositive() {
		progress = investor.EarnedProfit.
			Div(investor.ProfitAmount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		if progress.GreaterThan(decimal.NewFromInt(100)) {
			progress = decimal.NewFromInt(100)
		}
	}

	result := &InvestorStats{
		InvestorID:       investor.ID,
		Name:             investor.Name,
		Status:           investor.InvestorStatus,
		InvestmentAmount: investor.InvestmentAmount,
		ProfitPercentage: investor.ProfitPercentage,
		ProfitTarget:     investor.ProfitAmount,
		EarnedProfit:     investor.EarnedProfit,
		TotalReturn:      investor.TotalReturn(),
		ProgressPercent:  progress,
		CompletedAt:      investor.CompletedAt,
		OrderCount:       stats.OrderCount,
		RecentOrders:     make([]InvestorOrderRecord, 0, len(recent)),
	}
	for _, order := range recent {
		record := InvestorOrderRecord{
			OrderID:     order.ID,
			Total:       order.Total,
			DeliveredAt: order.DeliveredAt,
		}
		if order.InvestorProfitAmount != nil {
			record.Profit = *order.InvestorProfitAmount
		}
		result.RecentOrders = append(result.RecentOrders, record)
	}
	return result, nil
}
