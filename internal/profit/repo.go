package profit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
)

// Repository owns the profit-side storage primitives. ClaimOrderProfit
// and AddEarnedProfit are the concurrency-critical pieces: both are
// single-statement conditional or atomic updates so concurrent delivery
// paths cannot double-allocate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOldestActiveInvestor(ctx context.Context, workspaceID uuid.UUID) (*models.User, error)
	ClaimOrderProfit(ctx context.Context, orderID, investorID uuid.UUID, amount, percentage decimal.Decimal) (bool, error)
	AddEarnedProfit(ctx context.Context, investorID uuid.UUID, amount decimal.Decimal) (*models.User, error)
	MarkInvestorCompleted(ctx context.Context, investorID uuid.UUID, at time.Time) (bool, error)

	DropshipperTotals(ctx context.Context, dropshipperID uuid.UUID) (Totals, error)
	InvestorOrderStats(ctx context.Context, investorID uuid.UUID) (OrderStats, error)
	ListInvestorOrders(ctx context.Context, investorID uuid.UUID, limit int) ([]models.Order, error)
}

// Totals aggregates a dropshipper's margin across delivered orders.
type Totals struct {
	OrderCount   int64
	TotalProfit  decimal.Decimal
	PaidProfit   decimal.Decimal
	UnpaidProfit decimal.Decimal
}

// OrderStats aggregates the orders credited to a single investor.
type OrderStats struct {
	OrderCount  int64
	TotalProfit decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindOldestActiveInvestor(ctx context.Context, workspaceID uuid.UUID) (*models.User, error) {
	var investor models.User
	err := r.db.WithContext(ctx).
		Where("created_by = ?", workspaceID).
		Where("role = ?", enums.UserRoleInvestor.String()).
		Where("investor_status = ?", enums.InvestorStatusActive.String()).
		Order("created_at ASC").
		First(&investor).Error
	if err != nil {
		return nil, err
	}
	return &investor, nil
}

// ClaimOrderProfit stamps the investor allocation onto the order only
// if nothing has claimed it yet. Returns false when another path won.
func (r *repository) ClaimOrderProfit(ctx context.Context, orderID, investorID uuid.UUID, amount, percentage decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("investor_id IS NULL").
		Updates(map[string]any{
			"investor_id":                investorID,
			"investor_profit_amount":     amount,
			"investor_profit_percentage": percentage,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddEarnedProfit increments the running earned total in a single
// statement and reloads the investor for threshold evaluation.
func (r *repository) AddEarnedProfit(ctx context.Context, investorID uuid.UUID, amount decimal.Decimal) (*models.User, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", investorID).
		Update("earned_profit", gorm.Expr("earned_profit + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var investor models.User
	if err := r.db.WithContext(ctx).Where("id = ?", investorID).First(&investor).Error; err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *repository) MarkInvestorCompleted(ctx context.Context, investorID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", investorID).
		Where("investor_status = ?", enums.InvestorStatusActive.String()).
		Updates(map[string]any{
			"investor_status": enums.InvestorStatusCompleted.String(),
			"completed_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DropshipperTotals(ctx context.Context, dropshipperID uuid.UUID) (Totals, error) {
	type row struct {
		OrderCount   int64
		TotalProfit  decimal.Decimal
		PaidProfit   decimal.Decimal
		UnpaidProfit decimal.Decimal
	}
	var agg row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`COUNT(*) AS order_count,
			COALESCE(SUM(dropshipper_profit), 0) AS total_profit,
			COALESCE(SUM(dropshipper_profit) FILTER (WHERE dropshipper_profit_paid), 0) AS paid_profit,
			COALESCE(SUM(dropshipper_profit) FILTER (WHERE NOT dropshipper_profit_paid), 0) AS unpaid_profit`).
		Where("created_by = ?", dropshipperID).
		Where("dropshipper_profit IS NOT NULL").
		Where("shipment_status = ?", enums.ShipmentStatusDelivered.String()).
		Scan(&agg).Error
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		OrderCount:   agg.OrderCount,
		TotalProfit:  agg.TotalProfit,
		PaidProfit:   agg.PaidProfit,
		UnpaidProfit: agg.UnpaidProfit,
	}, nil
}

func (r *repository) InvestorOrderStats(ctx context.Context, investorID uuid.UUID) (OrderStats, error) {
	type row struct {
		OrderCount  int64
		TotalProfit decimal.Decimal
	}
	var agg row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(investor_profit_amount), 0) AS total_profit").
		Where("investor_id = ?", investorID).
		Scan(&agg).Error
	if err != nil {
		return OrderStats{}, err
	}
	return OrderStats{OrderCount: agg.OrderCount, TotalProfit: agg.TotalProfit}, nil
}

func (r *repository) ListInvestorOrders(ctx context.Context, investorID uuid.UUID, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("delivered_at DESC NULLS LAST").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
