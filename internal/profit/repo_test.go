package profit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
)

func setupProfitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  created_by TEXT,
  country TEXT,
  city TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  assigned_country TEXT,
  investor_status TEXT,
  profit_percentage TEXT NOT NULL DEFAULT '0',
  profit_amount TEXT NOT NULL DEFAULT '0',
  investment_amount TEXT NOT NULL DEFAULT '0',
  earned_profit TEXT NOT NULL DEFAULT '0',
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL DEFAULT 'storefront',
  customer_name TEXT NOT NULL DEFAULT '',
  customer_phone TEXT NOT NULL DEFAULT '',
  phone_country_code TEXT,
  country TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  area TEXT,
  address TEXT NOT NULL DEFAULT '',
  details TEXT,
  currency TEXT NOT NULL DEFAULT 'SAR',
  total TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL DEFAULT 'new',
  shipment_status TEXT NOT NULL DEFAULT 'pending',
  driver_id TEXT,
  created_by TEXT,
  customer_id TEXT,
  dropshipper_profit TEXT,
  dropshipper_profit_paid INTEGER NOT NULL DEFAULT 0,
  investor_id TEXT,
  investor_profit_amount TEXT,
  investor_profit_percentage TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

	require.NoError(t, db.Exec(usersTable).Error)
	require.NoError(t, db.Exec(ordersTable).Error)

	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM orders").Error
		_ = db.Exec("DELETE FROM users").Error
	})

	return db
}

func seedInvestor(t *testing.T, db *gorm.DB, workspaceID uuid.UUID, status enums.InvestorStatus, joinedAt time.Time) *models.User {
	t.Helper()

	investor := &models.User{
		ID:               uuid.New(),
		Name:             "Investor " + joinedAt.Format("2006-01-02"),
		Email:            uuid.NewString() + "@example.com",
		PasswordHash:     "x",
		Role:             enums.UserRoleInvestor,
		CreatedBy:        &workspaceID,
		InvestorStatus:   status,
		ProfitPercentage: decimal.RequireFromString("10"),
		InvestmentAmount: decimal.RequireFromString("5000"),
		CreatedAt:        joinedAt,
		UpdatedAt:        joinedAt,
	}
	require.NoError(t, db.Create(investor).Error)
	return investor
}

func TestRepositoryOldestActiveInvestorWins(t *testing.T) {
	db := setupProfitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Older than every active investor, but not eligible.
	seedInvestor(t, db, workspaceID, enums.InvestorStatusPaused, base.Add(-48*time.Hour))
	seedInvestor(t, db, workspaceID, enums.InvestorStatusCompleted, base.Add(-24*time.Hour))

	oldest := seedInvestor(t, db, workspaceID, enums.InvestorStatusActive, base)
	seedInvestor(t, db, workspaceID, enums.InvestorStatusActive, base.Add(time.Hour))
	seedInvestor(t, db, workspaceID, enums.InvestorStatusActive, base.Add(2*time.Hour))

	// Active and older still, but belongs to a different workspace.
	seedInvestor(t, db, uuid.New(), enums.InvestorStatusActive, base.Add(-72*time.Hour))

	found, err := repo.FindOldestActiveInvestor(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, found.ID)
}

func TestRepositoryOldestActiveInvestorNoneEligible(t *testing.T) {
	db := setupProfitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	workspaceID := uuid.New()

	seedInvestor(t, db, workspaceID, enums.InvestorStatusPaused, time.Now().UTC())

	_, err := repo.FindOldestActiveInvestor(ctx, workspaceID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryClaimOrderProfitOnlyOnce(t *testing.T) {
	db := setupProfitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	require.NoError(t, db.Exec(
		"INSERT INTO orders (id, total, created_at, updated_at) VALUES (?, '200', ?, ?)",
		orderID.String(), time.Now().UTC(), time.Now().UTC(),
	).Error)

	first := uuid.New()
	claimed, err := repo.ClaimOrderProfit(ctx, orderID, first,
		decimal.RequireFromString("20.00"), decimal.RequireFromString("10"))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimOrderProfit(ctx, orderID, uuid.New(),
		decimal.RequireFromString("20.00"), decimal.RequireFromString("10"))
	require.NoError(t, err)
	assert.False(t, claimed, "a claimed order must not be re-allocated")

	var investorID string
	require.NoError(t, db.Raw("SELECT investor_id FROM orders WHERE id = ?", orderID.String()).Scan(&investorID).Error)
	assert.Equal(t, first.String(), investorID)
}

func TestRepositoryAddEarnedProfitAccumulates(t *testing.T) {
	db := setupProfitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	investor := seedInvestor(t, db, uuid.New(), enums.InvestorStatusActive, time.Now().UTC())

	updated, err := repo.AddEarnedProfit(ctx, investor.ID, decimal.RequireFromString("30.00"))
	require.NoError(t, err)
	assert.True(t, updated.EarnedProfit.Equal(decimal.RequireFromString("30.00")))

	updated, err = repo.AddEarnedProfit(ctx, investor.ID, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	assert.True(t, updated.EarnedProfit.Equal(decimal.RequireFromString("42.50")))

	_, err = repo.AddEarnedProfit(ctx, uuid.New(), decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryMarkInvestorCompletedOnce(t *testing.T) {
	db := setupProfitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	investor := seedInvestor(t, db, uuid.New(), enums.InvestorStatusActive, time.Now().UTC())

	done, err := repo.MarkInvestorCompleted(ctx, investor.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, done)

	done, err = repo.MarkInvestorCompleted(ctx, investor.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, done, "completion must be idempotent")
}
