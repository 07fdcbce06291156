package orders

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
	"github.com/thehassans/sial-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL DEFAULT 'storefront',
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  phone_country_code TEXT,
  country TEXT NOT NULL,
  city TEXT NOT NULL,
  area TEXT,
  address TEXT NOT NULL,
  details TEXT,
  currency TEXT NOT NULL DEFAULT 'SAR',
  total TEXT NOT NULL,
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
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  qty INTEGER NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`

	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)

	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM order_items").Error
		_ = db.Exec("DELETE FROM orders").Error
	})

	return db
}

func seedOrder(t *testing.T, repo Repository, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:             uuid.New(),
		Source:         enums.OrderSourceInHouse,
		CustomerName:   "Ahmed Saleh",
		CustomerPhone:  "+966501234567",
		Country:        "KSA",
		City:           "Riyadh",
		Address:        "12 King Fahd Rd",
		Currency:       enums.CurrencySAR.String(),
		Total:          decimal.RequireFromString("150.00"),
		Status:         enums.OrderStatusNew,
		ShipmentStatus: enums.ShipmentStatusPending,
		Items: []models.OrderItem{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Name:      "Perfume 50ml",
				UnitPrice: decimal.RequireFromString("75.00"),
				Qty:       2,
				LineTotal: decimal.RequireFromString("150.00"),
			},
		},
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedOrder(t, repo, nil)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Ahmed Saleh", found.CustomerName)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("150.00")))
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Perfume 50ml", found.Items[0].Name)
	assert.Equal(t, 2, found.Items[0].Qty)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	riyadh := seedOrder(t, repo, nil)
	seedOrder(t, repo, func(o *models.Order) {
		o.CustomerName = "Layla Hassan"
		o.City = "Jeddah"
		o.ShipmentStatus = enums.ShipmentStatusDelivered
		o.Status = enums.OrderStatusDone
	})

	params := pagination.Params{Page: 1, Limit: 20}

	byCity, total, err := repo.List(ctx, ListFilters{City: "riyadh"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byCity, 1)
	assert.Equal(t, riyadh.ID, byCity[0].ID)

	delivered := enums.ShipmentStatusDelivered
	byStatus, total, err := repo.List(ctx, ListFilters{ShipmentStatus: &delivered}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Layla Hassan", byStatus[0].CustomerName)

	bySearch, total, err := repo.List(ctx, ListFilters{Search: "layla"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, bySearch, 1)

	byProduct, total, err := repo.List(ctx, ListFilters{ProductID: &riyadh.Items[0].ProductID}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byProduct, 1)
	assert.Equal(t, riyadh.ID, byProduct[0].ID)

	all, total, err := repo.List(ctx, ListFilters{}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestRepositoryListUnassignedOnly(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	free := seedOrder(t, repo, nil)
	seedOrder(t, repo, func(o *models.Order) {
		driverID := uuid.New()
		o.DriverID = &driverID
		o.ShipmentStatus = enums.ShipmentStatusAssigned
	})

	unassigned, total, err := repo.List(ctx, ListFilters{Unassigned: true}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, unassigned, 1)
	assert.Equal(t, free.ID, unassigned[0].ID)
}

func TestRepositoryListScopesByCreator(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	dropshipperID := uuid.New()
	mine := seedOrder(t, repo, func(o *models.Order) {
		o.CreatedBy = &dropshipperID
	})
	seedOrder(t, repo, func(o *models.Order) {
		other := uuid.New()
		o.CreatedBy = &other
	})

	scoped, total, err := repo.List(ctx, ListFilters{CreatedBy: &dropshipperID}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, scoped, 1)
	assert.Equal(t, mine.ID, scoped[0].ID)
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, nil)
	now := time.Now().UTC()

	err := repo.Update(ctx, order.ID, map[string]any{
		"shipment_status": enums.ShipmentStatusDelivered.String(),
		"status":          enums.OrderStatusDone.String(),
		"delivered_at":    now,
		"updated_at":      now,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusDelivered, found.ShipmentStatus)
	assert.Equal(t, enums.OrderStatusDone, found.Status)
	require.NotNil(t, found.DeliveredAt)

	err = repo.Update(ctx, uuid.New(), map[string]any{"status": "done"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCountByDriver(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	driverID := uuid.New()
	seedOrder(t, repo, func(o *models.Order) {
		o.DriverID = &driverID
		o.ShipmentStatus = enums.ShipmentStatusAssigned
	})
	seedOrder(t, repo, func(o *models.Order) {
		o.DriverID = &driverID
		o.ShipmentStatus = enums.ShipmentStatusInTransit
	})
	seedOrder(t, repo, func(o *models.Order) {
		o.DriverID = &driverID
		o.ShipmentStatus = enums.ShipmentStatusDelivered
	})

	counts, err := repo.CountByDriver(ctx, []uuid.UUID{driverID})
	require.NoError(t, err)
	require.Contains(t, counts, driverID)
	assert.EqualValues(t, 2, counts[driverID].Assigned)
	assert.EqualValues(t, 1, counts[driverID].Delivered)

	empty, err := repo.CountByDriver(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
