package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thehassans/sial-backend/pkg/db/models"
	"github.com/thehassans/sial-backend/pkg/enums"
	"github.com/thehassans/sial-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListForExport(ctx context.Context, filters ListFilters, maxRows int) ([]models.Order, error) {
	var orders []models.Order
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), filters).
		Preload("Items").
		Order("created_at DESC").
		Limit(maxRows).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID, filters DriverListFilters, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("driver_id = ?", driverID)
	if filters.ShipmentStatus != nil {
		query = query.Where("shipment_status = ?", filters.ShipmentStatus.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountByDriver(ctx context.Context, driverIDs []uuid.UUID) (map[uuid.UUID]DriverOrderCounts, error) {
	counts := make(map[uuid.UUID]DriverOrderCounts, len(driverIDs))
	if len(driverIDs) == 0 {
		return counts, nil
	}

	type row struct {
		DriverID       uuid.UUID
		ShipmentStatus string
		Count          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("driver_id, shipment_status, COUNT(*) AS count").
		Where("driver_id IN ?", driverIDs).
		Group("driver_id, shipment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, item := range rows {
		entry := counts[item.DriverID]
		if item.ShipmentStatus == enums.ShipmentStatusDelivered.String() {
			entry.Delivered += item.Count
		} else {
			entry.Assigned += item.Count
		}
		counts[item.DriverID] = entry
	}
	return counts, nil
}

func (r *repository) applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			`(LOWER(customer_name) LIKE ? OR LOWER(customer_phone) LIKE ? OR LOWER(address) LIKE ?
				OR LOWER(city) LIKE ? OR LOWER(area) LIKE ? OR LOWER(details) LIKE ?
				OR EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND LOWER(oi.name) LIKE ?))`,
			pattern, pattern, pattern, pattern, pattern, pattern, pattern,
		)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", filters.Status.String())
	}
	if filters.ShipmentStatus != nil {
		query = query.Where("shipment_status = ?", filters.ShipmentStatus.String())
	}
	if filters.Source != nil {
		query = query.Where("source = ?", filters.Source.String())
	}
	if filters.Country != "" {
		query = query.Where("LOWER(country) = LOWER(?)", filters.Country)
	}
	if filters.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filters.City)
	}
	if filters.DriverID != nil {
		query = query.Where("driver_id = ?", *filters.DriverID)
	}
	if filters.Unassigned {
		query = query.Where("driver_id IS NULL")
	}
	if filters.ProductID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_id = ?)",
			*filters.ProductID,
		)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}
	return query
}
