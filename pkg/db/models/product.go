package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Order creation only ever reads the current
// price/name snapshot from here.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StorefrontVisible bool            `gorm:"column:storefront_visible;not null;default:true"`
	InStock           bool            `gorm:"column:in_stock;not null;default:true"`
	CreatedBy         *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
