package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thehassans/sial-backend/pkg/enums"
)

// Order is the single conceptual order entity. In-house and storefront
// variants share the table and are distinguished by Source.
type Order struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Source enums.OrderSource `gorm:"column:source;type:text;not null;default:'storefront'"`

	CustomerName     string `gorm:"column:customer_name;not null"`
	CustomerPhone    string `gorm:"column:customer_phone;not null"`
	PhoneCountryCode string `gorm:"column:phone_country_code"`
	Country          string `gorm:"column:country;not null"`
	City             string `gorm:"column:city;not null"`
	Area             string `gorm:"column:area"`
	Address          string `gorm:"column:address;not null"`
	Details          string `gorm:"column:details"`

	// Currency is stored as the upper-cased ISO code; enums.Currency guards
	// the accepted set at the service boundary.
	Currency string          `gorm:"column:currency;type:text;not null;default:'SAR'"`
	Total    decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'new'"`
	ShipmentStatus enums.ShipmentStatus `gorm:"column:shipment_status;type:text;not null;default:'pending'"`

	// Weak references: lookup relations, never ownership.
	DriverID   *uuid.UUID `gorm:"column:driver_id;type:uuid"`
	CreatedBy  *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid"`

	// Dropshipper margin, present only on orders created by a dropshipper.
	DropshipperProfit     *decimal.Decimal `gorm:"column:dropshipper_profit;type:numeric(12,2)"`
	DropshipperProfitPaid bool             `gorm:"column:dropshipper_profit_paid;not null;default:false"`

	// Investor share, attached at most once when the order is first delivered.
	InvestorID               *uuid.UUID       `gorm:"column:investor_id;type:uuid"`
	InvestorProfitAmount     *decimal.Decimal `gorm:"column:investor_profit_amount;type:numeric(12,2)"`
	InvestorProfitPercentage *decimal.Decimal `gorm:"column:investor_profit_percentage;type:numeric(5,2)"`

	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
