package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thehassans/sial-backend/pkg/enums"
)

// User represents every actor on the platform. Role decides which of the
// profile columns are meaningful: drivers carry country/city/availability,
// managers may carry an assigned-country restriction, investors carry the
// profit-sharing profile. CreatedBy points at the owning workspace account
// for every non-owner role.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone        string         `gorm:"column:phone"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	CreatedBy    *uuid.UUID     `gorm:"column:created_by;type:uuid"`

	// Driver profile.
	Country   string `gorm:"column:country"`
	City      string `gorm:"column:city"`
	Available bool   `gorm:"column:available;not null;default:true"`

	// Manager profile.
	AssignedCountry string `gorm:"column:assigned_country"`

	// Investor profile. EarnedProfit is the only cross-order shared mutable
	// state in the system; it is only ever changed through an atomic
	// storage-level increment.
	InvestorStatus   enums.InvestorStatus `gorm:"column:investor_status;type:text"`
	ProfitPercentage decimal.Decimal      `gorm:"column:profit_percentage;type:numeric(5,2);not null;default:0"`
	ProfitAmount     decimal.Decimal      `gorm:"column:profit_amount;type:numeric(12,2);not null;default:0"`
	InvestmentAmount decimal.Decimal      `gorm:"column:investment_amount;type:numeric(12,2);not null;default:0"`
	EarnedProfit     decimal.Decimal      `gorm:"column:earned_profit;type:numeric(12,2);not null;default:0"`
	CompletedAt      *time.Time           `gorm:"column:completed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalReturn is the investor's investment plus everything earned so far.
func (u User) TotalReturn() decimal.Decimal {
	return u.InvestmentAmount.Add(u.EarnedProfit)
}
