package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	FixedDiscount      DiscountType = "FIXED"
	PercentageDiscount DiscountType = "PERCENTAGE"
)

// Item is a line item owned by an invoice, estimate or recurring invoice.
// All amounts are in minor units of the parent document currency.
type Item struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	InvoiceID          *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	EstimateID         *uuid.UUID `gorm:"type:uuid;index" json:"estimate_id,omitempty"`
	RecurringInvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_invoice_id,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	Price    int64 `gorm:"not null" json:"price"`
	Quantity int64 `gorm:"not null;default:1" json:"quantity"`

	DiscountType DiscountType `gorm:"type:varchar(20);default:'FIXED'" json:"discount_type"`
	Discount     int64        `gorm:"default:0" json:"discount"`

	Total int64 `gorm:"not null" json:"total"`

	// ExchangeRate mirrors the parent document rate; BaseTotal is Total
	// converted into the company base currency at that rate.
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8)" json:"exchange_rate"`
	BaseTotal    int64           `json:"base_total"`

	Taxes []Tax `gorm:"foreignKey:ItemID" json:"taxes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
