package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tax is a single tax line. Exactly one of the parent references is set:
// a document-level tax points at an invoice, estimate or recurring invoice,
// an item-level tax points at an item.
type Tax struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	InvoiceID          *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	EstimateID         *uuid.UUID `gorm:"type:uuid;index" json:"estimate_id,omitempty"`
	RecurringInvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_invoice_id,omitempty"`
	ItemID             *uuid.UUID `gorm:"type:uuid;index" json:"item_id,omitempty"`

	Name     string          `gorm:"not null" json:"name"`
	Percent  decimal.Decimal `gorm:"type:decimal(9,4)" json:"percent"`
	Compound bool            `gorm:"default:false" json:"compound"`

	// Amount is in minor units of the parent document currency.
	Amount int64 `gorm:"not null" json:"amount"`

	// ExchangeRate mirrors the parent document rate; BaseAmount is Amount
	// converted into the company base currency at that rate.
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8)" json:"exchange_rate"`
	BaseAmount   int64           `json:"base_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Tax) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
