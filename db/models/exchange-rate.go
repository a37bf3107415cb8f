package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExchangeRate struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	CurrencyName string `json:"currency_name"`
	CurrencyCode string `gorm:"type:varchar(10);index;not null" json:"currency_code"` // Ensure this is always uppercase (USD, EUR)

	// Multiplier converting one unit of CurrencyCode into the company base currency.
	Rate decimal.Decimal `gorm:"type:decimal(18,8)" json:"rate"`

	Active bool `gorm:"index" json:"active"` // If this rate is the current active one
	Used   bool `json:"used"`

	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"` // Null while the rate is still active

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	CreatedBy string     `gorm:"not null" json:"created_by"`
	UpdatedBy *string    `json:"updated_by"`
}

func (e *ExchangeRate) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
