package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EstimateStatus string

const (
	DraftEstimate    EstimateStatus = "DRAFT"
	SentEstimate     EstimateStatus = "SENT"
	AcceptedEstimate EstimateStatus = "ACCEPTED"
	RejectedEstimate EstimateStatus = "REJECTED"
)

type Estimate struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID  uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	EstimateNumber string         `gorm:"uniqueIndex;not null" json:"estimate_number"`
	Status         EstimateStatus `gorm:"type:varchar(20);default:'DRAFT'" json:"status"`

	EstimateDate time.Time  `gorm:"type:date;not null" json:"estimate_date"`
	ExpiryDate   *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`

	CurrencyCode string          `gorm:"type:varchar(10);not null" json:"currency_code"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8)" json:"exchange_rate"`

	SubTotal  int64 `gorm:"not null" json:"sub_total"`
	TaxTotal  int64 `gorm:"not null" json:"tax_total"`
	Total     int64 `gorm:"not null" json:"total"`
	BaseTotal int64 `json:"base_total"`

	Items []Item `gorm:"foreignKey:EstimateID" json:"items,omitempty"`
	Taxes []Tax  `gorm:"foreignKey:EstimateID" json:"taxes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

func (e *Estimate) DocumentRate() decimal.Decimal {
	return e.ExchangeRate
}

func (e *Estimate) TaxLines() []*Tax {
	taxes := make([]*Tax, 0, len(e.Taxes))
	for idx := range e.Taxes {
		taxes = append(taxes, &e.Taxes[idx])
	}
	return taxes
}

func (e *Estimate) ItemLines() []*Item {
	items := make([]*Item, 0, len(e.Items))
	for idx := range e.Items {
		items = append(items, &e.Items[idx])
	}
	return items
}
