package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	DraftInvoice     InvoiceStatus = "DRAFT"
	SentInvoice      InvoiceStatus = "SENT"
	ViewedInvoice    InvoiceStatus = "VIEWED"
	CompletedInvoice InvoiceStatus = "COMPLETED"
)

// Invoice is a concrete billing document. Invoices generated from a
// recurring invoice keep their own copies of items and taxes, so later
// template edits never alter documents that were already issued.
type Invoice struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID  uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	// Source template, set only for generated invoices.
	RecurringInvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_invoice_id,omitempty"`

	InvoiceNumber string        `gorm:"uniqueIndex;not null" json:"invoice_number"`
	Status        InvoiceStatus `gorm:"type:varchar(20);default:'DRAFT'" json:"status"`

	InvoiceDate time.Time  `gorm:"type:date;not null" json:"invoice_date"`
	DueDate     *time.Time `gorm:"type:date" json:"due_date,omitempty"`

	CurrencyCode string `gorm:"type:varchar(10);not null" json:"currency_code"`

	// Multiplier into the company base currency, resolved when the invoice
	// is created and mirrored onto every item and tax line.
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8)" json:"exchange_rate"`

	// Minor-unit amounts in the document currency.
	SubTotal int64 `gorm:"not null" json:"sub_total"`
	TaxTotal int64 `gorm:"not null" json:"tax_total"`
	Total    int64 `gorm:"not null" json:"total"`

	// Total converted into the company base currency.
	BaseTotal int64 `json:"base_total"`

	SendAutomatically bool `gorm:"default:false" json:"send_automatically"`

	CustomFields datatypes.JSON `json:"custom_fields,omitempty"`

	Items []Item `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Taxes []Tax  `gorm:"foreignKey:InvoiceID" json:"taxes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// DocumentRate, TaxLines and ItemLines let the exchange-rate propagator
// treat invoices, estimates and recurring invoices uniformly.

func (i *Invoice) DocumentRate() decimal.Decimal {
	return i.ExchangeRate
}

func (i *Invoice) TaxLines() []*Tax {
	taxes := make([]*Tax, 0, len(i.Taxes))
	for idx := range i.Taxes {
		taxes = append(taxes, &i.Taxes[idx])
	}
	return taxes
}

func (i *Invoice) ItemLines() []*Item {
	items := make([]*Item, 0, len(i.Items))
	for idx := range i.Items {
		items = append(items, &i.Items[idx])
	}
	return items
}
