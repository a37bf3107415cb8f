package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//
// ENUM DEFINITIONS
//

type RecurringStatus string

const (
	ActiveRecurring    RecurringStatus = "ACTIVE"
	OnHoldRecurring    RecurringStatus = "ON_HOLD"
	CompletedRecurring RecurringStatus = "COMPLETED"
)

type LimitType string

const (
	NoLimit    LimitType = "NONE"
	CountLimit LimitType = "COUNT"
	DateLimit  LimitType = "DATE"
)

type FrequencyUnit string

const (
	DailyFrequency   FrequencyUnit = "DAILY"
	WeeklyFrequency  FrequencyUnit = "WEEKLY"
	MonthlyFrequency FrequencyUnit = "MONTHLY"
	YearlyFrequency  FrequencyUnit = "YEARLY"
)

// Frequency is a calendar step: every Interval units.
type Frequency struct {
	Unit     FrequencyUnit `gorm:"type:varchar(10)" json:"unit"`
	Interval int           `gorm:"default:1" json:"interval"`
}

//
// RECURRING INVOICE MODEL
//

// RecurringInvoice is a template that the scheduler materializes into
// concrete invoices, one per due occurrence.
type RecurringInvoice struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID  uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	Status RecurringStatus `gorm:"type:varchar(20);index;default:'ACTIVE'" json:"status"`

	Frequency Frequency `gorm:"embedded;embeddedPrefix:frequency_" json:"frequency"`

	StartsAt time.Time `gorm:"type:date;not null" json:"starts_at"`

	LimitType  LimitType  `gorm:"type:varchar(10);default:'NONE'" json:"limit_type"`
	LimitCount *int       `json:"limit_count,omitempty"`
	LimitDate  *time.Time `gorm:"type:date" json:"limit_date,omitempty"`

	// Null once the template is COMPLETED.
	NextInvoiceAt *time.Time `gorm:"type:date;index" json:"next_invoice_at,omitempty"`

	GeneratedCount int `gorm:"default:0" json:"generated_count"`

	CurrencyCode string          `gorm:"type:varchar(10);not null" json:"currency_code"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,8)" json:"exchange_rate"`

	SubTotal  int64 `gorm:"not null" json:"sub_total"`
	TaxTotal  int64 `gorm:"not null" json:"tax_total"`
	Total     int64 `gorm:"not null" json:"total"`
	BaseTotal int64 `json:"base_total"`

	SendAutomatically bool `gorm:"default:false" json:"send_automatically"`

	CustomFields datatypes.JSON `json:"custom_fields,omitempty"`

	Items    []Item    `gorm:"foreignKey:RecurringInvoiceID" json:"items,omitempty"`
	Taxes    []Tax     `gorm:"foreignKey:RecurringInvoiceID" json:"taxes,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:RecurringInvoiceID" json:"invoices,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

func (r *RecurringInvoice) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// AnchorDay is the day-of-month the schedule stays pinned to. Monthly and
// yearly steps clamp it to the last valid day of shorter target months.
func (r *RecurringInvoice) AnchorDay() int {
	return r.StartsAt.Day()
}

func (r *RecurringInvoice) DocumentRate() decimal.Decimal {
	return r.ExchangeRate
}

func (r *RecurringInvoice) TaxLines() []*Tax {
	taxes := make([]*Tax, 0, len(r.Taxes))
	for idx := range r.Taxes {
		taxes = append(taxes, &r.Taxes[idx])
	}
	return taxes
}

func (r *RecurringInvoice) ItemLines() []*Item {
	items := make([]*Item, 0, len(r.Items))
	for idx := range r.Items {
		items = append(items, &r.Items[idx])
	}
	return items
}
