package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`

	Name  string  `gorm:"not null" json:"name"`
	Email *string `gorm:"index" json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`

	// Billing currency for documents issued to this customer.
	CurrencyCode string `gorm:"type:varchar(10);not null" json:"currency_code"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
