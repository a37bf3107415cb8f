package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	Name string `gorm:"not null" json:"name"`

	// Every monetary document owned by the company converts into this currency.
	BaseCurrencyCode string `gorm:"type:varchar(10);not null" json:"base_currency_code"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy string    `gorm:"not null" json:"created_by"`
	UpdatedBy *string   `json:"updated_by"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
