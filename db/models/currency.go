package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Currency struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`

	Name   string `gorm:"not null" json:"name"`
	Code   string `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"` // Always uppercase (USD, EUR)
	Symbol string `gorm:"type:varchar(10)" json:"symbol"`

	// Number of minor-unit digits (2 for USD cents, 0 for JPY).
	Precision int `gorm:"default:2" json:"precision"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Currency) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
