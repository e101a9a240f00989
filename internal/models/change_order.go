package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChangeOrderType decides how a change order is prorated into the deposit.
type ChangeOrderType string

const (
	ChangeOrderMaterials ChangeOrderType = "Materials"
	ChangeOrderLabor     ChangeOrderType = "Labor"
)

// Valid reports whether t is a known change order type.
func (t ChangeOrderType) Valid() bool {
	return t == ChangeOrderMaterials || t == ChangeOrderLabor
}

// ChangeOrder is a signed adjustment to a project's cost.
type ChangeOrder struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProjectID uint `gorm:"index;not null" json:"project_id"`
	// QuoteID is nil for general change orders not tied to an installer.
	QuoteID *uint  `gorm:"index" json:"quote_id,omitempty"`
	Quote   *Quote `gorm:"foreignKey:QuoteID" json:"-"`

	Description string          `gorm:"size:500;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Type        ChangeOrderType `gorm:"size:20;not null" json:"type"`
}

// IsUnassigned returns true if the change order is not tied to a quote.
func (co *ChangeOrder) IsUnassigned() bool {
	return co.QuoteID == nil
}

// BelongsTo returns true if the change order is tied to the given quote.
func (co *ChangeOrder) BelongsTo(quoteID uint) bool {
	return co.QuoteID != nil && *co.QuoteID == quoteID
}
