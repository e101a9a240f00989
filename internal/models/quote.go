package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallationType describes who installs the flooring covered by a quote.
type InstallationType string

const (
	InstallationManaged   InstallationType = "Managed Installation"
	InstallationUnmanaged InstallationType = "Unmanaged Installer"
	InstallationMaterial  InstallationType = "Material Only"
)

// Valid reports whether t is a known installation type.
func (t InstallationType) Valid() bool {
	return t == InstallationManaged || t == InstallationUnmanaged || t == InstallationMaterial
}

// QuoteStatus represents the state of a bid.
type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "Sent"
	QuoteStatusAccepted QuoteStatus = "Accepted"
	QuoteStatusRejected QuoteStatus = "Rejected"
)

// Installer is a crew or subcontractor that can be attached to quotes.
type Installer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Color string `gorm:"size:20" json:"color,omitempty"`
}

// Quote is one installer or material bid for a project.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProjectID uint     `gorm:"index;not null" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"-"`

	// InstallerID is nil for material-only bids.
	InstallerID *uint      `gorm:"index" json:"installer_id,omitempty"`
	Installer   *Installer `gorm:"foreignKey:InstallerID" json:"installer,omitempty"`

	InstallationType InstallationType `gorm:"size:40" json:"installation_type"`
	MaterialsAmount  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"materials_amount"`
	// LaborAmount and LaborDepositPercentage only matter for managed installations.
	LaborAmount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"labor_amount"`
	LaborDepositPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"labor_deposit_percentage"`

	Status   QuoteStatus `gorm:"size:20;not null;default:'Sent';index" json:"status"`
	PONumber string      `gorm:"size:100" json:"po_number,omitempty"`
}

// Type returns the installation type, treating a missing type as material only.
func (q *Quote) Type() InstallationType {
	if q.InstallationType == "" {
		return InstallationMaterial
	}
	return q.InstallationType
}

// IsAccepted returns true if the quote takes part in job computations.
func (q *Quote) IsAccepted() bool {
	return q.Status == QuoteStatusAccepted
}

// IsManaged returns true for managed installations.
func (q *Quote) IsManaged() bool {
	return q.Type() == InstallationManaged
}

// NeedsInstallation returns true when an installer has to be put on the calendar.
func (q *Quote) NeedsInstallation() bool {
	t := q.Type()
	return t == InstallationManaged || t == InstallationUnmanaged
}

// CanDecide returns true while the quote can still be accepted or rejected.
func (q *Quote) CanDecide() bool {
	return q.Status == QuoteStatusSent
}
