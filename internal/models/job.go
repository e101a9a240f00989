package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Job is the schedulable unit of a project.
type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProjectID uint     `gorm:"uniqueIndex;not null" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"-"`

	PONumber             string `gorm:"size:100" json:"po_number,omitempty"`
	DepositReceived      bool   `gorm:"not null;default:false" json:"deposit_received"`
	ContractsReceived    bool   `gorm:"not null;default:false" json:"contracts_received"`
	FinalPaymentReceived bool   `gorm:"not null;default:false" json:"final_payment_received"`
	IsOnHold             bool   `gorm:"not null;default:false" json:"is_on_hold"`

	// DepositAmount is always the total deposit computed at save time.
	DepositAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"deposit_amount"`

	Appointments []Appointment `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"appointments"`
}

// Appointment is one scheduled block of work within a job.
type Appointment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID    uint   `gorm:"index;not null" json:"job_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Name     string `gorm:"size:255;not null" json:"appointment_name"`

	// QuoteID links the appointment to the accepted quote whose scope it covers.
	QuoteID     *uint `gorm:"index" json:"quote_id,omitempty"`
	InstallerID *uint `gorm:"index" json:"installer_id,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
