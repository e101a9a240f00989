package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus represents where a project is in its lifecycle.
type ProjectStatus string

const (
	ProjectStatusNew       ProjectStatus = "New"
	ProjectStatusQuoting   ProjectStatus = "Quoting"
	ProjectStatusAccepted  ProjectStatus = "Accepted"
	ProjectStatusScheduled ProjectStatus = "Scheduled"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusCancelled ProjectStatus = "Cancelled"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusNew, ProjectStatusQuoting, ProjectStatusAccepted,
		ProjectStatusScheduled, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project is a customer flooring project. Quotes, change orders and the job hang off it.
type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string        `gorm:"size:255;not null" json:"name"`
	CustomerName string        `gorm:"size:255" json:"customer_name,omitempty"`
	Status       ProjectStatus `gorm:"size:20;not null;default:'New'" json:"status"`

	Quotes       []Quote       `gorm:"foreignKey:ProjectID" json:"quotes,omitempty"`
	ChangeOrders []ChangeOrder `gorm:"foreignKey:ProjectID" json:"change_orders,omitempty"`
	Job          *Job          `gorm:"foreignKey:ProjectID" json:"job,omitempty"`
}

// IsScheduledOrCompleted is true once the job has been put on the calendar.
// Deposit and contract flags are locked from that point on.
func (p *Project) IsScheduledOrCompleted() bool {
	return p.Status == ProjectStatusScheduled || p.Status == ProjectStatusCompleted
}

// CanReceiveQuotes returns true while the project is still open for bids.
func (p *Project) CanReceiveQuotes() bool {
	return p.Status != ProjectStatusCancelled && p.Status != ProjectStatusCompleted
}
