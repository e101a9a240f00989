package services

import (
	"context"
	"strings"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/validation"
	"gorm.io/gorm"
)

type ProjectInput struct {
	Name         string
	CustomerName string
}

type ProjectService struct{ DB *gorm.DB }

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{DB: db} }

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	validation.MaxLength("customer_name", in.CustomerName, 255, v)
	if !v.Empty() {
		return nil, invalid(v)
	}
	p := models.Project{Name: in.Name, CustomerName: strings.TrimSpace(in.CustomerName), Status: models.ProjectStatusNew}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Get loads a project with its quotes, change orders and job.
func (s *ProjectService) Get(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).
		Preload("Quotes", orderByID).
		Preload("ChangeOrders", orderByID).
		Preload("Job.Appointments", orderByPosition).
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return &p, nil
}

// UpdateStatus sets a project's status by hand. Scheduled can only be reached through
// a job save, and a cancelled project stays cancelled.
func (s *ProjectService) UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus) (*models.Project, error) {
	if !status.Valid() {
		return nil, invalid(validation.Violations{"status": "invalid_value"})
	}
	if status == models.ProjectStatusScheduled {
		return nil, ErrStatusNotAllowed
	}
	db := s.DB.WithContext(ctx)
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	if p.Status == models.ProjectStatusCancelled && status != models.ProjectStatusCancelled {
		return nil, ErrStatusNotAllowed
	}
	if err := db.Model(&p).Update("status", status).Error; err != nil {
		return nil, err
	}
	p.Status = status
	return &p, nil
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

func orderByPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }

func loadProject(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return &p, nil
}

func acceptedQuotes(db *gorm.DB, projectID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := db.Where("project_id = ? AND status = ?", projectID, models.QuoteStatusAccepted).
		Order("id ASC").Find(&quotes).Error
	return quotes, err
}

func projectChangeOrders(db *gorm.DB, projectID uint) ([]models.ChangeOrder, error) {
	var cos []models.ChangeOrder
	err := db.Where("project_id = ?", projectID).Order("id ASC").Find(&cos).Error
	return cos, err
}
