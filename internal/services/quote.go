package services

import (
	"context"
	"strings"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/money"
	"github.com/adampdxdotcom/subfloor-sub002/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteInput struct {
	InstallerID            *uint
	InstallationType       models.InstallationType
	MaterialsAmount        decimal.Decimal
	LaborAmount            decimal.Decimal
	LaborDepositPercentage decimal.Decimal
	PONumber               string
}

type QuoteService struct{ DB *gorm.DB }

func NewQuoteService(db *gorm.DB) *QuoteService { return &QuoteService{DB: db} }

func (in QuoteInput) validate() validation.Violations {
	v := make(validation.Violations)
	validation.OneOf("installation_type", in.InstallationType.Valid(), v)
	validation.NonNegative("materials_amount", in.MaterialsAmount, v)
	validation.NonNegative("labor_amount", in.LaborAmount, v)
	validation.Range("labor_deposit_percentage", in.LaborDepositPercentage, money.Zero, decimal.NewFromInt(100), v)
	validation.MaxLength("po_number", in.PONumber, 100, v)
	if in.InstallationType.Valid() && in.InstallationType != models.InstallationMaterial && in.InstallerID == nil {
		v["installer_id"] = "required"
	}
	return v
}

// Create records a new bid in Sent status. A New project moves to Quoting.
func (s *QuoteService) Create(ctx context.Context, projectID uint, in QuoteInput) (*models.Quote, error) {
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	q := models.Quote{
		ProjectID:              projectID,
		InstallerID:            in.InstallerID,
		InstallationType:       in.InstallationType,
		MaterialsAmount:        in.MaterialsAmount.Round(2),
		LaborAmount:            in.LaborAmount.Round(2),
		LaborDepositPercentage: in.LaborDepositPercentage.Round(2),
		Status:                 models.QuoteStatusSent,
		PONumber:               strings.TrimSpace(in.PONumber),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		if !p.CanReceiveQuotes() {
			return ErrProjectClosed
		}
		if in.InstallerID != nil {
			var count int64
			if err := tx.Model(&models.Installer{}).Where("id = ?", *in.InstallerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrInstallerNotFound
			}
		}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		if p.Status == models.ProjectStatusNew {
			return tx.Model(p).Update("status", models.ProjectStatusQuoting).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Accept marks a sent quote as accepted. The first accepted quote of a project that is
// still being quoted moves the project to Accepted.
func (s *QuoteService) Accept(ctx context.Context, id uint) (*models.Quote, error) {
	return s.decide(ctx, id, models.QuoteStatusAccepted)
}

// Reject marks a sent quote as rejected.
func (s *QuoteService) Reject(ctx context.Context, id uint) (*models.Quote, error) {
	return s.decide(ctx, id, models.QuoteStatusRejected)
}

func (s *QuoteService) decide(ctx context.Context, id uint, status models.QuoteStatus) (*models.Quote, error) {
	var q models.Quote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err, ErrQuoteNotFound)
		}
		if !q.CanDecide() {
			return ErrQuoteNotDecidable
		}
		p, err := loadProject(tx, q.ProjectID)
		if err != nil {
			return err
		}
		if !p.CanReceiveQuotes() {
			return ErrProjectClosed
		}
		if err := tx.Model(&q).Update("status", status).Error; err != nil {
			return err
		}
		q.Status = status
		if status == models.QuoteStatusAccepted &&
			(p.Status == models.ProjectStatusNew || p.Status == models.ProjectStatusQuoting) {
			return tx.Model(p).Update("status", models.ProjectStatusAccepted).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *QuoteService) List(ctx context.Context, projectID uint) ([]models.Quote, error) {
	db := s.DB.WithContext(ctx)
	if _, err := loadProject(db, projectID); err != nil {
		return nil, err
	}
	quotes := []models.Quote{}
	if err := db.Preload("Installer").Where("project_id = ?", projectID).Order("id ASC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}
