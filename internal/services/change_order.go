package services

import (
	"context"
	"strings"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ChangeOrderInput struct {
	QuoteID     *uint
	Description string
	Amount      decimal.Decimal
	Type        models.ChangeOrderType
}

type ChangeOrderService struct{ DB *gorm.DB }

func NewChangeOrderService(db *gorm.DB) *ChangeOrderService { return &ChangeOrderService{DB: db} }

// Create records a change order. Amounts may be negative for credits.
// A linked quote must belong to the same project.
func (s *ChangeOrderService) Create(ctx context.Context, projectID uint, in ChangeOrderInput) (*models.ChangeOrder, error) {
	in.Description = strings.TrimSpace(in.Description)
	v := make(validation.Violations)
	validation.Required("description", in.Description, v)
	validation.MaxLength("description", in.Description, 500, v)
	validation.NonZero("amount", in.Amount, v)
	validation.OneOf("type", in.Type.Valid(), v)
	if !v.Empty() {
		return nil, invalid(v)
	}
	co := models.ChangeOrder{
		ProjectID:   projectID,
		QuoteID:     in.QuoteID,
		Description: in.Description,
		Amount:      in.Amount.Round(2),
		Type:        in.Type,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadProject(tx, projectID); err != nil {
			return err
		}
		if in.QuoteID != nil {
			var q models.Quote
			if err := tx.First(&q, *in.QuoteID).Error; err != nil {
				return notFound(err, ErrQuoteNotFound)
			}
			if q.ProjectID != projectID {
				return ErrQuoteNotInProject
			}
		}
		return tx.Create(&co).Error
	})
	if err != nil {
		return nil, err
	}
	return &co, nil
}

func (s *ChangeOrderService) List(ctx context.Context, projectID uint) ([]models.ChangeOrder, error) {
	db := s.DB.WithContext(ctx)
	if _, err := loadProject(db, projectID); err != nil {
		return nil, err
	}
	cos, err := projectChangeOrders(db, projectID)
	if err != nil {
		return nil, err
	}
	if cos == nil {
		cos = []models.ChangeOrder{}
	}
	return cos, nil
}
