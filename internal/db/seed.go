package db

import (
	"errors"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"gorm.io/gorm"
)

// Seed inserts a baseline set of installers. It is idempotent.
func Seed(db *gorm.DB) error {
	base := []models.Installer{
		{Name: "In-house Crew", Color: "#2563eb"},
		{Name: "Subcontractor A", Color: "#16a34a"},
		{Name: "Subcontractor B", Color: "#ea580c"},
	}
	for _, in := range base {
		var existing models.Installer
		err := db.Where("name = ?", in.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&in).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
