package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Installer{}, &models.Project{}, &models.Quote{}, &models.ChangeOrder{}, &models.Job{}, &models.Appointment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newJobService(db *gorm.DB) *JobService {
	svc := NewJobService(db, zap.NewNop(), time.UTC)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func uptr(v uint) *uint { return &v }

func seedInstaller(t *testing.T, db *gorm.DB, name string) models.Installer {
	t.Helper()
	in := models.Installer{Name: name}
	if err := db.Create(&in).Error; err != nil {
		t.Fatalf("installer: %v", err)
	}
	return in
}

func seedProject(t *testing.T, db *gorm.DB, status models.ProjectStatus) models.Project {
	t.Helper()
	p := models.Project{Name: "Kitchen LVP", CustomerName: "Dana", Status: status}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("project: %v", err)
	}
	return p
}

func seedQuote(t *testing.T, db *gorm.DB, projectID uint, typ models.InstallationType, installerID *uint, materials, labor, pct string) models.Quote {
	t.Helper()
	q := models.Quote{
		ProjectID:              projectID,
		InstallerID:            installerID,
		InstallationType:       typ,
		MaterialsAmount:        dec(materials),
		LaborAmount:            dec(labor),
		LaborDepositPercentage: dec(pct),
		Status:                 models.QuoteStatusAccepted,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("quote: %v", err)
	}
	return q
}

func assertStatus(t *testing.T, db *gorm.DB, projectID uint, want models.ProjectStatus) {
	t.Helper()
	var p models.Project
	if err := db.First(&p, projectID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if p.Status != want {
		t.Fatalf("expected project status %s got %s", want, p.Status)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
