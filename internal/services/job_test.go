package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/scheduling"
	"gorm.io/gorm"
)

func TestSaveJobDetails_ManagedMissingDepositWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	crew := seedInstaller(t, db, "Crew")
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationManaged, &crew.ID, "1000", "2000", "50")
	svc := newJobService(db)

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{DepositReceived: false, ContractsReceived: true},
		[]scheduling.AppointmentDraft{{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-07-01"}})
	_, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if !errors.Is(err, scheduling.ErrDepositAndContracts) {
		t.Fatalf("expected deposit rejection got %v", err)
	}
	if msg, _ := scheduling.UserMessage(err); msg != scheduling.MsgDepositAndContracts {
		t.Fatalf("unexpected message %q", msg)
	}
	if n := countRows(t, db, &models.Job{}); n != 0 {
		t.Fatalf("expected no job written, got %d", n)
	}
	if n := countRows(t, db, &models.Appointment{}); n != 0 {
		t.Fatalf("expected no appointments written, got %d", n)
	}
	assertStatus(t, db, p.ID, models.ProjectStatusAccepted)
}

func TestSaveJobDetails_SchedulesManagedJob(t *testing.T) {
	db := setupTestDB(t)
	crew := seedInstaller(t, db, "Crew")
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationManaged, &crew.ID, "1000", "2000", "50")
	if err := db.Create(&models.ChangeOrder{ProjectID: p.ID, QuoteID: &q.ID, Description: "extra labor", Amount: dec("200"), Type: models.ChangeOrderLabor}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.ChangeOrder{ProjectID: p.ID, Description: "trim", Amount: dec("50"), Type: models.ChangeOrderMaterials}).Error; err != nil {
		t.Fatal(err)
	}
	svc := newJobService(db)

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{PONumber: "PO-7", DepositReceived: true, ContractsReceived: true},
		[]scheduling.AppointmentDraft{{Name: "Part 1", StartDate: "2025-07-01", EndDate: "2025-07-03"}})
	res, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.Decision.Transition || res.ProjectStatus != models.ProjectStatusScheduled {
		t.Fatalf("expected transition to Scheduled: %+v", res.Decision)
	}
	assertStatus(t, db, p.ID, models.ProjectStatusScheduled)

	// deposit = 1000 + 2000*0.5 + 200*0.5
	if !res.Summary.TotalDeposit.Equal(dec("2100")) {
		t.Fatalf("unexpected total deposit %s", res.Summary.TotalDeposit)
	}
	if !res.Summary.GrandTotal.Equal(dec("3250")) {
		t.Fatalf("unexpected grand total %s", res.Summary.GrandTotal)
	}

	var job models.Job
	if err := db.Preload("Appointments").Where("project_id = ?", p.ID).First(&job).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if !job.DepositAmount.Equal(res.Summary.TotalDeposit) {
		t.Fatalf("depositAmount %s does not match total deposit %s", job.DepositAmount, res.Summary.TotalDeposit)
	}
	if job.PONumber != "PO-7" || !job.DepositReceived || !job.ContractsReceived {
		t.Fatalf("job fields not saved: %+v", job)
	}
	if len(job.Appointments) != 1 {
		t.Fatalf("expected 1 appointment got %d", len(job.Appointments))
	}
	a := job.Appointments[0]
	if a.QuoteID == nil || *a.QuoteID != q.ID || a.InstallerID == nil || *a.InstallerID != crew.ID {
		t.Fatalf("expected appointment auto-linked to sole quote: %+v", a)
	}
	if a.StartDate == nil || a.StartDate.UTC().Hour() != 12 {
		t.Fatalf("expected start date pinned to noon, got %v", a.StartDate)
	}
}

func TestSaveJobDetails_UnlinkedWithSeveralQuotes(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q1 := seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(1), "500", "0", "0")
	seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(2), "700", "0", "0")
	svc := newJobService(db)

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{
		{Name: "Part 1", QuoteID: &q1.ID, StartDate: "2025-07-01"},
		{Name: "Part 2", StartDate: "2025-07-05"},
	})
	_, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if !errors.Is(err, scheduling.ErrUnlinkedAppointment) {
		t.Fatalf("expected unlinked rejection got %v", err)
	}
	if n := countRows(t, db, &models.Job{}); n != 0 {
		t.Fatalf("expected no job written, got %d", n)
	}
}

func TestSaveJobDetails_MaterialOnlyNeverSchedules(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	seedQuote(t, db, p.ID, models.InstallationMaterial, nil, "800", "0", "0")
	svc := newJobService(db)

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{{Name: "Part 1"}})
	res, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Decision.Transition {
		t.Fatalf("material only job must not transition")
	}
	assertStatus(t, db, p.ID, models.ProjectStatusAccepted)
	if !res.Job.DepositAmount.Equal(dec("800")) {
		t.Fatalf("expected deposit 800 got %s", res.Job.DepositAmount)
	}
}

func TestSaveJobDetails_IsAtomic(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(1), "500", "300", "0")
	svc := newJobService(db)

	// fail the status transition, the last write of the save
	if err := db.Callback().Update().Before("gorm:update").Register("test:fail_projects", func(tx *gorm.DB) {
		if tx.Statement.Table == "projects" {
			_ = tx.AddError(errors.New("boom"))
		}
	}); err != nil {
		t.Fatal(err)
	}

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-07-01"}})
	_, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed got %v", err)
	}
	if n := countRows(t, db, &models.Job{}); n != 0 {
		t.Fatalf("job must be rolled back, found %d", n)
	}
	if n := countRows(t, db, &models.Appointment{}); n != 0 {
		t.Fatalf("appointments must be rolled back, found %d", n)
	}
	assertStatus(t, db, p.ID, models.ProjectStatusAccepted)
}

func TestSaveJobDetails_ProjectLeftAccepted(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(1), "500", "300", "0")
	svc := newJobService(db)

	// another writer cancels the project after the gate has read it
	if err := db.Callback().Update().Before("gorm:update").Register("test:cancel_project", func(tx *gorm.DB) {
		if tx.Statement.Table == "projects" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE projects SET status = ? WHERE id = ?", models.ProjectStatusCancelled, p.ID)
		}
	}); err != nil {
		t.Fatal(err)
	}

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-07-01"}})
	_, err := svc.SaveJobDetails(context.Background(), p.ID, draft)
	if !errors.Is(err, ErrProjectStatusChanged) {
		t.Fatalf("expected ErrProjectStatusChanged got %v", err)
	}
	if n := countRows(t, db, &models.Job{}); n != 0 {
		t.Fatalf("job must be rolled back, found %d", n)
	}
	var got models.Project
	if err := db.First(&got, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status == models.ProjectStatusScheduled {
		t.Fatalf("project must not be scheduled")
	}
}

func TestSaveJobDetails_MaterialOnlyWithoutAppointments(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	seedQuote(t, db, p.ID, models.InstallationMaterial, nil, "800", "0", "0")
	svc := newJobService(db)

	res, err := svc.SaveJobDetails(context.Background(), p.ID, scheduling.NewJobDraft(0, scheduling.JobFields{PONumber: "PO-1"}, nil))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Job.PONumber != "PO-1" || len(res.Job.Appointments) != 0 {
		t.Fatalf("unexpected job %+v", res.Job)
	}
	assertStatus(t, db, p.ID, models.ProjectStatusAccepted)
}

func TestSaveJobDetails_ResaveKeepsAppointmentIDs(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(1), "500", "0", "0")
	svc := newJobService(db)
	ctx := context.Background()

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{
		{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-07-01"},
		{Name: "Part 2", QuoteID: &q.ID, StartDate: "2025-07-08"},
	})
	if _, err := svc.SaveJobDetails(ctx, p.ID, draft); err != nil {
		t.Fatalf("first save: %v", err)
	}

	view, err := svc.GetJob(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	appts := view.Draft.Appointments()
	if len(appts) != 2 || appts[0].ID == 0 {
		t.Fatalf("unexpected saved appointments: %+v", appts)
	}
	keptID := appts[0].ID
	next, err := view.Draft.RemoveAppointment(appts[1].Key)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := next.First()
	first.Name = "Kitchen"
	if next, err = next.WithAppointment(first); err != nil {
		t.Fatal(err)
	}
	res, err := svc.SaveJobDetails(ctx, p.ID, next)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(res.Job.Appointments) != 1 {
		t.Fatalf("expected 1 appointment after removal, got %d", len(res.Job.Appointments))
	}
	if got := res.Job.Appointments[0]; got.ID != keptID || got.Name != "Kitchen" {
		t.Fatalf("expected appointment %d renamed, got %+v", keptID, got)
	}
	if n := countRows(t, db, &models.Appointment{}); n != 1 {
		t.Fatalf("expected removed appointment deleted, found %d rows", n)
	}
}

func TestSaveJobDetails_FlagsLockedAfterScheduling(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationManaged, uptr(1), "1000", "1000", "50")
	svc := newJobService(db)
	ctx := context.Background()

	appts := []scheduling.AppointmentDraft{{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-07-01"}}
	draft := scheduling.NewJobDraft(0, scheduling.JobFields{DepositReceived: true, ContractsReceived: true}, appts)
	if _, err := svc.SaveJobDetails(ctx, p.ID, draft); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	cleared := scheduling.NewJobDraft(0, scheduling.JobFields{}, appts)
	res, err := svc.SaveJobDetails(ctx, p.ID, cleared)
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if !res.Job.DepositReceived || !res.Job.ContractsReceived {
		t.Fatalf("deposit and contracts must stay received once scheduled")
	}
	if res.Decision.Transition {
		t.Fatalf("already scheduled project must not transition again")
	}
}

func TestSaveJobDetails_InvalidDate(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusQuoting)
	svc := newJobService(db)

	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{{Name: "Part 1", StartDate: "soon"}})
	if _, err := svc.SaveJobDetails(context.Background(), p.ID, draft); !errors.Is(err, scheduling.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate got %v", err)
	}
}

func TestSaveJobDetails_UnknownProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newJobService(db)
	if _, err := svc.SaveJobDetails(context.Background(), 999, scheduling.NewJobDraft(0, scheduling.JobFields{}, nil)); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound got %v", err)
	}
}

func TestGetJob_FreshDraft(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationManaged, uptr(4), "100", "100", "100")
	svc := newJobService(db)

	view, err := svc.GetJob(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Saved || view.Job != nil {
		t.Fatalf("expected unsaved view")
	}
	first, ok := view.Draft.First()
	if !ok || first.Name != "Part 1" || first.QuoteID == nil || *first.QuoteID != q.ID {
		t.Fatalf("expected Part 1 linked to quote %d, got %+v", q.ID, first)
	}
	if !view.Decision.ManagedJob || !view.Decision.SchedulingApplicable {
		t.Fatalf("unexpected decision flags %+v", view.Decision)
	}
	if !view.Summary.TotalDeposit.Equal(dec("200")) {
		t.Fatalf("unexpected deposit %s", view.Summary.TotalDeposit)
	}
}

func TestMarkFinalPaymentReceived(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusAccepted)
	q := seedQuote(t, db, p.ID, models.InstallationUnmanaged, uptr(1), "500", "0", "0")
	svc := newJobService(db)
	ctx := context.Background()

	if _, err := svc.MarkFinalPaymentReceived(ctx, p.ID, true); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound got %v", err)
	}

	// ends after fixedNow
	draft := scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{
		{Name: "Part 1", QuoteID: &q.ID, StartDate: "2025-06-10", EndDate: "2025-06-20"},
	})
	if _, err := svc.SaveJobDetails(ctx, p.ID, draft); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.MarkFinalPaymentReceived(ctx, p.ID, true); !errors.Is(err, scheduling.ErrFinalPaymentTooEarly) {
		t.Fatalf("expected ErrFinalPaymentTooEarly got %v", err)
	}

	svc.Now = func() time.Time { return fixedNow.AddDate(0, 0, 10) }
	job, err := svc.MarkFinalPaymentReceived(ctx, p.ID, true)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !job.FinalPaymentReceived {
		t.Fatalf("expected final payment received")
	}
}

func TestSetOnHold(t *testing.T) {
	db := setupTestDB(t)
	p := seedProject(t, db, models.ProjectStatusQuoting)
	svc := newJobService(db)
	ctx := context.Background()

	if _, err := svc.SaveJobDetails(ctx, p.ID, scheduling.NewJobDraft(0, scheduling.JobFields{}, []scheduling.AppointmentDraft{{Name: "Part 1"}})); err != nil {
		t.Fatalf("save: %v", err)
	}
	job, err := svc.SetOnHold(ctx, p.ID, true)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	var reloaded models.Job
	db.First(&reloaded, job.ID)
	if !reloaded.IsOnHold {
		t.Fatalf("expected job on hold")
	}
}
