package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/internal/finance"
	"github.com/adampdxdotcom/subfloor-sub002/internal/logger"
	"github.com/adampdxdotcom/subfloor-sub002/internal/metrics"
	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/scheduling"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobService saves job details behind the scheduling gate and keeps the job's
// deposit in line with the financial summary.
type JobService struct {
	DB  *gorm.DB
	Log *zap.Logger
	// Loc is the timezone date-only appointment inputs are pinned to.
	Loc *time.Location
	// Now is overridable in tests.
	Now func() time.Time
}

func NewJobService(db *gorm.DB, log *zap.Logger, loc *time.Location) *JobService {
	if loc == nil {
		loc = time.Local
	}
	return &JobService{DB: db, Log: logger.OrNop(log), Loc: loc, Now: time.Now}
}

// JobView is a job opened for editing along with everything derived from it.
type JobView struct {
	ProjectID     uint
	ProjectStatus models.ProjectStatus
	// Saved is false when the project has no job yet; Draft is then a fresh one.
	Saved          bool
	Job            *models.Job
	Draft          scheduling.JobDraft
	AcceptedQuotes []models.Quote
	Decision       scheduling.Decision
	Locks          scheduling.Locks
	Summary        finance.Summary
}

// SaveResult is the outcome of a successful save.
type SaveResult struct {
	Job           *models.Job
	ProjectStatus models.ProjectStatus
	Decision      scheduling.Decision
	Summary       finance.Summary
}

func (s *JobService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *JobService) format(a models.Appointment) (string, string) {
	return scheduling.FormatDate(a.StartDate, s.Loc), scheduling.FormatDate(a.EndDate, s.Loc)
}

func loadJob(db *gorm.DB, projectID uint) (*models.Job, error) {
	var job models.Job
	err := db.Preload("Appointments", orderByPosition).Where("project_id = ?", projectID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob opens the project's job for editing. A project without a job gets a fresh
// draft holding one appointment, linked to the sole accepted quote if there is one.
func (s *JobService) GetJob(ctx context.Context, projectID uint) (*JobView, error) {
	db := s.DB.WithContext(ctx)
	p, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	accepted, err := acceptedQuotes(db, projectID)
	if err != nil {
		return nil, err
	}
	cos, err := projectChangeOrders(db, projectID)
	if err != nil {
		return nil, err
	}
	job, err := loadJob(db, projectID)
	if err != nil {
		return nil, err
	}

	view := &JobView{
		ProjectID:      projectID,
		ProjectStatus:  p.Status,
		AcceptedQuotes: accepted,
		Summary:        finance.Summarize(accepted, cos),
		Decision: scheduling.Decision{
			SchedulingApplicable: scheduling.SchedulingApplicable(accepted),
			ManagedJob:           scheduling.ManagedJob(accepted),
		},
	}
	if job == nil {
		view.Draft = scheduling.NewJobDraft(0, scheduling.JobFields{}, nil).AddAppointment(accepted)
		view.Locks = scheduling.ComputeLocks(p.Status, nil, s.now())
		return view, nil
	}
	view.Saved = true
	view.Job = job
	view.Draft = scheduling.DraftFromJob(job, s.format).LinkSoleQuote(accepted)
	view.Locks = scheduling.ComputeLocks(p.Status, job.Appointments, s.now())
	return view, nil
}

// FinancialSummary reconciles the project's accepted quotes with its change orders.
func (s *JobService) FinancialSummary(ctx context.Context, projectID uint) (finance.Summary, error) {
	db := s.DB.WithContext(ctx)
	if _, err := loadProject(db, projectID); err != nil {
		return finance.Summary{}, err
	}
	accepted, err := acceptedQuotes(db, projectID)
	if err != nil {
		return finance.Summary{}, err
	}
	cos, err := projectChangeOrders(db, projectID)
	if err != nil {
		return finance.Summary{}, err
	}
	return finance.Summarize(accepted, cos), nil
}

// SaveJobDetails validates the draft against the scheduling gate and, if it passes,
// writes the job, its appointments, the deposit amount and any status transition in
// one transaction. A rejection is a *scheduling.RejectionError and nothing is written.
// Storage failures wrap ErrSaveFailed.
func (s *JobService) SaveJobDetails(ctx context.Context, projectID uint, draft scheduling.JobDraft) (*SaveResult, error) {
	db := s.DB.WithContext(ctx)
	p, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	accepted, err := acceptedQuotes(db, projectID)
	if err != nil {
		return nil, err
	}
	cos, err := projectChangeOrders(db, projectID)
	if err != nil {
		return nil, err
	}
	saved, err := loadJob(db, projectID)
	if err != nil {
		return nil, err
	}

	draft = draft.LinkSoleQuote(accepted)
	draft = scheduling.ApplyFlagLocks(p.Status, saved, draft)

	decision, err := scheduling.Evaluate(scheduling.GateInput{
		ProjectStatus:  p.Status,
		AcceptedQuotes: accepted,
		Draft:          draft,
	})
	if err != nil {
		s.recordRejection(projectID, err)
		return nil, err
	}

	rows, err := draft.ToAppointments(s.Loc)
	if err != nil {
		s.recordRejection(projectID, err)
		return nil, err
	}

	status := p.Status
	if decision.Transition {
		status = models.ProjectStatusScheduled
	}
	fields := draft.Fields()
	wasReceived := saved != nil && saved.FinalPaymentReceived
	if err := scheduling.CheckFinalPayment(status, rows, wasReceived, fields.FinalPaymentReceived, s.now()); err != nil {
		s.recordRejection(projectID, err)
		return nil, err
	}

	summary := finance.Summarize(accepted, cos)
	job := saved
	if job == nil {
		job = &models.Job{ProjectID: projectID}
	}
	job.PONumber = fields.PONumber
	job.DepositReceived = fields.DepositReceived
	job.ContractsReceived = fields.ContractsReceived
	job.FinalPaymentReceived = fields.FinalPaymentReceived
	job.IsOnHold = fields.IsOnHold
	job.DepositAmount = summary.DepositAmount()

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(job).Error; err != nil {
			return err
		}
		if err := replaceAppointments(tx, job, rows); err != nil {
			return err
		}
		if decision.Transition {
			res := tx.Model(&models.Project{}).
				Where("id = ? AND status = ?", projectID, models.ProjectStatusAccepted).
				Update("status", models.ProjectStatusScheduled)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrProjectStatusChanged
			}
		}
		return nil
	})
	if errors.Is(err, ErrProjectStatusChanged) {
		metrics.IncrementJobSave(metrics.OutcomeRejected)
		s.Log.Warn("job save lost status race", zap.Uint("project_id", projectID))
		return nil, err
	}
	if err != nil {
		metrics.IncrementJobSave(metrics.OutcomeFailed)
		s.Log.Error("job save failed", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	reloaded, err := loadJob(db, projectID)
	if err != nil || reloaded == nil {
		reloaded = job
		reloaded.Appointments = rows
	}

	outcome := metrics.OutcomeSaved
	if decision.Transition {
		outcome = metrics.OutcomeScheduled
	}
	metrics.IncrementJobSave(outcome)
	deposit, _ := job.DepositAmount.Float64()
	metrics.ObserveDeposit(deposit)
	s.Log.Info("job saved",
		zap.Uint("project_id", projectID),
		zap.Uint("job_id", job.ID),
		zap.Bool("scheduled", decision.Transition),
		zap.String("deposit_amount", job.DepositAmount.StringFixed(2)),
		zap.Int("appointments", len(rows)),
	)
	return &SaveResult{Job: reloaded, ProjectStatus: status, Decision: decision, Summary: summary}, nil
}

var appointmentColumns = []string{"job_id", "position", "name", "quote_id", "installer_id", "start_date", "end_date", "updated_at"}

// replaceAppointments makes the job's stored appointments match rows. Rows keep their
// id only if it already belongs to this job.
func replaceAppointments(tx *gorm.DB, job *models.Job, rows []models.Appointment) error {
	var existing []uint
	if err := tx.Model(&models.Appointment{}).Where("job_id = ?", job.ID).Pluck("id", &existing).Error; err != nil {
		return err
	}
	owned := make(map[uint]bool, len(existing))
	for _, id := range existing {
		owned[id] = true
	}
	keep := make([]uint, 0, len(rows))
	for i := range rows {
		rows[i].JobID = job.ID
		if !owned[rows[i].ID] {
			rows[i].ID = 0
			continue
		}
		keep = append(keep, rows[i].ID)
	}

	del := tx.Where("job_id = ?", job.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.Appointment{}).Error; err != nil {
		return err
	}
	for i := range rows {
		if rows[i].ID == 0 {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(&rows[i]).Select(appointmentColumns).Updates(rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *JobService) recordRejection(projectID uint, err error) {
	reason := "invalid_input"
	var rej *scheduling.RejectionError
	if errors.As(err, &rej) {
		reason = rej.Err.Error()
	}
	metrics.IncrementJobSave(metrics.OutcomeRejected)
	metrics.IncrementSchedulingRejection(reason)
	s.Log.Info("job save rejected", zap.Uint("project_id", projectID), zap.String("reason", reason))
}

// MarkFinalPaymentReceived sets or clears the final payment flag. Setting it is refused
// until the job is scheduled and its last appointment has ended.
func (s *JobService) MarkFinalPaymentReceived(ctx context.Context, projectID uint, received bool) (*models.Job, error) {
	db := s.DB.WithContext(ctx)
	p, err := loadProject(db, projectID)
	if err != nil {
		return nil, err
	}
	job, err := loadJob(db, projectID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if err := scheduling.CheckFinalPayment(p.Status, job.Appointments, job.FinalPaymentReceived, received, s.now()); err != nil {
		return nil, err
	}
	if err := db.Model(job).Update("final_payment_received", received).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	job.FinalPaymentReceived = received
	return job, nil
}

// SetOnHold puts a job on hold or takes it off.
func (s *JobService) SetOnHold(ctx context.Context, projectID uint, onHold bool) (*models.Job, error) {
	db := s.DB.WithContext(ctx)
	if _, err := loadProject(db, projectID); err != nil {
		return nil, err
	}
	job, err := loadJob(db, projectID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if err := db.Model(job).Update("is_on_hold", onHold).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	job.IsOnHold = onHold
	return job, nil
}
