package services

import (
	"errors"
	"fmt"

	"github.com/adampdxdotcom/subfloor-sub002/validation"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound   = errors.New("project_not_found")
	ErrQuoteNotFound     = errors.New("quote_not_found")
	ErrJobNotFound       = errors.New("job_not_found")
	ErrInstallerNotFound = errors.New("installer_not_found")
	ErrValidation        = errors.New("validation_failed")
	ErrProjectClosed     = errors.New("project_closed")
	ErrQuoteNotDecidable = errors.New("quote_not_decidable")
	ErrQuoteNotInProject = errors.New("quote_not_in_project")
	ErrStatusNotAllowed  = errors.New("status_not_allowed")
	ErrSaveFailed        = errors.New("failed to save job details")

	// ErrProjectStatusChanged means the project left Accepted while a job save was
	// scheduling it.
	ErrProjectStatusChanged = errors.New("project_status_changed")
)

// ValidationError carries the offending fields of a rejected input.
type ValidationError struct {
	Err    error
	Fields validation.Violations
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v", e.Err.Error(), map[string]string(e.Fields))
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(v validation.Violations) error {
	return &ValidationError{Err: ErrValidation, Fields: v}
}

// notFound maps gorm's record-not-found to the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
