package repository

import (
	"context"
	"errors"
	"time"

	"medconsult-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrStateConflict is returned by Claim, Complete and Cancel when the
	// guarded UPDATE matched zero rows: the record's current state (or its
	// owner/assignee) no longer satisfies the transition's precondition.
	// Callers re-read the record to tell not-found, ownership and state
	// conflicts apart.
	ErrStateConflict = errors.New("consultation state does not allow this transition")

	// ErrDoctorOccupied is returned by Claim when the doctor already holds
	// an accepted consultation (unique violation on the assignment row).
	ErrDoctorOccupied = errors.New("doctor already holds an active consultation")
)

// ConsultationRepository is the durable consultation store. The three
// transition methods are single atomic conditional updates: the current
// status (and, where relevant, the acting party) is part of the WHERE
// clause, never checked in a separate read. Claim and Complete also
// maintain the one-row-per-busy-doctor assignment table inside the same
// transaction, so no interleaving of concurrent callers can hand one
// request to two doctors or two requests to one doctor.
type ConsultationRepository interface {
	Create(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, status entity.ConsultationStatus) ([]entity.Consultation, error)

	// FindRequested returns all claimable consultations ordered by request
	// time ascending (first come, first served visibility).
	FindRequested(ctx context.Context, db *gorm.DB) ([]entity.Consultation, error)

	// FindAll returns every consultation, optionally filtered by status.
	FindAll(ctx context.Context, db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error)

	// Claim atomically transitions the consultation from requested to
	// accepted for the given doctor and records the active assignment.
	// Returns ErrDoctorOccupied if the doctor already holds a consultation,
	// ErrStateConflict if the record is missing or no longer requested.
	Claim(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error

	// Complete atomically transitions the consultation from accepted to
	// completed, guarded on the assigned doctor, and releases the
	// doctor's active assignment.
	Complete(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error

	// Cancel atomically transitions the consultation from requested to
	// cancelled, guarded on the owning patient.
	Cancel(ctx context.Context, db *gorm.DB, id, patientID uuid.UUID, reason string) error

	// FindBusyDoctorIDs returns the subset of the given doctors that
	// currently hold an accepted consultation.
	FindBusyDoctorIDs(ctx context.Context, db *gorm.DB, doctorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}
