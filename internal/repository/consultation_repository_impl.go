package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"medconsult-api/internal/domain/entity"
	domainRepo "medconsult-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error {
	return db.WithContext(ctx).Create(consultation).Error
}

func (r *consultationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Where("id = ?", id).
		First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	query := db.WithContext(ctx).
		Preload("Patient.User").
		Where("doctor_id = ?", doctorID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var consultations []entity.Consultation
	err := query.Order("updated_at DESC").Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindRequested(ctx context.Context, db *gorm.DB) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.WithContext(ctx).
		Preload("Patient.User").
		Where("status = ? AND doctor_id IS NULL", entity.ConsultationStatusRequested).
		Order("request_time ASC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindAll(ctx context.Context, db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	query := db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var consultations []entity.Consultation
	err := query.Order("created_at DESC").Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

// Claim performs the accept transition as one transaction:
//
//  1. INSERT into doctor_active_assignments. The doctor_id primary key makes
//     this fail with a unique violation when the doctor already holds an
//     accepted consultation, regardless of how many workers race here. The
//     consultation_id column is unique too, so the same insert also fails
//     when the request is already held by another doctor; the constraint
//     name tells the two causes apart.
//  2. Conditional UPDATE flipping requested -> accepted, guarded on the
//     current status in the WHERE clause. Zero affected rows means another
//     caller won the request (or it was cancelled) after the caller last
//     read it; the transaction rolls back, taking the assignment row with it.
//
// At most one concurrent Claim can succeed per request and per doctor.
func (r *consultationRepository) Claim(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment := &entity.DoctorActiveAssignment{
			DoctorID:       doctorID,
			ConsultationID: id,
		}
		if err := tx.Create(assignment).Error; err != nil {
			if violated, constraint := uniqueViolation(err); violated {
				if strings.Contains(strings.ToLower(constraint), "consultation_id") {
					return domainRepo.ErrStateConflict
				}
				return domainRepo.ErrDoctorOccupied
			}
			return err
		}

		result := tx.Model(&entity.Consultation{}).
			Where("id = ? AND status = ? AND doctor_id IS NULL", id, entity.ConsultationStatusRequested).
			Updates(map[string]interface{}{
				"doctor_id":       doctorID,
				"status":          entity.ConsultationStatusAccepted,
				"acceptance_time": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrStateConflict
		}
		return nil
	})
}

// Complete flips accepted -> completed guarded on the assigned doctor, and
// frees the doctor's assignment row in the same transaction.
func (r *consultationRepository) Complete(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Consultation{}).
			Where("id = ? AND status = ? AND doctor_id = ?", id, entity.ConsultationStatusAccepted, doctorID).
			Updates(map[string]interface{}{
				"status":          entity.ConsultationStatusCompleted,
				"completion_time": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrStateConflict
		}

		return tx.
			Where("doctor_id = ? AND consultation_id = ?", doctorID, id).
			Delete(&entity.DoctorActiveAssignment{}).Error
	})
}

// Cancel flips requested -> cancelled guarded on the owning patient. A
// requested consultation has no assignment row, so a single statement
// suffices.
func (r *consultationRepository) Cancel(ctx context.Context, db *gorm.DB, id, patientID uuid.UUID, reason string) error {
	result := db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("id = ? AND status = ? AND patient_id = ?", id, entity.ConsultationStatusRequested, patientID).
		Updates(map[string]interface{}{
			"status":              entity.ConsultationStatusCancelled,
			"cancellation_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStateConflict
	}
	return nil
}

func (r *consultationRepository) FindBusyDoctorIDs(ctx context.Context, db *gorm.DB, doctorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	busy := make(map[uuid.UUID]bool)
	if len(doctorIDs) == 0 {
		return busy, nil
	}

	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("doctor_id IN ? AND status = ?", doctorIDs, entity.ConsultationStatusAccepted).
		Pluck("doctor_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		busy[id] = true
	}
	return busy, nil
}

// uniqueViolation checks for a PostgreSQL unique constraint violation and
// reports which constraint fired
func uniqueViolation(err error) (bool, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true, pgErr.ConstraintName
	}
	return false, ""
}
