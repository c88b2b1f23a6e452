package repository

import (
	"context"

	"medconsult-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error

	// Search returns doctors matching the filter that are approved,
	// onboarded and on an active account. Filter fields are applied as
	// case-insensitive substring matches.
	Search(ctx context.Context, db *gorm.DB, filter entity.DoctorSearchFilter) ([]entity.DoctorProfile, error)
}
