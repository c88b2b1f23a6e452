package repository

import (
	"context"
	"errors"

	"medconsult-api/internal/domain/entity"
	domainRepo "medconsult-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *doctorProfileRepository) Search(ctx context.Context, db *gorm.DB, filter entity.DoctorSearchFilter) ([]entity.DoctorProfile, error) {
	query := db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("doctor_profiles.verification_status = ?", entity.VerificationStatusApproved).
		Where("doctor_profiles.is_onboarded = ?", true).
		Where("users.is_active = ?", true)

	if filter.Area != "" {
		query = query.Where("doctor_profiles.area ILIKE ?", "%"+filter.Area+"%")
	}
	if filter.City != "" {
		query = query.Where("doctor_profiles.city ILIKE ?", "%"+filter.City+"%")
	}
	if filter.Specialization != "" {
		query = query.Where("doctor_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
	}

	var profiles []entity.DoctorProfile
	err := query.Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
