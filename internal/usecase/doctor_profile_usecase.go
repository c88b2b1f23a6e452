package usecase

import (
	"context"
	"errors"

	"medconsult-api/internal/converter"
	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/delivery/http/middleware"
	"medconsult-api/internal/domain/entity"
	"medconsult-api/internal/domain/repository"
	"medconsult-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrDoctorNotVerified    = errors.New("doctor is not verified yet")
	ErrDoctorAlreadyDecided = errors.New("doctor verification already decided")
	ErrInvalidDecision      = errors.New("invalid verification decision")
)

type DoctorProfileUsecase interface {
	GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
	Onboard(ctx context.Context, req *dto.OnboardDoctorRequest) (*dto.DoctorResponse, error)
	GetOnboardingStatus(ctx context.Context) (*dto.OnboardingStatusResponse, error)
	VerifyDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.VerifyDoctorRequest) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	userRepo          repository.UserRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		userRepo:          userRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	oldProfile := *profile

	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.MedicalSchool != "" {
		profile.MedicalSchool = req.MedicalSchool
	}
	if req.Area != "" {
		profile.Area = req.Area
	}
	if req.City != "" {
		profile.City = req.City
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}

	if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile %s: %+v", userID, err)
		return nil, err
	}

	if req.FullName != "" {
		profile.User.FullName = req.FullName
		if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
			u.log.Warnf("Failed to update user %s: %+v", userID, err)
			return nil, err
		}
	}

	u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionProfileUpdate, "doctor_profiles", userID.String(), oldProfile, profile)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// Onboard completes the doctor's practice setup after verification: practice
// location, fee and biography. A doctor only appears in patient search once
// verified, onboarded and active.
func (u *doctorProfileUsecase) Onboard(ctx context.Context, req *dto.OnboardDoctorRequest) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if profile.VerificationStatus != entity.VerificationStatusApproved {
		return nil, ErrDoctorNotVerified
	}

	profile.Area = req.Area
	profile.City = req.City
	profile.ConsultationFee = req.ConsultationFee
	profile.Biography = req.Biography
	profile.IsOnboarded = true

	if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to onboard doctor %s: %+v", userID, err)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionDoctorOnboard, "doctor_profiles", userID.String(), nil, profile)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetOnboardingStatus(ctx context.Context) (*dto.OnboardingStatusResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return &dto.OnboardingStatusResponse{
		IsOnboarded:        profile.IsOnboarded,
		VerificationStatus: string(profile.VerificationStatus),
		IsActive:           profile.User.Active(),
		Area:               profile.Area,
		City:               profile.City,
		ConsultationFee:    profile.ConsultationFee,
	}, nil
}

// VerifyDoctor records the admin's verification decision. Approval activates
// the doctor's account so they can log in; rejection leaves it inactive.
func (u *doctorProfileUsecase) VerifyDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.VerifyDoctorRequest) (*dto.DoctorResponse, error) {
	adminID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	decision := entity.VerificationStatus(req.Decision)
	if decision != entity.VerificationStatusApproved && decision != entity.VerificationStatusRejected {
		return nil, ErrInvalidDecision
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if profile.VerificationStatus != entity.VerificationStatusPending {
		return nil, ErrDoctorAlreadyDecided
	}

	oldStatus := profile.VerificationStatus
	profile.VerificationStatus = decision

	if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor verification %s: %+v", doctorID, err)
		return nil, err
	}

	if decision == entity.VerificationStatusApproved {
		profile.User.IsActive = entity.BoolPtr(true)
		if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
			u.log.Warnf("Failed to activate doctor account %s: %+v", doctorID, err)
			return nil, err
		}
	}

	u.auditService.LogUpdate(ctx, tx, &adminID, entity.AuditActionDoctorVerify, "doctor_profiles", doctorID.String(),
		map[string]interface{}{"verification_status": oldStatus},
		map[string]interface{}{"verification_status": decision})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(profiles),
		Total:   len(profiles),
	}, nil
}
