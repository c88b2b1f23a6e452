package usecase

import (
	"context"
	"errors"
	"strings"

	"medconsult-api/internal/converter"
	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/delivery/http/middleware"
	"medconsult-api/internal/domain/entity"
	"medconsult-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorSearchUsecase interface {
	SearchDoctors(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorSearchListResponse, error)
}

type doctorSearchUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	consultationRepo   repository.ConsultationRepository
}

func NewDoctorSearchUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	consultationRepo repository.ConsultationRepository,
) DoctorSearchUsecase {
	return &doctorSearchUsecase{
		db:                 db,
		log:                log,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		consultationRepo:   consultationRepo,
	}
}

// SearchDoctors returns doctors a patient may request a consultation from.
//
// The attribute filter (approved, onboarded, active, area/city/specialization
// substring match) runs in the store. When the patient has a saved location
// and gives no explicit area, the saved area is the default filter; explicit
// query parameters always win. Doctors holding an accepted consultation are
// then dropped from the result. That exclusion is a snapshot, not a
// reservation: a listed doctor can become busy before the patient picks one,
// and the atomic claim on accept is what actually prevents double-booking.
func (u *doctorSearchUsecase) SearchDoctors(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorSearchListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	filter := entity.DoctorSearchFilter{
		Area:           strings.TrimSpace(req.Area),
		City:           strings.TrimSpace(req.City),
		Specialization: strings.TrimSpace(req.Specialization),
	}

	if filter.Area == "" {
		patient, err := u.patientProfileRepo.FindByUserID(ctx, u.db, patientID)
		if err != nil {
			u.log.Warnf("Failed to find patient profile %s: %+v", patientID, err)
			return nil, err
		}
		if patient != nil {
			filter.Area = patient.Area
		}
	}

	doctors, err := u.doctorProfileRepo.Search(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, err
	}

	doctorIDs := make([]uuid.UUID, len(doctors))
	for i := range doctors {
		doctorIDs[i] = doctors[i].UserID
	}

	busy, err := u.consultationRepo.FindBusyDoctorIDs(ctx, u.db, doctorIDs)
	if err != nil {
		u.log.Warnf("Failed to find busy doctors: %+v", err)
		return nil, err
	}

	available := make([]dto.DoctorSearchResponse, 0, len(doctors))
	for i := range doctors {
		if busy[doctors[i].UserID] {
			continue
		}
		available = append(available, converter.DoctorProfileToSearchResponse(&doctors[i], true))
	}

	return &dto.DoctorSearchListResponse{
		Doctors: available,
		Total:   len(available),
	}, nil
}
