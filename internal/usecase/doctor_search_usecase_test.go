package usecase

import (
	"context"
	"strings"
	"testing"

	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeDoctorProfileRepo struct {
	profiles []entity.DoctorProfile
}

func (r *fakeDoctorProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	r.profiles = append(r.profiles, *profile)
	return nil
}

func (r *fakeDoctorProfileRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	for i := range r.profiles {
		if r.profiles[i].UserID == userID {
			copied := r.profiles[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeDoctorProfileRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.DoctorProfile, error) {
	return append([]entity.DoctorProfile(nil), r.profiles...), nil
}

func (r *fakeDoctorProfileRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	for i := range r.profiles {
		if r.profiles[i].UserID == profile.UserID {
			r.profiles[i] = *profile
			return nil
		}
	}
	return nil
}

func (r *fakeDoctorProfileRepo) Search(ctx context.Context, db *gorm.DB, filter entity.DoctorSearchFilter) ([]entity.DoctorProfile, error) {
	var out []entity.DoctorProfile
	for _, p := range r.profiles {
		if !p.IsSearchable() || !p.User.Active() {
			continue
		}
		if filter.Area != "" && !strings.Contains(strings.ToLower(p.Area), strings.ToLower(filter.Area)) {
			continue
		}
		if filter.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(filter.City)) {
			continue
		}
		if filter.Specialization != "" && !strings.Contains(strings.ToLower(p.Specialization), strings.ToLower(filter.Specialization)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakePatientProfileRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func (r *fakePatientProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	if r.profiles == nil {
		r.profiles = make(map[uuid.UUID]*entity.PatientProfile)
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakePatientProfileRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePatientProfileRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func searchableDoctor(name, area, city, specialization string) entity.DoctorProfile {
	return entity.DoctorProfile{
		UserID:             uuid.New(),
		LicenseNumber:      "LIC-" + uuid.New().String()[:8],
		Specialization:     specialization,
		Area:               area,
		City:               city,
		VerificationStatus: entity.VerificationStatusApproved,
		IsOnboarded:        true,
		User: entity.User{
			FullName: name,
			IsActive: entity.BoolPtr(true),
		},
	}
}

func newTestSearch(doctors []entity.DoctorProfile, patientArea string) (DoctorSearchUsecase, *fakeConsultationRepo, uuid.UUID) {
	patientID := uuid.New()
	patientRepo := &fakePatientProfileRepo{
		profiles: map[uuid.UUID]*entity.PatientProfile{
			patientID: {UserID: patientID, Area: patientArea, City: "Jakarta"},
		},
	}
	consultationRepo := newFakeConsultationRepo()
	uc := NewDoctorSearchUsecase(nil, testLogger(), &fakeDoctorProfileRepo{profiles: doctors}, patientRepo, consultationRepo)
	return uc, consultationRepo, patientID
}

func TestSearchDoctorsDefaultsToSavedArea(t *testing.T) {
	kemang := searchableDoctor("Dr. Andi", "Kemang", "Jakarta", "general")
	menteng := searchableDoctor("Dr. Budi", "Menteng", "Jakarta", "general")
	uc, _, patientID := newTestSearch([]entity.DoctorProfile{kemang, menteng}, "Kemang")

	result, err := uc.SearchDoctors(patientCtx(patientID), &dto.SearchDoctorsRequest{})
	if err != nil {
		t.Fatalf("SearchDoctors failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 doctor in saved area, got %d", result.Total)
	}
	if result.Doctors[0].ID != kemang.UserID {
		t.Fatal("expected doctor from the patient's saved area")
	}
	if !result.Doctors[0].IsAvailable {
		t.Fatal("expected listed doctor to be flagged available")
	}
}

func TestSearchDoctorsExplicitFilterOverridesSavedArea(t *testing.T) {
	kemang := searchableDoctor("Dr. Andi", "Kemang", "Jakarta", "general")
	menteng := searchableDoctor("Dr. Budi", "Menteng", "Jakarta", "general")
	uc, _, patientID := newTestSearch([]entity.DoctorProfile{kemang, menteng}, "Kemang")

	result, err := uc.SearchDoctors(patientCtx(patientID), &dto.SearchDoctorsRequest{Area: "Menteng"})
	if err != nil {
		t.Fatalf("SearchDoctors failed: %v", err)
	}
	if result.Total != 1 || result.Doctors[0].ID != menteng.UserID {
		t.Fatal("explicit area filter must override the saved area")
	}
}

func TestSearchDoctorsBySpecialization(t *testing.T) {
	generalist := searchableDoctor("Dr. Andi", "Kemang", "Jakarta", "general practice")
	pediatrician := searchableDoctor("Dr. Citra", "Kemang", "Jakarta", "pediatrics")
	uc, _, patientID := newTestSearch([]entity.DoctorProfile{generalist, pediatrician}, "Kemang")

	result, err := uc.SearchDoctors(patientCtx(patientID), &dto.SearchDoctorsRequest{Specialization: "pedia"})
	if err != nil {
		t.Fatalf("SearchDoctors failed: %v", err)
	}
	if result.Total != 1 || result.Doctors[0].ID != pediatrician.UserID {
		t.Fatal("expected only the matching specialization")
	}
}

func TestSearchDoctorsExcludesBusyDoctors(t *testing.T) {
	free := searchableDoctor("Dr. Andi", "Kemang", "Jakarta", "general")
	busy := searchableDoctor("Dr. Budi", "Kemang", "Jakarta", "general")
	uc, consultationRepo, patientID := newTestSearch([]entity.DoctorProfile{free, busy}, "Kemang")

	busyID := busy.UserID
	consultationRepo.add(entity.Consultation{
		PatientID: uuid.New(),
		DoctorID:  &busyID,
		Status:    entity.ConsultationStatusAccepted,
	})

	result, err := uc.SearchDoctors(patientCtx(patientID), &dto.SearchDoctorsRequest{})
	if err != nil {
		t.Fatalf("SearchDoctors failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected busy doctor excluded, got %d doctors", result.Total)
	}
	if result.Doctors[0].ID != free.UserID {
		t.Fatal("expected only the free doctor in results")
	}
}
