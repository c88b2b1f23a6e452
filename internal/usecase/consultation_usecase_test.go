package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/delivery/http/middleware"
	"medconsult-api/internal/domain/entity"
	"medconsult-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeConsultationRepo is an in-memory ConsultationRepository whose transition
// methods hold a single mutex, giving the same all-or-nothing semantics as the
// database transaction they stand in for.
type fakeConsultationRepo struct {
	mu            sync.Mutex
	consultations map[uuid.UUID]*entity.Consultation
	assignments   map[uuid.UUID]uuid.UUID
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{
		consultations: make(map[uuid.UUID]*entity.Consultation),
		assignments:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeConsultationRepo) add(c entity.Consultation) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == entity.ConsultationStatusAccepted && c.DoctorID != nil {
		r.assignments[*c.DoctorID] = c.ID
	}
	r.consultations[c.ID] = &c
	return c.ID
}

func (r *fakeConsultationRepo) Create(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	consultation.ID = uuid.New()
	stored := *consultation
	r.consultations[stored.ID] = &stored
	return nil
}

func (r *fakeConsultationRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConsultationRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.PatientID == patientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.DoctorID != nil && *c.DoctorID == doctorID && (status == "" || c.Status == status) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindRequested(ctx context.Context, db *gorm.DB) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.Status == entity.ConsultationStatusRequested {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindAll(ctx context.Context, db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Consultation
	for _, c := range r.consultations {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) Claim(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.assignments[doctorID]; busy {
		return repository.ErrDoctorOccupied
	}
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusRequested || c.DoctorID != nil {
		return repository.ErrStateConflict
	}
	d := doctorID
	t := at
	c.DoctorID = &d
	c.Status = entity.ConsultationStatusAccepted
	c.AcceptanceTime = &t
	r.assignments[doctorID] = id
	return nil
}

func (r *fakeConsultationRepo) Complete(ctx context.Context, db *gorm.DB, id, doctorID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusAccepted || c.DoctorID == nil || *c.DoctorID != doctorID {
		return repository.ErrStateConflict
	}
	t := at
	c.Status = entity.ConsultationStatusCompleted
	c.CompletionTime = &t
	delete(r.assignments, doctorID)
	return nil
}

func (r *fakeConsultationRepo) Cancel(ctx context.Context, db *gorm.DB, id, patientID uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusRequested || c.PatientID != patientID {
		return repository.ErrStateConflict
	}
	c.Status = entity.ConsultationStatusCancelled
	c.CancellationReason = reason
	return nil
}

func (r *fakeConsultationRepo) FindBusyDoctorIDs(ctx context.Context, db *gorm.DB, doctorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	busy := make(map[uuid.UUID]bool)
	for _, id := range doctorIDs {
		if _, ok := r.assignments[id]; ok {
			busy[id] = true
		}
	}
	return busy, nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) LogCreate(ctx context.Context, db *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogUpdate(ctx context.Context, db *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestConsultationUsecase() (ConsultationUsecase, *fakeConsultationRepo, *fakeAuditService) {
	repo := newFakeConsultationRepo()
	audit := &fakeAuditService{}
	uc := NewConsultationUsecase(nil, testLogger(), repo, audit)
	return uc, repo, audit
}

func patientCtx(patientID uuid.UUID) context.Context {
	return middleware.WithIdentity(context.Background(), patientID, entity.RoleIDPatient)
}

func doctorCtx(doctorID uuid.UUID) context.Context {
	return middleware.WithIdentity(context.Background(), doctorID, entity.RoleIDDoctor)
}

func requestedConsultation(patientID uuid.UUID) entity.Consultation {
	return entity.Consultation{
		PatientID:        patientID,
		Status:           entity.ConsultationStatusRequested,
		ConsultationType: entity.ConsultationTypeGeneral,
		LocationAddress:  "Jl. Kemang Raya No. 12",
		Symptoms:         "persistent fever and headache",
		RequestTime:      time.Now().UTC(),
	}
}

func TestConsultationLifecycle(t *testing.T) {
	uc, repo, audit := newTestConsultationUsecase()
	patientID := uuid.New()
	doctorID := uuid.New()

	created, err := uc.RequestConsultation(patientCtx(patientID), &dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Kemang Raya No. 12"},
		Symptoms: "persistent fever and headache for two days",
	})
	if err != nil {
		t.Fatalf("RequestConsultation failed: %v", err)
	}
	if created.Status != string(entity.ConsultationStatusRequested) {
		t.Fatalf("expected status requested, got %s", created.Status)
	}
	if created.ConsultationType != string(entity.ConsultationTypeGeneral) {
		t.Fatalf("expected default type general, got %s", created.ConsultationType)
	}

	accepted, err := uc.AcceptConsultation(doctorCtx(doctorID), created.ID)
	if err != nil {
		t.Fatalf("AcceptConsultation failed: %v", err)
	}
	if accepted.Status != string(entity.ConsultationStatusAccepted) {
		t.Fatalf("expected status accepted, got %s", accepted.Status)
	}
	if accepted.DoctorID == nil || *accepted.DoctorID != doctorID {
		t.Fatal("expected consultation assigned to accepting doctor")
	}
	if accepted.AcceptanceTime == nil {
		t.Fatal("expected acceptance time to be set")
	}

	completed, err := uc.CompleteConsultation(doctorCtx(doctorID), created.ID)
	if err != nil {
		t.Fatalf("CompleteConsultation failed: %v", err)
	}
	if completed.Status != string(entity.ConsultationStatusCompleted) {
		t.Fatalf("expected status completed, got %s", completed.Status)
	}
	if completed.CompletionTime == nil {
		t.Fatal("expected completion time to be set")
	}
	if completed.AcceptanceTime == nil || !completed.CompletionTime.After(*completed.AcceptanceTime) {
		t.Fatal("expected completion time after acceptance time")
	}

	// Completion must free the doctor for the next request
	nextID := repo.add(requestedConsultation(patientID))
	if _, err := uc.AcceptConsultation(doctorCtx(doctorID), nextID); err != nil {
		t.Fatalf("doctor should be free after completion, got: %v", err)
	}

	wantActions := []string{
		entity.AuditActionConsultationRequest,
		entity.AuditActionConsultationAccept,
		entity.AuditActionConsultationComplete,
		entity.AuditActionConsultationAccept,
	}
	if len(audit.actions) != len(wantActions) {
		t.Fatalf("expected %d audit entries, got %d", len(wantActions), len(audit.actions))
	}
	for i, want := range wantActions {
		if audit.actions[i] != want {
			t.Errorf("audit entry %d: expected %s, got %s", i, want, audit.actions[i])
		}
	}
}

func TestRequestConsultationValidation(t *testing.T) {
	uc, _, _ := newTestConsultationUsecase()
	ctx := patientCtx(uuid.New())

	_, err := uc.RequestConsultation(ctx, &dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Sudirman 1"},
		Symptoms: "too short",
	})
	if !errors.Is(err, ErrSymptomsTooShort) {
		t.Errorf("expected ErrSymptomsTooShort, got %v", err)
	}

	_, err = uc.RequestConsultation(ctx, &dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "   "},
		Symptoms: "persistent fever and headache",
	})
	if !errors.Is(err, ErrAddressRequired) {
		t.Errorf("expected ErrAddressRequired, got %v", err)
	}

	_, err = uc.RequestConsultation(ctx, &dto.RequestConsultationRequest{
		Location:         dto.LocationRequest{Address: "Jl. Sudirman 1"},
		Symptoms:         "persistent fever and headache",
		ConsultationType: "urgent",
	})
	if !errors.Is(err, ErrInvalidConsultationType) {
		t.Errorf("expected ErrInvalidConsultationType, got %v", err)
	}
}

func TestRequestConsultationSymptomsLengthCountsRunes(t *testing.T) {
	uc, _, _ := newTestConsultationUsecase()
	ctx := patientCtx(uuid.New())

	// 9 runes, 18 bytes: must be rejected on rune count
	_, err := uc.RequestConsultation(ctx, &dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Sudirman 1"},
		Symptoms: "ééééééééé",
	})
	if !errors.Is(err, ErrSymptomsTooShort) {
		t.Errorf("expected ErrSymptomsTooShort for 9 runes, got %v", err)
	}

	_, err = uc.RequestConsultation(ctx, &dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Sudirman 1"},
		Symptoms: "éééééééééé",
	})
	if err != nil {
		t.Errorf("expected 10 runes to be accepted, got %v", err)
	}
}

func TestAcceptConsultationConcurrentDoctors(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	const doctors = 8
	var wg sync.WaitGroup
	errs := make([]error, doctors)

	for i := 0; i < doctors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrConsultationUnavailable):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winning doctor, got %d", winners)
	}
}

func TestAcceptConsultationDoctorAlreadyBusy(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	doctorID := uuid.New()
	firstID := repo.add(requestedConsultation(uuid.New()))
	secondID := repo.add(requestedConsultation(uuid.New()))

	if _, err := uc.AcceptConsultation(doctorCtx(doctorID), firstID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	_, err := uc.AcceptConsultation(doctorCtx(doctorID), secondID)
	if !errors.Is(err, ErrDoctorHasActive) {
		t.Fatalf("expected ErrDoctorHasActive, got %v", err)
	}

	// The losing accept must not have touched the second consultation
	second, _ := repo.FindByID(context.Background(), nil, secondID)
	if !second.IsRequested() || second.DoctorID != nil {
		t.Fatal("failed accept must leave the consultation untouched")
	}
}

func TestAcceptConsultationConcurrentSameDoctor(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	doctorID := uuid.New()

	const requests = 6
	ids := make([]uuid.UUID, requests)
	for i := range ids {
		ids[i] = repo.add(requestedConsultation(uuid.New()))
	}

	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.AcceptConsultation(doctorCtx(doctorID), ids[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDoctorHasActive):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected the doctor to win exactly 1 claim, got %d", wins)
	}
}

func TestAcceptConsultationAlreadyHeldByOtherDoctor(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	if _, err := uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	// A second, idle doctor must be told the consultation is gone, not that
	// they are busy.
	_, err := uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID)
	if !errors.Is(err, ErrConsultationUnavailable) {
		t.Fatalf("expected ErrConsultationUnavailable, got %v", err)
	}
}

func TestAcceptConsultationNotFound(t *testing.T) {
	uc, _, _ := newTestConsultationUsecase()

	_, err := uc.AcceptConsultation(doctorCtx(uuid.New()), uuid.New())
	if !errors.Is(err, ErrConsultationNotFound) {
		t.Fatalf("expected ErrConsultationNotFound, got %v", err)
	}
}

func TestCancelConsultation(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	patientID := uuid.New()
	consultationID := repo.add(requestedConsultation(patientID))

	cancelled, err := uc.CancelConsultation(patientCtx(patientID), consultationID, &dto.CancelConsultationRequest{Reason: "feeling better"})
	if err != nil {
		t.Fatalf("CancelConsultation failed: %v", err)
	}
	if cancelled.Status != string(entity.ConsultationStatusCancelled) {
		t.Fatalf("expected status cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancellationReason != "feeling better" {
		t.Fatalf("expected cancellation reason recorded, got %q", cancelled.CancellationReason)
	}

	// Cancelled consultations can no longer be accepted
	_, err = uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID)
	if !errors.Is(err, ErrConsultationUnavailable) {
		t.Fatalf("expected ErrConsultationUnavailable, got %v", err)
	}
}

func TestCancelConsultationAfterAcceptance(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	patientID := uuid.New()
	consultationID := repo.add(requestedConsultation(patientID))

	if _, err := uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := uc.CancelConsultation(patientCtx(patientID), consultationID, nil)
	if !errors.Is(err, ErrCancellationClosed) {
		t.Fatalf("expected ErrCancellationClosed, got %v", err)
	}
}

func TestCancelConsultationNotOwner(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	_, err := uc.CancelConsultation(patientCtx(uuid.New()), consultationID, nil)
	if !errors.Is(err, ErrNotConsultationOwner) {
		t.Fatalf("expected ErrNotConsultationOwner, got %v", err)
	}
}

func TestCompleteConsultationWrongDoctor(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	if _, err := uc.AcceptConsultation(doctorCtx(uuid.New()), consultationID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := uc.CompleteConsultation(doctorCtx(uuid.New()), consultationID)
	if !errors.Is(err, ErrNotAssignedDoctor) {
		t.Fatalf("expected ErrNotAssignedDoctor, got %v", err)
	}
}

func TestCompleteConsultationNotAccepted(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	_, err := uc.CompleteConsultation(doctorCtx(uuid.New()), consultationID)
	if !errors.Is(err, ErrCompletionNotAllowed) {
		t.Fatalf("expected ErrCompletionNotAllowed, got %v", err)
	}
}

func TestGetConsultationAuthorization(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	patientID := uuid.New()
	doctorID := uuid.New()
	consultationID := repo.add(requestedConsultation(patientID))

	if _, err := uc.AcceptConsultation(doctorCtx(doctorID), consultationID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	cases := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"owning patient", patientCtx(patientID), nil},
		{"assigned doctor", doctorCtx(doctorID), nil},
		{"admin", middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDAdmin), nil},
		{"other patient", patientCtx(uuid.New()), ErrNotAuthorizedToView},
		{"other doctor", doctorCtx(uuid.New()), ErrNotAuthorizedToView},
		{"unknown role", middleware.WithIdentity(context.Background(), uuid.New(), 99), ErrNotAuthorizedToView},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.GetConsultation(tc.ctx, consultationID)
			if !errors.Is(err, tc.wantErr) && !(tc.wantErr == nil && err == nil) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGetDoctorConsultationsStatusFilter(t *testing.T) {
	uc, repo, _ := newTestConsultationUsecase()
	doctorID := uuid.New()
	consultationID := repo.add(requestedConsultation(uuid.New()))

	if _, err := uc.AcceptConsultation(doctorCtx(doctorID), consultationID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := uc.CompleteConsultation(doctorCtx(doctorID), consultationID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	list, err := uc.GetDoctorConsultations(doctorCtx(doctorID), "completed")
	if err != nil {
		t.Fatalf("GetDoctorConsultations failed: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 completed consultation, got %d", list.Total)
	}

	empty, err := uc.GetDoctorConsultations(doctorCtx(doctorID), "accepted")
	if err != nil {
		t.Fatalf("GetDoctorConsultations failed: %v", err)
	}
	if empty.Total != 0 {
		t.Fatalf("expected 0 accepted consultations, got %d", empty.Total)
	}

	_, err = uc.GetDoctorConsultations(doctorCtx(doctorID), "bogus")
	if !errors.Is(err, ErrInvalidStatusFilter) {
		t.Fatalf("expected ErrInvalidStatusFilter, got %v", err)
	}
}
