package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"medconsult-api/internal/converter"
	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/delivery/http/middleware"
	"medconsult-api/internal/domain/entity"
	"medconsult-api/internal/domain/repository"
	"medconsult-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound    = errors.New("consultation not found")
	ErrSymptomsTooShort        = errors.New("symptoms description must be at least 10 characters")
	ErrAddressRequired         = errors.New("location address is required")
	ErrInvalidConsultationType = errors.New("invalid consultation type")
	ErrInvalidStatusFilter     = errors.New("invalid status filter")
	ErrConsultationUnavailable = errors.New("consultation is not available for acceptance")
	ErrDoctorHasActive         = errors.New("you already have an active consultation")
	ErrNotAssignedDoctor       = errors.New("consultation is assigned to another doctor")
	ErrNotConsultationOwner    = errors.New("consultation does not belong to you")
	ErrCompletionNotAllowed    = errors.New("consultation cannot be completed in its current state")
	ErrCancellationClosed      = errors.New("consultation can no longer be cancelled")
	ErrNotAuthorizedToView     = errors.New("not authorized to view this consultation")
)

type ConsultationUsecase interface {
	RequestConsultation(ctx context.Context, req *dto.RequestConsultationRequest) (*dto.ConsultationResponse, error)
	AcceptConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error)
	CompleteConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error)
	CancelConsultation(ctx context.Context, consultationID uuid.UUID, req *dto.CancelConsultationRequest) (*dto.ConsultationResponse, error)
	GetConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error)
	GetAvailableConsultations(ctx context.Context) (*dto.ConsultationListResponse, error)
	GetPatientConsultations(ctx context.Context) (*dto.ConsultationListResponse, error)
	GetDoctorConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error)
	GetAllConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error)
}

type consultationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	auditService     service.AuditService
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	auditService service.AuditService,
) ConsultationUsecase {
	return &consultationUsecase{
		db:               db,
		log:              log,
		consultationRepo: consultationRepo,
		auditService:     auditService,
	}
}

// RequestConsultation creates a new consultation in the requested state. The
// record becomes visible to doctors polling the available queue immediately.
func (u *consultationUsecase) RequestConsultation(ctx context.Context, req *dto.RequestConsultationRequest) (*dto.ConsultationResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.Symptoms)) < entity.MinSymptomsLength {
		return nil, ErrSymptomsTooShort
	}
	if strings.TrimSpace(req.Location.Address) == "" {
		return nil, ErrAddressRequired
	}

	consultationType := entity.ConsultationType(req.ConsultationType)
	if consultationType == "" {
		consultationType = entity.ConsultationTypeGeneral
	}
	if consultationType != entity.ConsultationTypeGeneral && consultationType != entity.ConsultationTypeEmergency {
		return nil, ErrInvalidConsultationType
	}

	consultation := &entity.Consultation{
		PatientID:         patientID,
		Status:            entity.ConsultationStatusRequested,
		ConsultationType:  consultationType,
		LocationAddress:   strings.TrimSpace(req.Location.Address),
		LocationLatitude:  req.Location.Latitude,
		LocationLongitude: req.Location.Longitude,
		Symptoms:          strings.TrimSpace(req.Symptoms),
		ConsultationFee:   decimal.Zero,
		RequestTime:       time.Now().UTC(),
	}

	if err := u.consultationRepo.Create(ctx, u.db, consultation); err != nil {
		u.log.Warnf("Failed to create consultation for patient %s: %+v", patientID, err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, u.db, &patientID, entity.AuditActionConsultationRequest,
		"consultation", consultation.ID.String(), string(consultation.Status)); err != nil {
		u.log.Warnf("Failed to write audit log: %+v", err)
	}

	u.log.Infof("Consultation requested: id=%s, patient=%s, type=%s", consultation.ID, patientID, consultationType)
	return u.reload(ctx, consultation)
}

// AcceptConsultation claims a requested consultation for the calling doctor.
// The claim is a single atomic unit of work in the store; this method never
// decides the outcome from a prior read. Concurrent accepts of the same
// request, and concurrent accepts by the same doctor of different requests,
// resolve to exactly one winner.
func (u *consultationUsecase) AcceptConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	consultation, err := u.consultationRepo.FindByID(ctx, u.db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	err = u.consultationRepo.Claim(ctx, u.db, consultationID, doctorID, time.Now().UTC())
	switch {
	case errors.Is(err, repository.ErrDoctorOccupied):
		u.log.Infof("Accept rejected: doctor %s already holds an active consultation", doctorID)
		return nil, ErrDoctorHasActive
	case errors.Is(err, repository.ErrStateConflict):
		// Lost the race or the request was cancelled since the read above.
		// Re-read so the log names the actual cause.
		current, findErr := u.consultationRepo.FindByID(ctx, u.db, consultationID)
		if findErr == nil && current == nil {
			return nil, ErrConsultationNotFound
		}
		if findErr == nil {
			u.log.Infof("Accept rejected: consultation %s is %s", consultationID, current.Status)
		}
		return nil, ErrConsultationUnavailable
	case err != nil:
		u.log.Warnf("Failed to claim consultation %s for doctor %s: %+v", consultationID, doctorID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, u.db, &doctorID, entity.AuditActionConsultationAccept,
		"consultation", consultationID.String(),
		string(entity.ConsultationStatusRequested), string(entity.ConsultationStatusAccepted)); err != nil {
		u.log.Warnf("Failed to write audit log: %+v", err)
	}

	u.log.Infof("Consultation accepted: id=%s, doctor=%s", consultationID, doctorID)
	return u.reloadByID(ctx, consultationID)
}

// CompleteConsultation finishes an accepted consultation. Only the assigned
// doctor may complete it; the conditional write re-checks both the status
// and the assignment, so a stale read here can delay but never corrupt.
func (u *consultationUsecase) CompleteConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	consultation, err := u.consultationRepo.FindByID(ctx, u.db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if consultation.DoctorID != nil && !consultation.IsAssignedTo(doctorID) {
		return nil, ErrNotAssignedDoctor
	}
	if !consultation.IsAccepted() {
		return nil, ErrCompletionNotAllowed
	}

	err = u.consultationRepo.Complete(ctx, u.db, consultationID, doctorID, time.Now().UTC())
	if errors.Is(err, repository.ErrStateConflict) {
		return nil, ErrCompletionNotAllowed
	}
	if err != nil {
		u.log.Warnf("Failed to complete consultation %s: %+v", consultationID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, u.db, &doctorID, entity.AuditActionConsultationComplete,
		"consultation", consultationID.String(),
		string(entity.ConsultationStatusAccepted), string(entity.ConsultationStatusCompleted)); err != nil {
		u.log.Warnf("Failed to write audit log: %+v", err)
	}

	u.log.Infof("Consultation completed: id=%s, doctor=%s", consultationID, doctorID)
	return u.reloadByID(ctx, consultationID)
}

// CancelConsultation withdraws a consultation that no doctor has claimed yet.
// Only the owning patient may cancel, and only while the status is still
// requested; once a doctor accepts, the cancellation window is closed.
func (u *consultationUsecase) CancelConsultation(ctx context.Context, consultationID uuid.UUID, req *dto.CancelConsultationRequest) (*dto.ConsultationResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	consultation, err := u.consultationRepo.FindByID(ctx, u.db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if !consultation.IsOwnedBy(patientID) {
		return nil, ErrNotConsultationOwner
	}
	if !consultation.IsRequested() {
		return nil, ErrCancellationClosed
	}

	var reason string
	if req != nil {
		reason = strings.TrimSpace(req.Reason)
	}

	err = u.consultationRepo.Cancel(ctx, u.db, consultationID, patientID, reason)
	if errors.Is(err, repository.ErrStateConflict) {
		// A doctor accepted between the read and the write.
		return nil, ErrCancellationClosed
	}
	if err != nil {
		u.log.Warnf("Failed to cancel consultation %s: %+v", consultationID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, u.db, &patientID, entity.AuditActionConsultationCancel,
		"consultation", consultationID.String(),
		string(entity.ConsultationStatusRequested), string(entity.ConsultationStatusCancelled)); err != nil {
		u.log.Warnf("Failed to write audit log: %+v", err)
	}

	u.log.Infof("Consultation cancelled: id=%s, patient=%s", consultationID, patientID)
	return u.reloadByID(ctx, consultationID)
}

// GetConsultation returns a single consultation, visible to the owning
// patient, the assigned doctor and admins.
func (u *consultationUsecase) GetConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return nil, errors.New("role not found in context")
	}

	consultation, err := u.consultationRepo.FindByID(ctx, u.db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	switch roleID {
	case entity.RoleIDAdmin:
		// Admins may view any consultation.
	case entity.RoleIDPatient:
		if !consultation.IsOwnedBy(userID) {
			return nil, ErrNotAuthorizedToView
		}
	case entity.RoleIDDoctor:
		if !consultation.IsAssignedTo(userID) {
			return nil, ErrNotAuthorizedToView
		}
	default:
		return nil, ErrNotAuthorizedToView
	}

	return converter.ConsultationToResponse(consultation), nil
}

// GetAvailableConsultations returns the open request queue for doctors,
// oldest request first. No specialization filter is applied on this side.
func (u *consultationUsecase) GetAvailableConsultations(ctx context.Context) (*dto.ConsultationListResponse, error) {
	consultations, err := u.consultationRepo.FindRequested(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find requested consultations: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// GetPatientConsultations returns the calling patient's consultation history
func (u *consultationUsecase) GetPatientConsultations(ctx context.Context) (*dto.ConsultationListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	consultations, err := u.consultationRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find consultations for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// GetDoctorConsultations returns the calling doctor's consultations,
// optionally filtered by status
func (u *consultationUsecase) GetDoctorConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}

	consultations, err := u.consultationRepo.FindByDoctorID(ctx, u.db, doctorID, status)
	if err != nil {
		u.log.Warnf("Failed to find consultations for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// GetAllConsultations returns every consultation for administrative review
func (u *consultationUsecase) GetAllConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error) {
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}

	consultations, err := u.consultationRepo.FindAll(ctx, u.db, status)
	if err != nil {
		u.log.Warnf("Failed to find consultations: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

func parseStatusFilter(statusFilter string) (entity.ConsultationStatus, error) {
	if statusFilter == "" {
		return "", nil
	}
	status := entity.ConsultationStatus(statusFilter)
	if !status.IsValid() {
		return "", ErrInvalidStatusFilter
	}
	return status, nil
}

func (u *consultationUsecase) reload(ctx context.Context, consultation *entity.Consultation) (*dto.ConsultationResponse, error) {
	full, err := u.consultationRepo.FindByID(ctx, u.db, consultation.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload consultation %s: %+v", consultation.ID, err)
		return converter.ConsultationToResponse(consultation), nil
	}
	return converter.ConsultationToResponse(full), nil
}

func (u *consultationUsecase) reloadByID(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	full, err := u.consultationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to reload consultation %s: %+v", id, err)
		return nil, err
	}
	if full == nil {
		return nil, ErrConsultationNotFound
	}
	return converter.ConsultationToResponse(full), nil
}
