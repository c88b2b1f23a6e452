package handler

import (
	"encoding/json"
	"net/http"

	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/usecase"
	"medconsult-api/pkg/response"
	"medconsult-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

func (h *ConsultationHandler) RequestConsultation(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.RequestConsultation(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrSymptomsTooShort:
			response.Error(w, http.StatusBadRequest, "Symptoms description must be at least 10 characters", nil)
		case usecase.ErrAddressRequired:
			response.Error(w, http.StatusBadRequest, "Location address is required", nil)
		case usecase.ErrInvalidConsultationType:
			response.Error(w, http.StatusBadRequest, "Invalid consultation type", nil)
		default:
			response.InternalServerError(w, "Failed to request consultation")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Consultation requested successfully", consultation)
}

func (h *ConsultationHandler) AcceptConsultation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	consultationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.AcceptConsultation(r.Context(), consultationID)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrConsultationUnavailable:
			response.Conflict(w, "Consultation is not available for acceptance")
		case usecase.ErrDoctorHasActive:
			response.Conflict(w, "You already have an active consultation")
		default:
			response.InternalServerError(w, "Failed to accept consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation accepted successfully", consultation)
}

func (h *ConsultationHandler) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	consultationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.CompleteConsultation(r.Context(), consultationID)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrNotAssignedDoctor:
			response.Forbidden(w, "Consultation is assigned to another doctor")
		case usecase.ErrCompletionNotAllowed:
			response.Conflict(w, "Consultation cannot be completed in its current state")
		default:
			response.InternalServerError(w, "Failed to complete consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation completed successfully", consultation)
}

func (h *ConsultationHandler) CancelConsultation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	consultationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	// Body is optional; an empty body means no cancellation reason
	var req dto.CancelConsultationRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.CancelConsultation(r.Context(), consultationID, &req)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrNotConsultationOwner:
			response.Forbidden(w, "Consultation does not belong to you")
		case usecase.ErrCancellationClosed:
			response.Conflict(w, "Consultation can no longer be cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation cancelled successfully", consultation)
}

func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	consultationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.GetConsultation(r.Context(), consultationID)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrNotAuthorizedToView:
			response.Forbidden(w, "Not authorized to view this consultation")
		default:
			response.InternalServerError(w, "Failed to get consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

func (h *ConsultationHandler) GetAvailableConsultations(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.consultationUsecase.GetAvailableConsultations(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get available consultations")
		return
	}

	response.Success(w, http.StatusOK, "Available consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) GetMyConsultationsAsPatient(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.consultationUsecase.GetPatientConsultations(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) GetMyConsultationsAsDoctor(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")

	consultations, err := h.consultationUsecase.GetDoctorConsultations(r.Context(), statusFilter)
	if err != nil {
		switch err {
		case usecase.ErrInvalidStatusFilter:
			response.Error(w, http.StatusBadRequest, "Invalid status filter", nil)
		default:
			response.InternalServerError(w, "Failed to get consultations")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) GetAllConsultations(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")

	consultations, err := h.consultationUsecase.GetAllConsultations(r.Context(), statusFilter)
	if err != nil {
		switch err {
		case usecase.ErrInvalidStatusFilter:
			response.Error(w, http.StatusBadRequest, "Invalid status filter", nil)
		default:
			response.InternalServerError(w, "Failed to get consultations")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}
