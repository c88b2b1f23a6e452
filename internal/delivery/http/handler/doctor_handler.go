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

type DoctorHandler struct {
	doctorProfileUsecase usecase.DoctorProfileUsecase
	doctorSearchUsecase  usecase.DoctorSearchUsecase
	validator            *validator.CustomValidator
}

func NewDoctorHandler(
	doctorProfileUsecase usecase.DoctorProfileUsecase,
	doctorSearchUsecase usecase.DoctorSearchUsecase,
	validator *validator.CustomValidator,
) *DoctorHandler {
	return &DoctorHandler{
		doctorProfileUsecase: doctorProfileUsecase,
		doctorSearchUsecase:  doctorSearchUsecase,
		validator:            validator,
	}
}

// SearchDoctors lists doctors available to the calling patient. Filters come
// from query parameters; with no area given, the patient's saved area applies.
func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	req := dto.SearchDoctorsRequest{
		Area:           r.URL.Query().Get("area"),
		City:           r.URL.Query().Get("city"),
		Specialization: r.URL.Query().Get("specialization"),
	}

	doctors, err := h.doctorSearchUsecase.SearchDoctors(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to search doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.doctorProfileUsecase.GetMyProfile(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		default:
			response.InternalServerError(w, "Failed to get doctor profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", profile)
}

func (h *DoctorHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorProfileUsecase.UpdateMyProfile(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		default:
			response.InternalServerError(w, "Failed to update doctor profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile updated successfully", profile)
}

func (h *DoctorHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req dto.OnboardDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorProfileUsecase.Onboard(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		case usecase.ErrDoctorNotVerified:
			response.Forbidden(w, "Doctor is not verified yet")
		default:
			response.InternalServerError(w, "Failed to onboard doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor onboarded successfully", profile)
}

func (h *DoctorHandler) GetOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.doctorProfileUsecase.GetOnboardingStatus(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		default:
			response.InternalServerError(w, "Failed to get onboarding status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Onboarding status retrieved successfully", status)
}

func (h *DoctorHandler) VerifyDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var req dto.VerifyDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorProfileUsecase.VerifyDoctor(r.Context(), doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrDoctorAlreadyDecided:
			response.Error(w, http.StatusConflict, "Doctor verification already decided", nil)
		case usecase.ErrInvalidDecision:
			response.Error(w, http.StatusBadRequest, "Invalid verification decision", nil)
		default:
			response.InternalServerError(w, "Failed to verify doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor verification updated successfully", profile)
}

func (h *DoctorHandler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorProfileUsecase.GetAllDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}
