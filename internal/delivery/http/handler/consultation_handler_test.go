package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/usecase"
	"medconsult-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// stubConsultationUsecase returns a fixed error (or a fixed response when the
// error is nil) for every operation.
type stubConsultationUsecase struct {
	err error
}

func (s *stubConsultationUsecase) result() (*dto.ConsultationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ConsultationResponse{ID: uuid.New(), Status: "requested"}, nil
}

func (s *stubConsultationUsecase) list() (*dto.ConsultationListResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ConsultationListResponse{}, nil
}

func (s *stubConsultationUsecase) RequestConsultation(ctx context.Context, req *dto.RequestConsultationRequest) (*dto.ConsultationResponse, error) {
	return s.result()
}

func (s *stubConsultationUsecase) AcceptConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	return s.result()
}

func (s *stubConsultationUsecase) CompleteConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	return s.result()
}

func (s *stubConsultationUsecase) CancelConsultation(ctx context.Context, consultationID uuid.UUID, req *dto.CancelConsultationRequest) (*dto.ConsultationResponse, error) {
	return s.result()
}

func (s *stubConsultationUsecase) GetConsultation(ctx context.Context, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	return s.result()
}

func (s *stubConsultationUsecase) GetAvailableConsultations(ctx context.Context) (*dto.ConsultationListResponse, error) {
	return s.list()
}

func (s *stubConsultationUsecase) GetPatientConsultations(ctx context.Context) (*dto.ConsultationListResponse, error) {
	return s.list()
}

func (s *stubConsultationUsecase) GetDoctorConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error) {
	return s.list()
}

func (s *stubConsultationUsecase) GetAllConsultations(ctx context.Context, statusFilter string) (*dto.ConsultationListResponse, error) {
	return s.list()
}

func newIDRequest(method string) *http.Request {
	r := httptest.NewRequest(method, "/consultations/"+uuid.New().String(), nil)
	return mux.SetURLVars(r, map[string]string{"id": uuid.New().String()})
}

func TestAcceptConsultationStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", usecase.ErrConsultationNotFound, http.StatusNotFound},
		{"already claimed", usecase.ErrConsultationUnavailable, http.StatusBadRequest},
		{"doctor busy", usecase.ErrDoctorHasActive, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewConsultationHandler(&stubConsultationUsecase{err: tc.err}, validator.NewValidator())
			w := httptest.NewRecorder()

			h.AcceptConsultation(w, newIDRequest(http.MethodPut))

			if w.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestCompleteConsultationStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", usecase.ErrConsultationNotFound, http.StatusNotFound},
		{"wrong doctor", usecase.ErrNotAssignedDoctor, http.StatusForbidden},
		{"not accepted", usecase.ErrCompletionNotAllowed, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewConsultationHandler(&stubConsultationUsecase{err: tc.err}, validator.NewValidator())
			w := httptest.NewRecorder()

			h.CompleteConsultation(w, newIDRequest(http.MethodPut))

			if w.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestCancelConsultationStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", usecase.ErrConsultationNotFound, http.StatusNotFound},
		{"not owner", usecase.ErrNotConsultationOwner, http.StatusForbidden},
		{"window closed", usecase.ErrCancellationClosed, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewConsultationHandler(&stubConsultationUsecase{err: tc.err}, validator.NewValidator())
			w := httptest.NewRecorder()

			h.CancelConsultation(w, newIDRequest(http.MethodPut))

			if w.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestRequestConsultationRejectsInvalidBody(t *testing.T) {
	h := NewConsultationHandler(&stubConsultationUsecase{}, validator.NewValidator())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/consultations/request", strings.NewReader("{not json"))
	h.RequestConsultation(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}

	body, _ := json.Marshal(dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Kemang Raya No. 12"},
		Symptoms: "short",
	})
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/consultations/request", strings.NewReader(string(body)))
	h.RequestConsultation(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short symptoms, got %d", w.Code)
	}
}

func TestRequestConsultationSuccess(t *testing.T) {
	h := NewConsultationHandler(&stubConsultationUsecase{}, validator.NewValidator())

	body, _ := json.Marshal(dto.RequestConsultationRequest{
		Location: dto.LocationRequest{Address: "Jl. Kemang Raya No. 12"},
		Symptoms: "persistent fever and headache",
	})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/consultations/request", strings.NewReader(string(body)))
	h.RequestConsultation(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success envelope")
	}
}
