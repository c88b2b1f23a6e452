package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type OnboardDoctorRequest struct {
	Area            string          `json:"area" validate:"required"`
	City            string          `json:"city" validate:"required"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
	Biography       string          `json:"biography" validate:"omitempty,max=2000"`
}

type UpdateDoctorProfileRequest struct {
	FullName       string `json:"full_name" validate:"omitempty,min=2"`
	Specialization string `json:"specialization" validate:"omitempty"`
	MedicalSchool  string `json:"medical_school" validate:"omitempty"`
	Area           string `json:"area" validate:"omitempty"`
	City           string `json:"city" validate:"omitempty"`
	Biography      string `json:"biography" validate:"omitempty,max=2000"`
}

type VerifyDoctorRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

type SearchDoctorsRequest struct {
	Area           string `json:"area"`
	City           string `json:"city"`
	Specialization string `json:"specialization"`
}

// Response DTOs

type DoctorResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Email              string          `json:"email"`
	FullName           string          `json:"full_name"`
	LicenseNumber      string          `json:"license_number"`
	Specialization     string          `json:"specialization"`
	MedicalSchool      string          `json:"medical_school,omitempty"`
	YearsOfExperience  int             `json:"years_of_experience"`
	Area               string          `json:"area,omitempty"`
	City               string          `json:"city,omitempty"`
	ConsultationFee    decimal.Decimal `json:"consultation_fee"`
	Biography          string          `json:"biography,omitempty"`
	VerificationStatus string          `json:"verification_status"`
	IsOnboarded        bool            `json:"is_onboarded"`
	IsActive           bool            `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

// DoctorBriefResponse is the doctor summary embedded in consultation payloads
type DoctorBriefResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Specialization string    `json:"specialization"`
}

// DoctorSearchResponse is a doctor row in patient search results. IsAvailable
// is a query-time snapshot: the doctor held no accepted consultation when the
// search ran.
type DoctorSearchResponse struct {
	ID              uuid.UUID       `json:"id"`
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	Area            string          `json:"area,omitempty"`
	City            string          `json:"city,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	Biography       string          `json:"biography,omitempty"`
	IsAvailable     bool            `json:"is_available"`
}

type DoctorSearchListResponse struct {
	Doctors []DoctorSearchResponse `json:"doctors"`
	Total   int                    `json:"total"`
}

type OnboardingStatusResponse struct {
	IsOnboarded        bool            `json:"is_onboarded"`
	VerificationStatus string          `json:"verification_status"`
	IsActive           bool            `json:"is_active"`
	Area               string          `json:"area,omitempty"`
	City               string          `json:"city,omitempty"`
	ConsultationFee    decimal.Decimal `json:"consultation_fee"`
}
