package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type LocationRequest struct {
	Address   string   `json:"address" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type RequestConsultationRequest struct {
	Location         LocationRequest `json:"location" validate:"required"`
	Symptoms         string          `json:"symptoms" validate:"required,min=10"`
	ConsultationType string          `json:"consultation_type" validate:"omitempty,oneof=general emergency"`
}

type CancelConsultationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Response DTOs

type LocationResponse struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type ConsultationResponse struct {
	ID                 uuid.UUID             `json:"id"`
	PatientID          uuid.UUID             `json:"patient_id"`
	DoctorID           *uuid.UUID            `json:"doctor_id,omitempty"`
	Status             string                `json:"status"`
	ConsultationType   string                `json:"consultation_type"`
	Location           LocationResponse      `json:"location"`
	Symptoms           string                `json:"symptoms"`
	ConsultationFee    decimal.Decimal       `json:"consultation_fee"`
	RequestTime        time.Time             `json:"request_time"`
	AcceptanceTime     *time.Time            `json:"acceptance_time,omitempty"`
	CompletionTime     *time.Time            `json:"completion_time,omitempty"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	Patient            *PatientBriefResponse `json:"patient,omitempty"`
	Doctor             *DoctorBriefResponse  `json:"doctor,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int                    `json:"total"`
}
