package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsultationStatus is the lifecycle state of a consultation.
//
// Transitions: requested -> accepted -> completed, and requested -> cancelled.
// completed and cancelled are terminal. There is no accepted -> cancelled
// edge: once a doctor accepts, the patient's cancellation window is closed.
type ConsultationStatus string

const (
	ConsultationStatusRequested ConsultationStatus = "requested"
	ConsultationStatusAccepted  ConsultationStatus = "accepted"
	ConsultationStatusCompleted ConsultationStatus = "completed"
	ConsultationStatusCancelled ConsultationStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s ConsultationStatus) IsValid() bool {
	switch s {
	case ConsultationStatusRequested, ConsultationStatusAccepted,
		ConsultationStatusCompleted, ConsultationStatusCancelled:
		return true
	}
	return false
}

// ConsultationType categorizes the urgency of a consultation request
type ConsultationType string

const (
	ConsultationTypeGeneral   ConsultationType = "general"
	ConsultationTypeEmergency ConsultationType = "emergency"
)

// MinSymptomsLength is the minimum length of the symptoms description
const MinSymptomsLength = 10

// Consultation represents a home visit consultation request. DoctorID is nil
// until a doctor accepts; acceptance and completion times track the state
// transitions.
type Consultation struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID           *uuid.UUID         `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	Status             ConsultationStatus `gorm:"type:consultation_status;not null;default:'requested';index" json:"status"`
	ConsultationType   ConsultationType   `gorm:"type:consultation_type;not null;default:'general'" json:"consultation_type"`
	LocationAddress    string             `gorm:"type:text;not null" json:"location_address"`
	LocationLatitude   *float64           `gorm:"type:decimal(9,6)" json:"location_latitude,omitempty"`
	LocationLongitude  *float64           `gorm:"type:decimal(9,6)" json:"location_longitude,omitempty"`
	Symptoms           string             `gorm:"type:text;not null" json:"symptoms"`
	ConsultationFee    decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	RequestTime        time.Time          `gorm:"not null;index" json:"request_time"`
	AcceptanceTime     *time.Time         `json:"acceptance_time,omitempty"`
	CompletionTime     *time.Time         `json:"completion_time,omitempty"`
	CancellationReason string             `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
	Doctor  *DoctorProfile  `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) IsRequested() bool {
	return c.Status == ConsultationStatusRequested
}

func (c *Consultation) IsAccepted() bool {
	return c.Status == ConsultationStatusAccepted
}

func (c *Consultation) IsCompleted() bool {
	return c.Status == ConsultationStatusCompleted
}

func (c *Consultation) IsCancelled() bool {
	return c.Status == ConsultationStatusCancelled
}

// IsTerminal reports whether the consultation can undergo no further
// transitions
func (c *Consultation) IsTerminal() bool {
	return c.IsCompleted() || c.IsCancelled()
}

// IsAssignedTo checks whether the consultation is held by the given doctor
func (c *Consultation) IsAssignedTo(doctorID uuid.UUID) bool {
	return c.DoctorID != nil && *c.DoctorID == doctorID
}

// IsOwnedBy checks whether the consultation belongs to the given patient
func (c *Consultation) IsOwnedBy(patientID uuid.UUID) bool {
	return c.PatientID == patientID
}

// Duration returns the time between acceptance and completion, zero if the
// consultation never completed
func (c *Consultation) Duration() time.Duration {
	if c.AcceptanceTime == nil || c.CompletionTime == nil {
		return 0
	}
	return c.CompletionTime.Sub(*c.AcceptanceTime)
}
