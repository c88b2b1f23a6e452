package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus represents the admin review state of a doctor account
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// DoctorProfile represents doctor-specific profile data.
// A doctor only becomes eligible for patient searches once verification is
// approved, onboarding is complete and the account is active.
type DoctorProfile struct {
	UserID             uuid.UUID          `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber      string             `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization     string             `gorm:"type:varchar(100);not null;index" json:"specialization"`
	MedicalSchool      string             `gorm:"type:varchar(255)" json:"medical_school,omitempty"`
	YearsOfExperience  int                `gorm:"not null;default:0" json:"years_of_experience"`
	Area               string             `gorm:"type:varchar(100);index:idx_doctor_profiles_area_city" json:"area,omitempty"`
	City               string             `gorm:"type:varchar(100);index:idx_doctor_profiles_area_city" json:"city,omitempty"`
	ConsultationFee    decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	Biography          string             `gorm:"type:text" json:"biography,omitempty"`
	VerificationStatus VerificationStatus `gorm:"type:verification_status;not null;default:'pending';index" json:"verification_status"`
	IsOnboarded        bool               `gorm:"not null;default:false" json:"is_onboarded"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Consultations []Consultation `gorm:"foreignKey:DoctorID" json:"consultations,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsSearchable checks if the doctor may be offered consultation requests
func (d *DoctorProfile) IsSearchable() bool {
	return d.VerificationStatus == VerificationStatusApproved && d.IsOnboarded
}
