package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorActiveAssignment pins a doctor to the single consultation they
// currently hold. DoctorID is the primary key, so the database itself rejects
// a second concurrent acceptance by the same doctor; the row is inserted in
// the accepting transaction and deleted when the consultation completes.
type DoctorActiveAssignment struct {
	DoctorID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	ConsultationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"consultation_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DoctorActiveAssignment) TableName() string {
	return "doctor_active_assignments"
}
