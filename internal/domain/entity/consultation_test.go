package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestConsultationStatusIsValid(t *testing.T) {
	valid := []ConsultationStatus{
		ConsultationStatusRequested,
		ConsultationStatusAccepted,
		ConsultationStatusCompleted,
		ConsultationStatusCancelled,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	for _, s := range []ConsultationStatus{"", "pending", "REQUESTED", "done"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestConsultationStateHelpers(t *testing.T) {
	c := &Consultation{Status: ConsultationStatusRequested}
	if !c.IsRequested() || c.IsTerminal() {
		t.Error("requested consultation must be non-terminal")
	}

	c.Status = ConsultationStatusAccepted
	if !c.IsAccepted() || c.IsTerminal() {
		t.Error("accepted consultation must be non-terminal")
	}

	c.Status = ConsultationStatusCompleted
	if !c.IsCompleted() || !c.IsTerminal() {
		t.Error("completed consultation must be terminal")
	}

	c.Status = ConsultationStatusCancelled
	if !c.IsCancelled() || !c.IsTerminal() {
		t.Error("cancelled consultation must be terminal")
	}
}

func TestConsultationOwnershipAndAssignment(t *testing.T) {
	patientID := uuid.New()
	doctorID := uuid.New()

	c := &Consultation{PatientID: patientID}
	if !c.IsOwnedBy(patientID) {
		t.Error("expected consultation owned by its patient")
	}
	if c.IsOwnedBy(uuid.New()) {
		t.Error("expected consultation not owned by another patient")
	}

	if c.IsAssignedTo(doctorID) {
		t.Error("unassigned consultation must not be assigned to anyone")
	}
	c.DoctorID = &doctorID
	if !c.IsAssignedTo(doctorID) {
		t.Error("expected consultation assigned to its doctor")
	}
	if c.IsAssignedTo(uuid.New()) {
		t.Error("expected consultation not assigned to another doctor")
	}
}

func TestConsultationDuration(t *testing.T) {
	c := &Consultation{}
	if c.Duration() != 0 {
		t.Error("expected zero duration without acceptance and completion")
	}

	accepted := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	completed := accepted.Add(45 * time.Minute)
	c.AcceptanceTime = &accepted
	c.CompletionTime = &completed

	if c.Duration() != 45*time.Minute {
		t.Errorf("expected 45m duration, got %s", c.Duration())
	}
}
