package converter

import (
	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to ConsultationResponse DTO
func ConsultationToResponse(consultation *entity.Consultation) *dto.ConsultationResponse {
	if consultation == nil {
		return nil
	}

	response := &dto.ConsultationResponse{
		ID:               consultation.ID,
		PatientID:        consultation.PatientID,
		DoctorID:         consultation.DoctorID,
		Status:           string(consultation.Status),
		ConsultationType: string(consultation.ConsultationType),
		Location: dto.LocationResponse{
			Address:   consultation.LocationAddress,
			Latitude:  consultation.LocationLatitude,
			Longitude: consultation.LocationLongitude,
		},
		Symptoms:           consultation.Symptoms,
		ConsultationFee:    consultation.ConsultationFee,
		RequestTime:        consultation.RequestTime,
		AcceptanceTime:     consultation.AcceptanceTime,
		CompletionTime:     consultation.CompletionTime,
		CancellationReason: consultation.CancellationReason,
		CreatedAt:          consultation.CreatedAt,
		UpdatedAt:          consultation.UpdatedAt,
	}

	if consultation.Patient != nil {
		response.Patient = &dto.PatientBriefResponse{
			ID:          consultation.Patient.UserID,
			FullName:    consultation.Patient.User.FullName,
			PhoneNumber: consultation.Patient.PhoneNumber,
			Gender:      consultation.Patient.Gender,
		}
	}

	if consultation.Doctor != nil {
		response.Doctor = &dto.DoctorBriefResponse{
			ID:             consultation.Doctor.UserID,
			FullName:       consultation.Doctor.User.FullName,
			Specialization: consultation.Doctor.Specialization,
		}
	}

	return response
}

// ConsultationsToResponses converts a slice of Consultation entities to response DTOs
func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		resp := ConsultationToResponse(&consultations[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
