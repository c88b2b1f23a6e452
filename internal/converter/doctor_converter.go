package converter

import (
	"medconsult-api/internal/delivery/dto"
	"medconsult-api/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                 profile.UserID,
		Email:              profile.User.Email,
		FullName:           profile.User.FullName,
		LicenseNumber:      profile.LicenseNumber,
		Specialization:     profile.Specialization,
		MedicalSchool:      profile.MedicalSchool,
		YearsOfExperience:  profile.YearsOfExperience,
		Area:               profile.Area,
		City:               profile.City,
		ConsultationFee:    profile.ConsultationFee,
		Biography:          profile.Biography,
		VerificationStatus: string(profile.VerificationStatus),
		IsOnboarded:        profile.IsOnboarded,
		IsActive:           profile.User.Active(),
	}
}

// DoctorProfilesToResponses converts a slice of DoctorProfile entities to response DTOs
func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}

// DoctorProfileToSearchResponse converts a DoctorProfile to a search result row
func DoctorProfileToSearchResponse(profile *entity.DoctorProfile, isAvailable bool) dto.DoctorSearchResponse {
	return dto.DoctorSearchResponse{
		ID:              profile.UserID,
		FullName:        profile.User.FullName,
		Specialization:  profile.Specialization,
		Area:            profile.Area,
		City:            profile.City,
		ConsultationFee: profile.ConsultationFee,
		Biography:       profile.Biography,
		IsAvailable:     isAvailable,
	}
}
