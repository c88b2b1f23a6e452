package entity

// DoctorSearchFilter is a domain-level filter for the doctor search.
// Used by repository layer to avoid coupling with delivery DTOs.
// All fields are case-insensitive substring matches (ILIKE).
type DoctorSearchFilter struct {
	Area           string
	City           string
	Specialization string
}
