package http

import (
	"net/http"

	"medconsult-api/internal/delivery/http/handler"
	"medconsult-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	consultationHandler *handler.ConsultationHandler
	doctorHandler       *handler.DoctorHandler
	patientHandler      *handler.PatientHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	consultationHandler *handler.ConsultationHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		consultationHandler: consultationHandler,
		doctorHandler:       doctorHandler,
		patientHandler:      patientHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	patient := api.PathPrefix("").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/consultations/request", r.consultationHandler.RequestConsultation).Methods(http.MethodPost)
	patient.HandleFunc("/consultations/patient/me", r.consultationHandler.GetMyConsultationsAsPatient).Methods(http.MethodGet)
	patient.HandleFunc("/consultations/{id}/cancel", r.consultationHandler.CancelConsultation).Methods(http.MethodPut)
	patient.HandleFunc("/doctors/search", r.doctorHandler.SearchDoctors).Methods(http.MethodGet)
	patient.HandleFunc("/patients/me/profile", r.patientHandler.GetMyProfile).Methods(http.MethodGet)
	patient.HandleFunc("/patients/me/profile", r.patientHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/consultations/available", r.consultationHandler.GetAvailableConsultations).Methods(http.MethodGet)
	doctor.HandleFunc("/consultations/doctor/me", r.consultationHandler.GetMyConsultationsAsDoctor).Methods(http.MethodGet)
	doctor.HandleFunc("/consultations/{id}/accept", r.consultationHandler.AcceptConsultation).Methods(http.MethodPut)
	doctor.HandleFunc("/consultations/{id}/complete", r.consultationHandler.CompleteConsultation).Methods(http.MethodPut)
	doctor.HandleFunc("/doctors/onboard", r.doctorHandler.Onboard).Methods(http.MethodPost)
	doctor.HandleFunc("/doctors/me/onboarding-status", r.doctorHandler.GetOnboardingStatus).Methods(http.MethodGet)
	doctor.HandleFunc("/doctors/me/profile", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctor.HandleFunc("/doctors/me/profile", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Consultation detail (protected - any authenticated role, authorization in usecase)
	consultation := api.PathPrefix("").Subrouter()
	consultation.Use(r.authMiddleware.Authenticate)
	consultation.HandleFunc("/consultations/{id}", r.consultationHandler.GetConsultation).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/consultations", r.consultationHandler.GetAllConsultations).Methods(http.MethodGet)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/verify", r.doctorHandler.VerifyDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
