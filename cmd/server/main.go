package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"vehiculos/internal/api"
	"vehiculos/internal/auth"
	"vehiculos/internal/config"
	"vehiculos/internal/eligibility"
	"vehiculos/internal/geo"
	"vehiculos/internal/repository"
	"vehiculos/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	vehicleRepo := repository.NewVehicleRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	geocoder := geo.NewClient(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.HomeRegion)
	policy := eligibility.HourThresholdPolicy{
		LocalHours:  cfg.SecondDriverHours,
		RemoteHours: cfg.SecondDriverHours,
	}

	reservationSvc := service.NewReservationService(
		vehicleRepo, reservationRepo, driverRepo, userRepo, geocoder, policy,
		service.AdvanceNotice{LocalDays: cfg.AdvanceDaysLocal, RemoteDays: cfg.AdvanceDaysRemote},
		cfg.HomeRegion,
	)
	authSvc := service.NewUserAuthService(userRepo, cfg.JWTSecret, cfg.EmailDomain)
	jobSvc := service.NewJobService(jobRepo, time.Duration(cfg.PendingDigestAgeHours)*time.Hour)

	userHandler := api.NewUserReservationHandler(reservationSvc)
	adminHandler := api.NewAdminHandler(reservationSvc)
	authHandler := api.NewAuthHandler(authSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/vehicles", userHandler.ListVehicles).Methods("GET")

	// Authenticated endpoints
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.Middleware(cfg.JWTSecret))
	user.HandleFunc("/auth/profile", authHandler.Profile).Methods("GET")
	user.HandleFunc("/reservations/availability", userHandler.CheckAvailability).Methods("POST")
	user.HandleFunc("/reservations/suggestions", userHandler.SuggestDestinations).Methods("GET")
	user.HandleFunc("/reservations/mine", userHandler.ListMyReservations).Methods("GET")
	user.HandleFunc("/reservations", userHandler.CreateReservation).Methods("POST")
	user.HandleFunc("/reservations", userHandler.ListReservations).Methods("GET")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware(cfg.JWTSecret), auth.AdminOnly)
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}/authorize", adminHandler.AuthorizeReservation).Methods("POST")
	admin.HandleFunc("/reservations/{id}/reject", adminHandler.RejectReservation).Methods("POST")

	c := cron.New()
	if _, err := c.AddFunc("0 8 * * *", func() {
		if err := jobSvc.SendPendingDigest(); err != nil {
			log.Printf("Pending digest job failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule pending digest job: %v", err)
	}
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(log.Writer(), corsHandler(r))))
}
