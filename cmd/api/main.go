package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinichq/clinic-api/pkg/auth"
	"github.com/clinichq/clinic-api/pkg/logger"
	"github.com/clinichq/clinic-api/pkg/metrics"

	"github.com/clinichq/clinic-api/internal/ai"
	"github.com/clinichq/clinic-api/internal/config"
	"github.com/clinichq/clinic-api/internal/email"
	"github.com/clinichq/clinic-api/internal/gateway"
	"github.com/clinichq/clinic-api/internal/handler"
	adminHandler "github.com/clinichq/clinic-api/internal/handler/admin"
	appointmentHandler "github.com/clinichq/clinic-api/internal/handler/appointment"
	authHandler "github.com/clinichq/clinic-api/internal/handler/auth"
	patientHandler "github.com/clinichq/clinic-api/internal/handler/patient"
	paymentHandler "github.com/clinichq/clinic-api/internal/handler/payment"
	"github.com/clinichq/clinic-api/internal/middleware"
	"github.com/clinichq/clinic-api/internal/repository/postgres"
	"github.com/clinichq/clinic-api/internal/repository/redis"
	"github.com/clinichq/clinic-api/internal/router"
	appointmentService "github.com/clinichq/clinic-api/internal/service/appointment"
	authService "github.com/clinichq/clinic-api/internal/service/auth"
	patientService "github.com/clinichq/clinic-api/internal/service/patient"
	paymentService "github.com/clinichq/clinic-api/internal/service/payment"
	statsService "github.com/clinichq/clinic-api/internal/service/stats"
	"github.com/clinichq/clinic-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)
	appMetrics := metrics.New("clinic_api")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	tokenRepo, err := redis.NewTokenRepository(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicalFileRepo := postgres.NewMedicalFileRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	jwtService := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	emailService := email.NewService(cfg.SMTP, cfg.Server.BaseURL)
	fileStore := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicDir)
	aiClient := ai.NewClient(cfg.AI, appMetrics)
	checkoutGateway := gateway.NewStripeGateway(cfg.Payment)

	authSvc := authService.NewService(userRepo, tokenRepo, jwtService, emailService, appLogger)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, medicalFileRepo, fileStore, aiClient, appMetrics)
	paymentSvc := paymentService.NewService(paymentRepo, appointmentRepo, checkoutGateway, cfg.Payment, cfg.Server.BaseURL, appMetrics)
	statsSvc := statsService.NewService(userRepo, patientRepo, appointmentRepo)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenRepo)

	tokenTTL := time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc, tokenTTL)
	patientH := patientHandler.NewHandler(patientSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	paymentH := paymentHandler.NewHandler(paymentSvc)
	adminH := adminHandler.NewHandler(statsSvc, authSvc)

	r := router.New(cfg.Server, authMiddleware, authH, patientH, appointmentH, paymentH, adminH, h, cfg.Storage.UploadDir)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
