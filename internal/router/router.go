package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clinichq/clinic-api/internal/config"
	"github.com/clinichq/clinic-api/internal/handler"
	adminhandler "github.com/clinichq/clinic-api/internal/handler/admin"
	appointmenthandler "github.com/clinichq/clinic-api/internal/handler/appointment"
	authhandler "github.com/clinichq/clinic-api/internal/handler/auth"
	patienthandler "github.com/clinichq/clinic-api/internal/handler/patient"
	paymenthandler "github.com/clinichq/clinic-api/internal/handler/payment"
	"github.com/clinichq/clinic-api/internal/middleware"
	"github.com/clinichq/clinic-api/internal/model"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authhandler.Handler
	patientH     *patienthandler.Handler
	appointmentH *appointmenthandler.Handler
	paymentH     *paymenthandler.Handler
	adminH       *adminhandler.Handler
	h            *handler.Handler
}

func New(
	cfg config.ServerConfig,
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	patientH *patienthandler.Handler,
	appointmentH *appointmenthandler.Handler,
	paymentH *paymenthandler.Handler,
	adminH *adminhandler.Handler,
	h *handler.Handler,
	uploadDir string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if err := middleware.SetupValidation(); err != nil {
		panic(err)
	}

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.NewHTTPMetrics("clinic_api").Handler())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders:    []string{middleware.HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		engine.Use(limiter.RateLimit())
	}

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		patientH:     patientH,
		appointmentH: appointmentH,
		paymentH:     paymentH,
		adminH:       adminH,
		h:            h,
	}
	r.registerRoutes(uploadDir)
	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) registerRoutes(uploadDir string) {
	r.engine.GET("/health/live", r.h.LivenessCheck)
	r.engine.GET("/health/ready", r.h.ReadinessCheck)
	r.engine.GET("/metrics", r.h.MetricsHandler)

	// stored medical files served under their public prefix
	r.engine.Static("/uploads", uploadDir)

	v1 := r.engine.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", r.authH.Login)
		authGroup.POST("/refresh", r.authH.Refresh)
		authGroup.POST("/forgot-password", r.authH.ForgotPassword)
		authGroup.POST("/reset-password", r.authH.ResetPassword)

		authed := authGroup.Group("", r.auth.Authenticate())
		authed.POST("/logout", r.authH.Logout)
		authed.GET("/me", r.authH.Me)
		authed.POST("/register", middleware.RequireRoles(model.RoleAdmin), r.authH.Register)
	}

	patients := v1.Group("/patients", r.auth.Authenticate())
	{
		patients.POST("", middleware.RequireRoles(model.RoleDoctor), r.patientH.CreatePatient)
		patients.GET("", r.patientH.ListPatients)
		patients.GET("/:id", r.patientH.GetPatient)
		patients.PUT("/:id", middleware.RequireRoles(model.RoleDoctor), r.patientH.UpdatePatient)
		patients.DELETE("/:id", middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor), r.patientH.DeletePatient)
		patients.GET("/:id/history", r.patientH.PatientHistory)
		patients.GET("/:id/report", r.patientH.PatientReport)
	}

	appointments := v1.Group("/appointments", r.auth.Authenticate())
	{
		// the workflow itself is open to all three roles; ownership is
		// enforced per record in the service layer
		workflow := middleware.RequireRoles(model.RoleAdmin, model.RoleSecretary, model.RoleDoctor)
		appointments.POST("", workflow, r.appointmentH.CreateAppointment)
		appointments.GET("", r.appointmentH.ListAppointments)
		appointments.GET("/today", r.appointmentH.ListToday)
		appointments.GET("/mine", middleware.RequireRoles(model.RoleDoctor), r.appointmentH.MyAppointments)
		appointments.GET("/payment-status", middleware.RequireRoles(model.RoleAdmin, model.RoleSecretary), r.appointmentH.PaymentStatusList)
		appointments.GET("/:id", r.appointmentH.GetAppointment)
		appointments.DELETE("/:id", workflow, r.appointmentH.DeleteAppointment)

		appointments.POST("/:id/arrived", workflow, r.appointmentH.MarkArrived)
		appointments.POST("/:id/no-show", workflow, r.appointmentH.MarkNoShow)
		appointments.POST("/:id/cancel", workflow, r.appointmentH.MarkCancelled)
		appointments.POST("/:id/reschedule", workflow, r.appointmentH.Reschedule)

		doctor := middleware.RequireRoles(model.RoleDoctor)
		appointments.POST("/:id/notes", doctor, r.appointmentH.AddNotes)
		appointments.POST("/:id/ai-summary", doctor, r.appointmentH.GenerateAISummary)
		appointments.POST("/:id/ai-chat", doctor, r.appointmentH.ChatWithAI)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("/checkout", r.auth.Authenticate(),
			middleware.RequireRoles(model.RoleAdmin, model.RoleSecretary), r.paymentH.CreateCheckout)
		payments.GET("/appointment/:id", r.auth.Authenticate(), r.paymentH.GetByAppointment)

		// checkout return legs; recording a payment requires a signed-in
		// staff session, never an anonymous redirect
		payments.GET("/success", r.auth.Authenticate(), r.paymentH.Success)
		payments.GET("/cancel", r.auth.Authenticate(), r.paymentH.Cancel)
	}

	admin := v1.Group("/admin", r.auth.Authenticate(), middleware.RequireRoles(model.RoleAdmin))
	{
		admin.GET("/statistics", r.adminH.Statistics)
		admin.GET("/users", r.adminH.ListUsers)
		admin.GET("/patients-by-doctor", r.adminH.PatientsByDoctor)
		admin.PUT("/users/:id/role", r.adminH.AssignRole)
	}
}
