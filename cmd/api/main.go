package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/handlers"
	"github.com/bellamoda/salon-bookings/internal/mailer"
	"github.com/bellamoda/salon-bookings/internal/ratelimit"
	"github.com/bellamoda/salon-bookings/internal/reminder"
	"github.com/bellamoda/salon-bookings/internal/repository"
	"github.com/bellamoda/salon-bookings/internal/schedule"
	"github.com/bellamoda/salon-bookings/internal/service"
	"github.com/bellamoda/salon-bookings/pkg/config"
	"github.com/bellamoda/salon-bookings/pkg/database"
	"github.com/bellamoda/salon-bookings/pkg/events"
	"github.com/bellamoda/salon-bookings/pkg/logger"
	"github.com/bellamoda/salon-bookings/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()
	loc := schedule.Location(cfg.Business.UTCOffsetHours)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	appointmentRepo := repository.NewAppointmentRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	mail := selectMailer(cfg)

	bookingSvc := service.NewBookingService(appointmentRepo, userRepo, serviceRepo, mail, eventBus, loc)
	authSvc := service.NewAuthService(userRepo, eventBus, cfg)

	reminderJob := reminder.NewJob(appointmentRepo, userRepo, serviceRepo, mail, eventBus, loc)
	go reminderJob.Start(ctx, cfg.Reminders.Interval)

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(redisClient), 100, time.Minute)

	h := handlers.New(bookingSvc, authSvc, cfg)
	router := buildRouter(h, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting salon bookings API", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func buildRouter(h *handlers.Handlers, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(limiter.Middleware())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Get("/slots", h.ListSlots)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Get("/auth/me", h.Me)

			r.Post("/appointments", h.CreateBooking)
			r.Get("/appointments", h.ListMyAppointments)
			r.Get("/appointments/{id}", h.GetAppointment)
			r.Put("/appointments/{id}/reschedule", h.RescheduleAppointment)
			r.Delete("/appointments/{id}", h.CancelAppointment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT(domain.RoleAdmin))

			r.Get("/appointments", h.ListAppointments)
			r.Post("/appointments/walk-in", h.CreateWalkIn)
			r.Patch("/appointments/{id}/status", h.SetAppointmentStatus)
			r.Delete("/appointments/{id}/purge", h.PurgeAppointment)
			r.Post("/appointments/bulk-cancel", h.BulkCancelAppointments)
			r.Post("/appointments/bulk-reschedule", h.BulkRescheduleAppointments)
			r.Get("/appointments/export", h.ExportDay)

			r.Get("/users", h.ListUsers)
			r.Patch("/users/{id}/role", h.SetUserRole)
		})
	})

	return r
}

func selectMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		logger.Info("Using dev mailer, emails are logged only")
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.FromEmail, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}
}
