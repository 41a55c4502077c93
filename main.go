package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"swasthsetu/auth"
	"swasthsetu/cli"
	"swasthsetu/config"
	"swasthsetu/database"
	"swasthsetu/handlers"
	"swasthsetu/middleware"
	"swasthsetu/service"
	"swasthsetu/signaling"
	"swasthsetu/symptom"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	// Check if CLI mode is requested; CLI skips file logging and database
	if config.Settings.CLIMode {
		log.SetFlags(log.Ldate | log.Ltime)
		mainCLI()
		return
	}

	if config.Settings.CheckMode {
		os.Exit(runPreflight())
	}

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("System starting up...")

	// Initialize database; a missing database file is created and migrated
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if config.Settings.SeedDemo {
		if err := database.Seed(database.DB); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Initialize services
	service.InitServices(database.DB, config.Settings.AppointmentSlotMinutes)

	// Token manager; the signing secret is generated and persisted on first start
	secret, err := loadOrCreateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to load JWT secret: %v", err)
	}
	tokenManager := auth.NewTokenManager(secret,
		time.Duration(config.Settings.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(config.Settings.RefreshTokenTTLHours)*time.Hour)

	checker := symptom.NewClient(config.Settings.GroqAPIURL, os.Getenv("GROQ_API_KEY"), config.Settings.GroqModel)
	if checker == nil {
		log.Println("GROQ_API_KEY not set; symptom checker disabled")
	}

	hub := signaling.NewHub()
	handlers.Init(tokenManager, checker)
	handlers.Hub = hub

	// Start goroutine monitor
	go monitorGoroutines()

	// Appointment reminder sweep
	reminderCtx, stopReminders := context.WithCancel(context.Background())
	go runReminderLoop(reminderCtx)

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	r := buildRouter(tokenManager)

	// The dev workflow restarts frequently; make a busy port a diagnosed
	// failure instead of a silent crash
	if err := waitForPort(config.Settings.Host, config.Settings.Port, config.Settings.PortWaitSeconds); err != nil {
		reportPortBusy(config.Settings.Host, config.Settings.Port, err)
		log.Fatalf("Port %d unavailable: %v", config.Settings.Port, err)
	}

	addr := net.JoinHostPort(config.Settings.Host, strconv.Itoa(config.Settings.Port))
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		fmt.Printf("Starting server at http://%s/\n", addr)
		printServedEndpoints(addr)
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopReminders()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}

	database.CloseDB()
	log.Println("Shutdown complete")
}

// buildRouter wires all API routes.
func buildRouter(tm *auth.TokenManager) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		// Health and build info
		api.GET("/health", handlers.HealthCheck)
		api.GET("/metrics", handlers.GetMetrics)
		api.GET("/metrics/prometheus", handlers.GetPrometheusMetrics)
		api.GET("/version", handlers.GetVersion)

		// Auth
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)
		api.POST("/auth/refresh", handlers.Refresh)

		// Public directory
		api.GET("/doctors", handlers.ListDoctors)
		api.GET("/doctors/:id", handlers.GetDoctor)
		api.GET("/doctors/:id/availability", handlers.GetDoctorAvailability)
		api.GET("/doctors/:id/schedules", handlers.GetDoctorSchedules)
		api.GET("/pharmacy/stores", handlers.ListPharmacies)
		api.GET("/pharmacy/stores/nearby", handlers.NearestPharmacies)

		authed := api.Group("", middleware.RequireAuth(tm))
		{
			authed.GET("/auth/me", handlers.Me)
			authed.PATCH("/auth/me", handlers.UpdateMe)

			// Appointments
			authed.GET("/appointments", handlers.ListAppointments)
			authed.POST("/appointments", handlers.CreateAppointment)
			authed.GET("/appointments/:id", handlers.GetAppointment)
			authed.PATCH("/appointments/:id", handlers.UpdateAppointment)
			authed.POST("/appointments/:id/cancel", handlers.CancelAppointment)
			authed.GET("/appointments/:id/room", handlers.GetOrCreateCallRoom)

			// Video call rooms
			authed.POST("/video-calls/rooms", handlers.CreateCallRoom)
			authed.GET("/video-calls/rooms/:room_id", handlers.GetCallRoom)
			authed.POST("/video-calls/rooms/:room_id/join", handlers.JoinCallRoom)
			authed.POST("/video-calls/rooms/:room_id/leave", handlers.LeaveCallRoom)
			authed.GET("/video-calls/rooms/:room_id/participants", handlers.ListCallParticipants)

			// Patient pharmacy flows
			authed.GET("/pharmacy/prescriptions", handlers.ListPrescriptions)
			authed.POST("/pharmacy/prescriptions", handlers.CreatePrescription)
			authed.DELETE("/pharmacy/prescriptions/:id", handlers.DeletePrescription)
			authed.GET("/pharmacy/orders", handlers.ListOrders)
			authed.POST("/pharmacy/orders", handlers.CreateOrder)
			authed.GET("/pharmacy/orders/:id", handlers.GetOrder)
			authed.PATCH("/pharmacy/orders/:id", handlers.UpdateOrder)

			// Notifications
			authed.GET("/notifications", handlers.ListNotifications)
			authed.GET("/notifications/unread-count", handlers.UnreadNotificationCount)
			authed.POST("/notifications/:id/read", handlers.MarkNotificationRead)
			authed.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)

			// Role applications
			authed.POST("/applications/doctor", handlers.ApplyDoctor)
			authed.POST("/applications/pharmacist", handlers.ApplyPharmacist)
			authed.GET("/applications/mine", handlers.MyApplications)

			// AI symptom checker
			authed.POST("/symptom-check", handlers.CheckSymptoms)

			// Doctor self-service
			doctor := authed.Group("/doctor", middleware.RequireDoctor())
			{
				doctor.GET("/me", handlers.MyDoctorProfile)
				doctor.PATCH("/me", handlers.UpdateMyDoctorProfile)
				doctor.GET("/me/schedules", handlers.MySchedules)
				doctor.POST("/me/schedules", handlers.SetMySchedule)
				doctor.DELETE("/me/schedules/:id", handlers.DeleteMySchedule)
			}

			// Pharmacist self-service
			pharmacist := authed.Group("/pharmacy/me", middleware.RequirePharmacist())
			{
				pharmacist.GET("", handlers.MyPharmacyProfile)
				pharmacist.PATCH("", handlers.UpdateMyPharmacyProfile)
			}

			// Staff administration
			admin := authed.Group("/admin", middleware.RequireStaff())
			{
				admin.GET("/users", handlers.ListUsers)
				admin.POST("/users/:id/toggle", handlers.ToggleUserActive)
				admin.GET("/applications/doctor", handlers.ListDoctorApplications)
				admin.GET("/applications/pharmacist", handlers.ListPharmacistApplications)
				admin.POST("/applications/doctor/:id/approve", handlers.ApproveDoctorApplication)
				admin.POST("/applications/doctor/:id/reject", handlers.RejectDoctorApplication)
				admin.POST("/applications/pharmacist/:id/approve", handlers.ApprovePharmacistApplication)
				admin.POST("/applications/pharmacist/:id/reject", handlers.RejectPharmacistApplication)
			}
		}
	}

	// WebRTC signaling; the token rides in the query string
	r.GET("/ws/video-call/:room_id", handlers.VideoCallWS)

	return r
}

// printServedEndpoints lists the API groups on stdout, mirroring the route
// print in gin's debug mode which release mode suppresses.
func printServedEndpoints(addr string) {
	fmt.Println("API endpoints:")
	for _, p := range []string{
		"/api/health",
		"/api/auth/register | login | refresh | me",
		"/api/doctors",
		"/api/appointments",
		"/api/video-calls/rooms",
		"/api/pharmacy/stores | prescriptions | orders",
		"/api/notifications",
		"/api/applications",
	} {
		fmt.Printf("  http://%s%s\n", addr, p)
	}
	fmt.Printf("  ws://%s/ws/video-call/:room_id\n", addr)
}

// loadOrCreateJWTSecret returns the configured signing secret, or loads the
// persisted one, generating and storing it on first start.
func loadOrCreateJWTSecret() (string, error) {
	if config.Settings.JWTSecret != "" {
		return config.Settings.JWTSecret, nil
	}

	const key = "jwt_secret"
	stored, found, err := database.GetSetting(key)
	if err != nil {
		return "", fmt.Errorf("failed to read persisted secret: %w", err)
	}
	if found && stored != "" {
		return stored, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	secret := hex.EncodeToString(raw)

	if err := database.SetSetting(key, secret); err != nil {
		return "", fmt.Errorf("failed to persist secret: %w", err)
	}
	log.Println("Generated new JWT signing secret")
	return secret, nil
}

// runReminderLoop periodically delivers day-before appointment reminders.
func runReminderLoop(ctx context.Context) {
	interval := time.Duration(config.Settings.ReminderIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, err := service.GlobalServices.Appointment.SendReminders(time.Now())
			if err != nil {
				log.Printf("Reminder sweep failed: %v", err)
				continue
			}
			if sent > 0 {
				log.Printf("Sent %d appointment reminders", sent)
			}
		case <-ctx.Done():
			return
		}
	}
}

// monitorGoroutines warns when the goroutine count crosses the configured
// threshold.
func monitorGoroutines() {
	ticker := time.NewTicker(time.Duration(config.Settings.GoroutineMonitorIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		count := runtime.NumGoroutine()
		if count > config.Settings.GoroutineWarnThreshold {
			log.Printf("WARNING: High goroutine count detected: %d", count)
		} else if config.Settings.LogLevel == "DEBUG" {
			log.Printf("Current goroutine count: %d", count)
		}
	}
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI() {
	serverURL := config.Settings.CLIServer

	fmt.Printf("Swasth Setu CLI - Connecting to %s\n", serverURL)

	cliInstance, err := cli.NewCLIHttp(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the server is running:")
		fmt.Println("     ./swasthsetu")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./swasthsetu --cli --server http://your-server:8000\n")
		os.Exit(1)
	}

	cliInstance.Start()
}
