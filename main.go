package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/classpulse/classpulsebackend/capture"
	"github.com/classpulse/classpulsebackend/config"
	"github.com/classpulse/classpulsebackend/database"
	"github.com/classpulse/classpulsebackend/engagement"
	"github.com/classpulse/classpulsebackend/handlers"
	"github.com/classpulse/classpulsebackend/realtime"
	"github.com/classpulse/classpulsebackend/repository"
	"github.com/classpulse/classpulsebackend/services"
	"github.com/classpulse/classpulsebackend/vision"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize GORM database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	reportDB, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize report database: %v", err)
	}
	defer reportDB.Close()

	userRepo := repository.NewUserRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	studentRepo := repository.NewStudentRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	engagementRepo := repository.NewEngagementRepository(gormDB)
	attendanceRepo := repository.NewAttendanceRepository(gormDB)

	aggregator := engagement.NewAggregator(engagementRepo)
	tracker := engagement.NewAttendanceTracker(attendanceRepo)
	activityFeed := services.NewActivityFeed()
	defer activityFeed.Close()

	hub := realtime.NewHub()
	go hub.Run()

	engagementService := &services.EngagementService{
		Sessions:              sessionRepo,
		Students:              studentRepo,
		Courses:               courseRepo,
		Aggregator:            aggregator,
		Attendance:            tracker,
		Activity:              activityFeed,
		Hub:                   hub,
		SampleIntervalSeconds: cfg.CaptureIntervalSeconds,
	}

	handlers.InitAuth(cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(userRepo)
	courseHandler := &handlers.CourseHandler{CourseRepo: courseRepo, StudentRepo: studentRepo}
	studentHandler := &handlers.StudentHandler{StudentRepo: studentRepo}
	sessionHandler := &handlers.SessionHandler{SessionRepo: sessionRepo, CourseRepo: courseRepo}
	engagementHandler := &handlers.EngagementHandler{Ingestor: engagementService, EngagementRepo: engagementRepo}
	attendanceHandler := &handlers.AttendanceHandler{AttendanceRepo: attendanceRepo, SessionRepo: sessionRepo, CourseRepo: courseRepo}
	activityHandler := &handlers.ActivityHandler{Feed: activityFeed, SessionRepo: sessionRepo, CourseRepo: courseRepo}
	reportHandler := &handlers.ReportHandler{DB: reportDB, SessionRepo: sessionRepo, CourseRepo: courseRepo}

	var captureHandler *handlers.CaptureHandler
	if cfg.LocalCaptureEnabled {
		webcam, err := capture.OpenWebcam(cfg.CameraDeviceID, cfg.FrameMaxSize)
		if err != nil {
			log.Fatalf("FATAL: Failed to open camera device %d: %v", cfg.CameraDeviceID, err)
		}
		defer webcam.Close()

		gateway := vision.NewClient(cfg.VisionGatewayURL)
		manager := services.NewCaptureManager(webcam, gateway, engagementService, time.Duration(cfg.CaptureIntervalSeconds)*time.Second)
		defer manager.StopAll()

		captureHandler = &handlers.CaptureHandler{Manager: manager, SessionRepo: sessionRepo, CourseRepo: courseRepo}
		log.Printf("Local capture enabled (camera %d, every %ds, gateway %s)", cfg.CameraDeviceID, cfg.CaptureIntervalSeconds, cfg.VisionGatewayURL)
	}

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/signup", authHandler.Signup)

		r.Get("/ws", hub.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(userRepo))

			r.Route("/courses", func(r chi.Router) {
				r.Post("/", courseHandler.CreateCourse)
				r.Get("/", courseHandler.ListCourses)
				r.Route("/{course_id}", func(r chi.Router) {
					r.Get("/", courseHandler.GetCourse)
					r.Get("/students", courseHandler.ListCourseStudents)
					r.Post("/students", courseHandler.EnrollStudent)
				})
			})

			r.Route("/students", func(r chi.Router) {
				r.Post("/", studentHandler.CreateStudent)
				r.Get("/", studentHandler.ListStudents)
				r.Route("/{student_id}", func(r chi.Router) {
					r.Get("/", studentHandler.GetStudent)
					r.Put("/", studentHandler.UpdateStudent)
					r.Delete("/", studentHandler.DeleteStudent)
				})
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.CreateSession)
				r.Get("/", sessionHandler.ListSessions)

				r.Post("/engagement", engagementHandler.SubmitBatch)
				r.Get("/engagement", engagementHandler.GetEngagement)

				r.Route("/{session_id}", func(r chi.Router) {
					r.Get("/", sessionHandler.GetSession)
					r.Put("/end", sessionHandler.EndSession)
					r.Delete("/", sessionHandler.DeleteSession)
					r.Get("/activity", activityHandler.ListActivity)

					if captureHandler != nil {
						r.Route("/capture", func(r chi.Router) {
							r.Get("/", captureHandler.CaptureStatus)
							r.Post("/start", captureHandler.StartCapture)
							r.Post("/pause", captureHandler.PauseCapture)
							r.Post("/resume", captureHandler.ResumeCapture)
							r.Post("/stop", captureHandler.StopCapture)
							r.Post("/stopwatch/pause", captureHandler.PauseStopwatch)
							r.Post("/stopwatch/resume", captureHandler.ResumeStopwatch)
						})
					}
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.ListAttendance)
				r.Post("/", attendanceHandler.UpsertAttendance)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/sessions/{session_id}", reportHandler.SessionSummary)
				r.Get("/courses/{course_id}/leaderboard", reportHandler.CourseLeaderboard)
			})
		})
	})

	log.Printf("Server listening on %s", cfg.ListenAddr)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
