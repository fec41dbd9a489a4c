package routes

import (
	"log"

	"academy/backend/assistant"
	"academy/backend/certificate"
	"academy/backend/config"
	"academy/backend/controllers"
	"academy/backend/metrics"
	"academy/backend/middleware"
	"academy/backend/stats"
	"academy/backend/store"
	"academy/backend/tracker"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies are the shared services the handlers are built from.
type Dependencies struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Logger       *log.Logger
	Tracker      *tracker.Tracker
	Content      tracker.ContentStore
	Progress     *store.ProgressStore
	Cache        controllers.CacheInvalidator
	Certificates *certificate.Issuer
	Stats        *stats.Recorder
	// Assistant is nil when no LLM is configured.
	Assistant *assistant.Service
}

func SetupRoutes(app *fiber.App, d Dependencies) {
	db, cfg := d.DB, d.Cfg

	app.Get("/metrics", metrics.Handler())

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/refresh", authMiddleware, authController.Refresh)
	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// User routes
	userController := controllers.NewUserController(db, cfg, d.Stats, d.Certificates)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/certificates", authMiddleware, userController.GetCertificates)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, d.Tracker, d.Progress, d.Stats, d.Logger)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, d.Tracker, d.Progress, d.Cache, d.Logger)
	moduleController := controllers.NewModuleController(d.Tracker, d.Logger)
	certificateController := controllers.NewCertificateController(cfg, d.Tracker, d.Certificates, d.Content, d.Logger)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Get("/:id/progress", coursesController.GetProgress)
	courses.Get("/:id/certificate", certificateController.Download)
	courses.Get("/:id/modules/:moduleId/quiz", moduleController.GetQuiz)
	courses.Post("/:id/modules/:moduleId/quiz", moduleController.SubmitQuiz)
	courses.Post("/:id/modules/:moduleId/complete", moduleController.CompleteModule)

	// Assistant routes
	assistantController := controllers.NewAssistantController(d.Assistant, d.Logger)
	app.Post("/api/assistant/chat", authMiddleware, assistantController.Chat)
	app.Get("/api/assistant/history", authMiddleware, assistantController.History)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(db, cfg, d.Progress, d.Logger)
	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Put("/:id", coursesController.UpdateCourse)
	adminCourses.Post("/:id/modules", coursesController.AddModule)
	adminCourses.Put("/:id/modules/:moduleId", coursesController.UpdateModule)
	adminCourses.Delete("/:id/modules/:moduleId", coursesController.DeleteModule)
	adminCourses.Get("/:id/analytics", analyticsController.GetCourseAnalytics)
}
