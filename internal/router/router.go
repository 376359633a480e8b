package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/labworks/labviva-backend/internal/config"
	"github.com/labworks/labviva-backend/internal/handler"
	"github.com/labworks/labviva-backend/internal/middleware"
	"github.com/labworks/labviva-backend/internal/response"
	"github.com/labworks/labviva-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	StudentMgmt *handler.StudentManagementHandler
	Experiment  *handler.ExperimentHandler
	Question    *handler.QuestionHandler
	Submission  *handler.SubmissionHandler
	Viva        *handler.VivaHandler
	Dashboard   *handler.DashboardHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", authLimiter.Middleware(), handlers.Auth.StudentLogin)
		auth.POST("/faculty/login", authLimiter.Middleware(), handlers.Auth.FacultyLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.PUT("/student/password", middleware.RequireStudentJWT(authService), handlers.Auth.ChangeStudentPassword)
		auth.GET("/faculty/me", middleware.RequireFacultyJWT(authService), handlers.Auth.GetFacultyProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/experiments", handlers.Experiment.ListAll)
		studentAPI.GET("/experiments/:experiment_id/viva/preflight", handlers.Viva.Preflight)
		studentAPI.GET("/experiments/:experiment_id/viva/results", handlers.Viva.Results)
		studentAPI.GET("/viva/attempts", handlers.Viva.MyAttempts)
		studentAPI.POST("/experiments/:experiment_id/submissions", handlers.Submission.Submit)
		studentAPI.GET("/submissions", handlers.Submission.ListMine)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/experiments/:experiment_id/viva/stream", handlers.WS.VivaStream)
	}

	// ─── 4. Faculty Group (JWT) ────────────────────────────────────────
	facultyAPI := router.Group("/api/v1/faculty")
	facultyAPI.Use(middleware.RequireFacultyJWT(authService))
	{
		// Dashboard
		facultyAPI.GET("/dashboard", handlers.Dashboard.Get)

		// Student management
		facultyAPI.GET("/students", handlers.StudentMgmt.List)
		facultyAPI.POST("/students", handlers.StudentMgmt.Create)
		facultyAPI.PUT("/students/:id", handlers.StudentMgmt.Update)
		facultyAPI.DELETE("/students/:id", handlers.StudentMgmt.Delete)
		facultyAPI.POST("/students/:id/reset-session", handlers.StudentMgmt.ResetSession)

		// Experiment management
		facultyAPI.GET("/experiments", handlers.Experiment.ListMine)
		facultyAPI.POST("/experiments", handlers.Experiment.Create)
		facultyAPI.PUT("/experiments/:experiment_id", handlers.Experiment.Update)
		facultyAPI.DELETE("/experiments/:experiment_id", handlers.Experiment.Delete)

		// Question bank management
		facultyAPI.GET("/experiments/:experiment_id/questions", handlers.Question.List)
		facultyAPI.POST("/experiments/:experiment_id/questions", handlers.Question.Add)
		facultyAPI.PUT("/questions/:question_id", handlers.Question.Update)
		facultyAPI.DELETE("/questions/:question_id", handlers.Question.Delete)

		// Submission review
		facultyAPI.GET("/experiments/:experiment_id/submissions", handlers.Submission.ListPending)
		facultyAPI.PUT("/submissions/:submission_id/review", handlers.Submission.Review)

		// Viva oversight
		facultyAPI.GET("/experiments/:experiment_id/viva/attempts", handlers.Viva.AttemptsByExperiment)
		facultyAPI.GET("/experiments/:experiment_id/viva/violations", handlers.Viva.ViolationHistory)
		facultyAPI.GET("/viva/monitor", handlers.Viva.Monitor)
	}

	return router
}
