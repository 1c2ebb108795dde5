package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/learnup-app/learnup-api/internal/handler"
	"github.com/learnup-app/learnup-api/internal/middleware"
	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/internal/service"
	"github.com/learnup-app/learnup-api/pkg/config"
	"github.com/learnup-app/learnup-api/pkg/logger"
	corsmiddleware "github.com/learnup-app/learnup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/learnup-app/learnup-api/pkg/middleware/requestid"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler mounted by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Students      *handler.StudentHandler
	Teachers      *handler.TeacherHandler
	Parents       *handler.ParentHandler
	Courses       *handler.CourseHandler
	Notes         *handler.NoteHandler
	Absences      *handler.AbsenceHandler
	Reminders     *handler.ReminderHandler
	Forum         *handler.ForumHandler
	Invoices      *handler.InvoiceHandler
	Notifications *handler.NotificationHandler
	Uploads       *handler.UploadHandler
}

// Deps carries everything the router needs besides the handlers.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Auth     *service.AuthService
	Metrics  *service.MetricsService
	Handlers Handlers
	Ready    func() error
}

// New assembles the gin engine with middleware and the full route table.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := deps.Handlers
	authed := middleware.JWT(deps.Auth)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleParent, models.RoleStudent)
	parentOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleParent)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authed, h.Auth.Logout)
		auth.POST("/change-password", authed, h.Auth.ChangePassword)
		auth.GET("/me", authed, h.Auth.Me)
	}

	users := api.Group("/users", authed, admin)
	{
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.POST("", h.Users.Create)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	students := api.Group("/students", authed)
	{
		students.GET("", anyRole, h.Students.List)
		students.GET("/:id", anyRole, h.Students.Get)
		students.POST("", admin, h.Students.Create)
		students.PUT("/:id", admin, h.Students.Update)
		students.DELETE("/:id", admin, h.Students.Delete)
	}

	teachers := api.Group("/teachers", authed)
	{
		teachers.GET("", anyRole, h.Teachers.List)
		teachers.GET("/:id", anyRole, h.Teachers.Get)
		teachers.POST("", admin, h.Teachers.Create)
		teachers.PUT("/:id", admin, h.Teachers.Update)
		teachers.DELETE("/:id", admin, h.Teachers.Delete)
	}

	parents := api.Group("/parents", authed)
	{
		parents.GET("", admin, h.Parents.List)
		parents.GET("/me/children", parentOrAdmin, h.Parents.Children)
		parents.GET("/:id", parentOrAdmin, h.Parents.Get)
		parents.POST("", admin, h.Parents.Create)
		parents.PUT("/:id", admin, h.Parents.Update)
		parents.DELETE("/:id", admin, h.Parents.Delete)
	}

	courses := api.Group("/courses", authed)
	{
		courses.GET("", anyRole, h.Courses.List)
		courses.GET("/:id", anyRole, h.Courses.Get)
		courses.POST("", staff, h.Courses.Create)
		courses.PUT("/:id", staff, h.Courses.Update)
		courses.DELETE("/:id", staff, h.Courses.Delete)
		courses.POST("/bulk-delete", admin, h.Courses.BulkDelete)
	}

	notes := api.Group("/notes", authed)
	{
		notes.GET("", anyRole, h.Notes.List)
		notes.GET("/:id", anyRole, h.Notes.Get)
		notes.POST("", staff, h.Notes.Create)
		notes.PUT("/:id", staff, h.Notes.Update)
		notes.DELETE("/:id", staff, h.Notes.Delete)
	}

	absences := api.Group("/absences", authed)
	{
		absences.GET("", anyRole, h.Absences.List)
		absences.GET("/:id", anyRole, h.Absences.Get)
		absences.POST("", staff, h.Absences.Create)
		absences.PUT("/:id", staff, h.Absences.Update)
		absences.DELETE("/:id", staff, h.Absences.Delete)
	}

	reminders := api.Group("/reminders", authed)
	{
		reminders.GET("", anyRole, h.Reminders.List)
		reminders.GET("/:id", anyRole, h.Reminders.Get)
		reminders.POST("", staff, h.Reminders.Create)
		reminders.PUT("/:id", staff, h.Reminders.Update)
		reminders.PATCH("/:id/toggle", staff, h.Reminders.Toggle)
		reminders.DELETE("/:id", staff, h.Reminders.Delete)
	}

	forum := api.Group("/forum", authed)
	{
		forum.GET("", anyRole, h.Forum.List)
		forum.POST("", anyRole, h.Forum.Post)
		forum.DELETE("/:id", anyRole, h.Forum.Delete)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", authed, parentOrAdmin, h.Invoices.List)
		invoices.GET("/:id", authed, parentOrAdmin, h.Invoices.Get)
		invoices.POST("", authed, admin, h.Invoices.Create)
		invoices.PUT("/:id", authed, admin, h.Invoices.Update)
		invoices.DELETE("/:id", authed, admin, h.Invoices.Delete)
		invoices.POST("/:id/pdf", authed, admin, h.Invoices.EnqueuePDF)
		invoices.GET("/:id/pdf-link", authed, parentOrAdmin, h.Invoices.DownloadLink)
		// token-gated, no bearer auth: the signed token is the credential
		invoices.GET("/:id/pdf", h.Invoices.Download)
	}

	api.GET("/notifications", authed, middleware.RequireRoles(models.RoleParent), h.Notifications.Feed)

	uploads := api.Group("/uploads", authed)
	{
		uploads.POST("/homework", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent), h.Uploads.Homework)
		uploads.POST("/photo", anyRole, h.Uploads.Photo)
	}

	return r
}
