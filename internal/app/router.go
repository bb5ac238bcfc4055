package app

import (
	"mindagrow_backend/docs"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/middleware"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/pkg/monitoring"
	"mindagrow_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 1. Public routes
	a.registerPublicRoutes(router, c)

	// 2. Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, repos.session, repos.user),
		security.RateLimiter(a.apiLimiter, middleware.RateLimitKey),
	)
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerSiswaRoutes(authGroup, c)
		a.registerGuruRoutes(authGroup, c)
		a.registerOrangtuaRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	auth := router.Group("/api/auth")
	auth.Use(security.RateLimiter(a.authLimiter, func(ctx *gin.Context) string { return ctx.ClientIP() }))
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
	}
}

// registerCommonRoutes are open to every authenticated role; services
// apply ownership and membership rules.
func (a *App) registerCommonRoutes(api *gin.RouterGroup, c *controllers) {
	api.POST("/auth/logout", c.auth.Logout)
	api.GET("/auth/me", c.auth.Me)
	api.PUT("/auth/password", c.auth.ChangePassword)

	api.GET("/users/profile", c.user.GetProfile)
	api.PUT("/users/profile", c.user.UpdateProfile)
	api.POST("/users/avatar", c.user.UploadAvatar)

	api.GET("/classes", c.class.ListClasses)
	api.GET("/classes/:id", c.class.GetClass)

	api.GET("/assignments", c.assignment.ListAssignments)
	api.GET("/assignments/:id", c.assignment.GetAssignment)
	api.GET("/assignments/:id/download", c.assignment.DownloadAssignment)

	api.GET("/submissions/:id", c.submission.GetSubmission)
	api.GET("/submissions/:id/download", c.submission.DownloadSubmission)

	api.GET("/materials", c.material.ListMaterials)
	api.GET("/materials/:id", c.material.GetMaterial)
	api.GET("/materials/:id/download", c.material.DownloadMaterial)

	api.GET("/categories", c.course.ListCategories)
	api.GET("/courses", c.course.ListCourses)
	api.GET("/courses/:id", c.course.GetCourse)

	api.GET("/games", c.game.ListGames)
	api.GET("/games/:id", c.game.GetGame)

	gamification := api.Group("/gamification")
	{
		gamification.GET("/profile", c.gamification.GetProfile)
		gamification.GET("/missions", c.gamification.GetMissions)
		gamification.GET("/leaderboard", c.gamification.GetLeaderboard)
		gamification.GET("/streak", c.gamification.GetStreak)
	}
}

func (a *App) registerSiswaRoutes(api *gin.RouterGroup, c *controllers) {
	siswa := api.Group("")
	siswa.Use(middleware.RoleMiddleware(model.RoleSiswa))
	{
		siswa.POST("/classes/join", c.class.JoinClass)
		siswa.POST("/assignments/:id/submit", c.assignment.Submit)
		siswa.GET("/submissions/me", c.submission.MySubmissions)
		siswa.POST("/courses/:id/enroll", c.course.Enroll)
		siswa.GET("/enrollments/me", c.course.MyEnrollments)
		siswa.POST("/lessons/:id/complete", c.course.CompleteLesson)
		siswa.POST("/games/:id/play", c.game.PlayGame)
		siswa.GET("/dashboard/siswa", c.dashboard.Siswa)
	}
}

func (a *App) registerGuruRoutes(api *gin.RouterGroup, c *controllers) {
	guru := api.Group("")
	guru.Use(middleware.RoleMiddleware(model.RoleGuru))
	{
		guru.POST("/classes", c.class.CreateClass)
		guru.PUT("/classes/:id", c.class.UpdateClass)
		guru.DELETE("/classes/:id", c.class.DeleteClass)
		guru.GET("/classes/:id/students", c.class.GetStudents)
		guru.POST("/classes/:id/students", c.class.AddStudent)
		guru.DELETE("/classes/:id/students/:studentId", c.class.RemoveStudent)

		guru.POST("/assignments", c.assignment.CreateAssignment)
		guru.PUT("/assignments/:id", c.assignment.UpdateAssignment)
		guru.DELETE("/assignments/:id", c.assignment.DeleteAssignment)
		guru.GET("/assignments/:id/submissions", c.assignment.GetSubmissions)
		guru.GET("/assignments/:id/grades/export", c.assignment.ExportGrades)

		guru.PUT("/submissions/:id/grade", c.submission.GradeSubmission)

		guru.POST("/materials", c.material.CreateMaterial)
		guru.PUT("/materials/:id", c.material.UpdateMaterial)
		guru.DELETE("/materials/:id", c.material.DeleteMaterial)

		guru.POST("/courses", c.course.CreateCourse)
		guru.PUT("/courses/:id", c.course.UpdateCourse)
		guru.DELETE("/courses/:id", c.course.DeleteCourse)
		guru.POST("/courses/:id/modules", c.course.AddModule)
		guru.POST("/modules/:id/lessons", c.course.AddLesson)

		guru.GET("/dashboard/guru", c.dashboard.Guru)
	}
}

func (a *App) registerOrangtuaRoutes(api *gin.RouterGroup, c *controllers) {
	parents := api.Group("/parents")
	parents.Use(middleware.RoleMiddleware(model.RoleOrangtua))
	{
		parents.GET("/children", c.user.ListChildren)
		parents.POST("/children", c.user.LinkChild)
	}

	api.GET("/dashboard/orangtua", middleware.RoleMiddleware(model.RoleOrangtua), c.dashboard.Orangtua)
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/admin/users", c.user.GetUsers)
		admin.GET("/admin/users/:id", c.user.GetUser)
		admin.PUT("/admin/users/:id/status", c.user.UpdateStatus)
		admin.POST("/admin/users/:id/reset-password", c.user.ResetPassword)
		admin.GET("/admin/audit-logs", c.user.GetAuditLogs)

		admin.POST("/categories", c.course.CreateCategory)

		admin.POST("/games", c.game.CreateGame)
		admin.PUT("/games/:id", c.game.UpdateGame)
		admin.DELETE("/games/:id", c.game.DeleteGame)

		admin.GET("/dashboard/admin", c.dashboard.Admin)
	}
}
