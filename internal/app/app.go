package app

import (
	"context"
	"log"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/controller"
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/scheduler"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/configwatcher"
	"mindagrow_backend/pkg/database"
	"mindagrow_backend/pkg/logger"
	"mindagrow_backend/pkg/monitoring"
	"mindagrow_backend/pkg/security"
	"mindagrow_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var registerMetrics sync.Once

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	apiLimiter      *security.Limiter
	authLimiter     *security.Limiter
	configCallbacks []func(*config.Config)

	mu          sync.RWMutex
	corsOrigins []string

	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	user         *repository.UserRepository
	profile      *repository.ProfileRepository
	session      *repository.SessionRepository
	audit        *repository.AuditRepository
	class        *repository.ClassRepository
	assignment   *repository.AssignmentRepository
	submission   *repository.SubmissionRepository
	material     *repository.MaterialRepository
	course       *repository.CourseRepository
	enrollment   *repository.EnrollmentRepository
	game         *repository.GameRepository
	gamification *repository.GamificationRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	audit        *service.AuditService
	storage      *service.StorageService
	upload       *service.UploadService
	export       *service.ExportService
	gamification *service.GamificationService
	class        *service.ClassService
	assignment   *service.AssignmentService
	submission   *service.SubmissionService
	material     *service.MaterialService
	course       *service.CourseService
	game         *service.GameService
	dashboard    *service.DashboardService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	class        *controller.ClassController
	assignment   *controller.AssignmentController
	submission   *controller.SubmissionController
	material     *controller.MaterialController
	course       *controller.CourseController
	game         *controller.GameController
	gamification *controller.GamificationController
	dashboard    *controller.DashboardController
	health       *controller.HealthController
}

// RegisterConfigCallback adds a hook run after every config file reload.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) allowedOrigins() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.corsOrigins
}

func (a *App) setAllowedOrigins(origins []string) {
	a.mu.Lock()
	a.corsOrigins = origins
	a.mu.Unlock()
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		profile:      repository.NewProfileRepository(db),
		session:      repository.NewSessionRepository(db),
		audit:        repository.NewAuditRepository(db),
		class:        repository.NewClassRepository(db),
		assignment:   repository.NewAssignmentRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		material:     repository.NewMaterialRepository(db),
		course:       repository.NewCourseRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
		game:         repository.NewGameRepository(db),
		gamification: repository.NewGamificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.upload = service.NewUploadService(s.storage, &cfg.Upload)
	s.export = service.NewExportService(repos.class, repos.submission, repos.profile)
	s.audit = service.NewAuditService(repos.audit)
	s.gamification = service.NewGamificationService(repos.gamification, rdb)

	s.auth = service.NewAuthService(db, repos.user, repos.profile, repos.session, s.gamification, s.audit, cfg)
	s.user = service.NewUserService(repos.user, repos.profile, repos.session, s.upload, s.audit)
	s.class = service.NewClassService(repos.class, repos.profile, s.audit)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.submission, repos.class, s.class, s.upload, s.export)
	s.submission = service.NewSubmissionService(db, repos.submission, repos.assignment, repos.class, repos.profile, s.upload, s.gamification, s.audit)
	s.material = service.NewMaterialService(repos.material, repos.class, s.class, s.upload)
	s.course = service.NewCourseService(db, repos.course, repos.enrollment, s.gamification)
	s.game = service.NewGameService(db, repos.game, s.gamification)
	s.dashboard = service.NewDashboardService(
		repos.user,
		repos.profile,
		repos.class,
		repos.assignment,
		repos.submission,
		repos.course,
		repos.enrollment,
		repos.game,
		repos.audit,
		s.gamification,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user, s.gamification),
		user:         controller.NewUserController(s.user, s.audit),
		class:        controller.NewClassController(s.class),
		assignment:   controller.NewAssignmentController(s.assignment, s.submission),
		submission:   controller.NewSubmissionController(s.submission),
		material:     controller.NewMaterialController(s.material),
		course:       controller.NewCourseController(s.course),
		game:         controller.NewGameController(s.game),
		gamification: controller.NewGamificationController(s.gamification),
		dashboard:    controller.NewDashboardController(s.dashboard),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(a.allowedOrigins))
	router.Use(security.Secure())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) setupLimiters(cfg *config.Config, rdb *redis.Client) {
	window := cfg.RateLimit.Window()
	a.apiLimiter = security.NewLimiter("api", cfg.RateLimit.MaxRequests, window, rdb)
	a.authLimiter = security.NewLimiter("auth", cfg.RateLimit.LoginMaxRequests, window, rdb)
	a.apiLimiter.StartCleanup(a.ctx)
	a.authLimiter.StartCleanup(a.ctx)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		w := newCfg.RateLimit.Window()
		a.apiLimiter.Update(newCfg.RateLimit.MaxRequests, w)
		a.authLimiter.Update(newCfg.RateLimit.LoginMaxRequests, w)
		a.setAllowedOrigins(newCfg.CORS.AllowedOrigins)
		logger.Log.Info("Runtime limits updated",
			zap.Int("max_requests", newCfg.RateLimit.MaxRequests),
			zap.Int("login_max_requests", newCfg.RateLimit.LoginMaxRequests),
			zap.Strings("allowed_origins", newCfg.CORS.AllowedOrigins))
	})
}

// New wires repositories, services and routes on top of ready connections.
// rdb may be nil when Redis is disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		corsOrigins: cfg.CORS.AllowedOrigins,
		ctx:         ctx,
		cancel:      cancel,
	}

	util.RegisterValidators()
	registerMetrics.Do(monitoring.Init)

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	app.setupLimiters(cfg, rdb)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		// Only avatars are public; other files go through the download endpoints.
		router.Static("/uploads/"+util.DirAvatars, filepath.Join(cfg.Storage.LocalPath, util.DirAvatars))
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	gin.SetMode(cfg.Server.Mode)
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("mindagrow-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(cfg.Scheduler, app.services.gamification, app.services.auth)
		if err := app.scheduler.Start(); err != nil {
			logger.Log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	if cfg.FilePath != "" {
		go func() {
			if err := configwatcher.WatchConfig(app.ctx, cfg.FilePath, app.applyConfig); err != nil {
				logger.Log.Warn("Config watcher disabled", zap.Error(err))
			}
		}()
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	logger.Log.Info("Server exiting")
}

// Close stops background work and releases connections.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
