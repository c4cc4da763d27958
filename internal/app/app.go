package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user           *repository.UserRepository
	course         *repository.CourseRepository
	enrollment     *repository.EnrollmentRepository
	lessonProgress *repository.LessonProgressRepository
	quiz           *repository.QuizRepository
}

type services struct {
	progress   *service.ProgressService
	quiz       *service.QuizService
	enrollment *service.EnrollmentService
}

type controllers struct {
	progress   *controller.ProgressController
	quiz       *controller.QuizController
	enrollment *controller.EnrollmentController
	course     *controller.CourseController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	cacheTTL := time.Duration(cfg.Progress.StructureCacheTTLSeconds) * time.Second
	return &repositories{
		user:           repository.NewUserRepository(db),
		course:         repository.NewCourseRepository(db, rdb, cacheTTL),
		enrollment:     repository.NewEnrollmentRepository(db),
		lessonProgress: repository.NewLessonProgressRepository(db),
		quiz:           repository.NewQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	return &services{
		progress: service.NewProgressService(
			repos.enrollment,
			repos.course,
			repos.lessonProgress,
			cfg.Progress.DefaultLessonSeconds,
		),
		quiz:       service.NewQuizService(repos.quiz, repos.enrollment),
		enrollment: service.NewEnrollmentService(repos.enrollment, repos.course),
	}
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		progress:   controller.NewProgressController(s.progress),
		quiz:       controller.NewQuizController(s.quiz),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		course:     controller.NewCourseController(repos.course),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnhub-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	// 进度引擎的可调参数支持热更新
	app.RegisterConfigCallback(func(c *config.Config) {
		if c.Progress.DefaultLessonSeconds > 0 {
			services.progress.DefaultLessonSeconds = c.Progress.DefaultLessonSeconds
		}
	})

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		updated, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = updated
		for _, cb := range app.configCallbacks {
			cb(updated)
		}
		logger.Log.Info("Config reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
