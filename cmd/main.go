package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/config"
	"github.com/lshigami/attempt-engine/database"
	_ "github.com/lshigami/attempt-engine/docs"
	adminctrl "github.com/lshigami/attempt-engine/internal/controller/admin"
	userctrl "github.com/lshigami/attempt-engine/internal/controller/user"
	"github.com/lshigami/attempt-engine/internal/cache"
	"github.com/lshigami/attempt-engine/internal/logger"
	"github.com/lshigami/attempt-engine/internal/middleware"
	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/lshigami/attempt-engine/internal/service"
	"github.com/lshigami/attempt-engine/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Exam Attempt Engine API
// @version 1.0
// @description Start, answer, finish and score timed exam attempts.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Global zerolog logger, configured before anything else logs
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewGinEngine,
			middleware.NewAuthenticator,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			// Question reads go through Redis when REDIS_ADDR is set
			func(db *gorm.DB, client *redis.Client, cfg *config.Config) repository.QuestionRepository {
				return cache.NewCatalogCache(client, repository.NewQuestionRepository(db), cfg.Redis.CatalogTTL)
			},
			// The admin eviction route only has something to drop when Redis is on.
			func(questions repository.QuestionRepository) adminctrl.CatalogEvicter {
				if c, ok := questions.(*cache.CatalogCache); ok {
					return c
				}
				return nil
			},
		),

		// Services Layer
		fx.Provide(
			service.NewQuestionCatalog,
			service.NewExamDirectory,
			service.NewTokenStudentDirectory,
			service.NewZerologActivityLogger,
			service.NewScoringService,
			service.NewExamService,
			func(
				db *gorm.DB,
				attemptRepo repository.AttemptRepository,
				answerRepo repository.AnswerRepository,
				catalog service.QuestionCatalog,
				exams service.ExamDirectory,
				students service.StudentDirectory,
				activity service.ActivityLogger,
				scoring service.ScoringService,
				cfg *config.Config,
			) service.AttemptService {
				settings := service.EngineSettings{
					StrictTimeBudget: cfg.Engine.StrictTimeBudget,
					ReconcileGrace:   cfg.Engine.ReconcileGrace,
				}
				return service.NewAttemptService(db, attemptRepo, answerRepo, catalog, exams, students, activity, scoring, settings, nil)
			},
		),

		// API Controllers Layer and background workers
		fx.Provide(
			userctrl.NewAttemptController,
			userctrl.NewExamController,
			adminctrl.NewMaintenanceController,
			worker.NewReconcileSweeper,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(worker.RegisterReconcileSweeper),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Wait for a shutdown signal
	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

// NewRedisClient returns nil when REDIS_ADDR is unset, which turns the
// catalog cache off.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, catalog cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis not reachable, catalog reads fall back to the database")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Request logging goes through zerolog instead of Gin's writer
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI
	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	auth *middleware.Authenticator,
	attemptCtrl *userctrl.AttemptController,
	examCtrl *userctrl.ExamController,
	maintenanceCtrl *adminctrl.MaintenanceController,
) {
	// Unauthenticated liveness probe
	router.GET("/healthz", HealthHandler(db))

	// Student Routes (prefixed with /api/v1), identity comes from the bearer token
	api := router.Group("/api/v1", middleware.JWTAuth(auth))
	{
		// Exam browsing
		api.GET("/exams", examCtrl.ListExams)
		api.GET("/exams/:exam_id", examCtrl.GetExam)
		api.POST("/exams/:exam_id/attempts", attemptCtrl.StartAttempt)

		// Attempt lifecycle
		api.GET("/attempts/in-progress", attemptCtrl.ListInProgress)
		api.PUT("/attempts/:attempt_id/answers/:question_id", attemptCtrl.SubmitAnswer)
		api.POST("/attempts/:attempt_id/finish", attemptCtrl.FinishAttempt)
		api.GET("/attempts/:attempt_id/result", attemptCtrl.GetResult)
	}

	// Admin Routes (prefixed with /api/v1/admin)
	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.POST("/students/:student_id/reconcile", maintenanceCtrl.ReconcileStudent)
		admin.POST("/reconcile", maintenanceCtrl.ReconcileAll)
		admin.DELETE("/exams/:exam_id/catalog-cache", maintenanceCtrl.EvictCatalog)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Attempt engine server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			// Give in-flight requests time to finish
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// HealthHandler reports whether the database answers a ping.
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.ExamTemplate{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.Answer{},
		&model.StudentLock{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
