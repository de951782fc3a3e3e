package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/pushparajlokesh/ml-cts-pro/internal/api"
	"github.com/pushparajlokesh/ml-cts-pro/internal/config"
	"github.com/pushparajlokesh/ml-cts-pro/internal/model"
	"github.com/pushparajlokesh/ml-cts-pro/internal/repository"
	"github.com/pushparajlokesh/ml-cts-pro/internal/service"
	"github.com/pushparajlokesh/ml-cts-pro/internal/session"
	"github.com/pushparajlokesh/ml-cts-pro/migrations"
)

func connectDB(host, port, user, pass, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("✅ Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("❌ Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

func main() {
	_ = godotenv.Load()

	db, err := connectDB(
		config.Getenv("DB_HOST", "127.0.0.1"),
		config.Getenv("DB_PORT", "3306"),
		config.Getenv("DB_USER", "root"),
		config.Getenv("DB_PASS", ""),
		config.Getenv("DB_NAME", "myappdb"),
	)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrateUsers(3, db); err != nil {
		log.Fatalf("Failed to migrate users table: %v", err)
	}
	if err := migrations.AutoMigratePredictionRuns(3, db); err != nil {
		log.Fatalf("Failed to migrate prediction_runs table: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: config.Getenv("REDIS_ADDR", "localhost:6379"),
	})

	kafkaWriter := config.NewKafkaWriter("prediction-topic")

	// Model files are optional at startup: without them /predict degrades to
	// a "model not loaded" failure while everything else keeps serving.
	artifact, err := model.Load(
		config.Getenv("MODEL_PATH", "model.json"),
		config.Getenv("TARGET_COLS_PATH", "target_cols.json"),
		config.Getenv("FEATURE_COLS_PATH", "feature_cols.json"),
	)
	if err != nil {
		log.Printf("❌ Could not load model/targets: %v", err)
		artifact = nil
	} else {
		log.Printf("✅ Loaded model, target columns (features optional: %d)", len(artifact.FeatureCols))
	}

	uploadDir := config.Getenv("UPLOAD_DIR", "uploads")

	userRepo := repository.NewUserRepository(db)
	runRepo := repository.NewPredictionRunRepository(db)
	sessions := session.NewStore(rdb, []byte(config.Getenv("SESSION_SECRET", "secret")))

	authService := service.NewAuthService(userRepo)
	predictService := service.NewPredictService(artifact, runRepo, sessions, kafkaWriter, uploadDir)

	handler := api.NewHandler(authService, predictService, sessions, uploadDir)

	e := echo.New()
	e.Renderer = api.NewRenderer()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	handler.Register(e)

	e.Logger.Fatal(e.Start(":" + config.Getenv("PORT", "8080")))
}
