package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"trivia-game-system/handlers"
	"trivia-game-system/models"
	"trivia-game-system/questionbank"
	"trivia-game-system/services"
	"trivia-game-system/store"
	"trivia-game-system/utils"
	"trivia-game-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultQuestionFile = "all_industries_questions.txt"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024, // selfie data URLs and bulk imports
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	if err := utils.InitSelfieArchive(); err != nil {
		log.Fatal("failed to initialize selfie archive:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Category{},
		&models.Question{},
		&models.Industry{},
		&models.PreRegisteredUser{},
		&models.User{},
		&models.UserJourney{},
		&models.GameSession{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDirs(); err != nil {
		log.Fatal("failed to ensure upload dirs:", err)
	}

	sessionTTL := 2 * time.Hour
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			log.Fatalf("invalid SESSION_TTL_HOURS: %q", raw)
		}
		sessionTTL = time.Duration(hours) * time.Hour
	}

	// Redis when configured, in-process memory otherwise.
	var states store.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		states = store.NewRedisStore(redis.NewClient(opts), sessionTTL)
		log.Println("✅ Game state store: redis")
	} else {
		states = store.NewMemoryStore(sessionTTL)
		log.Println("✅ Game state store: in-memory")
	}

	questionFile := os.Getenv("QUESTION_FILE")
	if questionFile == "" {
		questionFile = defaultQuestionFile
	}
	bank := questionbank.NewBank(questionFile)

	gameService := services.NewGameService(db, states, bank)
	questionService := services.NewQuestionService(db)
	adminService := services.NewAdminService(db, jwtSecret)
	importService := services.NewImportService(db)
	exportService := services.NewExportService(db)

	if err := adminService.Seed(); err != nil {
		log.Fatal("failed to seed defaults:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService.StartStateSweeper(ctx)
	go workers.PollTempImports(ctx, 15*time.Minute)

	secureCookies := strings.HasPrefix(allowedOriginsList[0], "https://")
	handlers.SetupGameRoutes(app, gameService, int(sessionTTL.Seconds()), secureCookies)
	handlers.SetupAdminRoutes(app, adminService, questionService, importService, exportService, jwtSecret)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Question file: %s", questionFile)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
