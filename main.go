package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"github.com/SegundamanoDev/Aurelius-backend/controllers"
	"github.com/SegundamanoDev/Aurelius-backend/database"
	"github.com/SegundamanoDev/Aurelius-backend/middleware"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/gin-gonic/gin"
)

// pingHandler отвечает на проверку живости. Используется хостингом
// и внутренним keep-alive планировщиком.
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// setupRouter собирает gin-роутер со всеми middleware и маршрутами
func setupRouter(cfg *config.Config, db *database.Database) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimit())

	router.GET("/ping", pingHandler)

	// Инициализируем сервисы
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(db.DB)
	traderService := services.NewTraderService(db.DB)
	transactionService := services.NewTransactionService(db.DB)
	chatService := services.NewChatService(db.DB)
	contactService := services.NewContactService(db.DB, emailService)

	uploadService, err := services.NewUploadService(cfg)
	if err != nil {
		return nil, fmt.Errorf("upload service init failed: %w", err)
	}

	// Посев администратора, если задан в конфигурации
	if err := userService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("admin seeding failed: %w", err)
	}

	jwtKey := []byte(cfg.JWT.SecretKey)

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(userService, cfg)
	userController := controllers.NewUserController(userService, db.DB, jwtKey)
	traderController := controllers.NewTraderController(traderService, db.DB, jwtKey)
	transactionController := controllers.NewTransactionController(transactionService, uploadService, emailService, db.DB, jwtKey)
	chatController := controllers.NewChatController(chatService, db.DB, jwtKey)
	contactController := controllers.NewContactController(contactService)

	api := router.Group("/api")
	authController.RegisterRoutes(api)
	userController.RegisterRoutes(api)
	traderController.RegisterRoutes(api)
	transactionController.RegisterRoutes(api)
	chatController.RegisterRoutes(api)
	contactController.RegisterRoutes(api)

	return router, nil
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем логгер
	utils.InitLogger(cfg.Log.Dir, cfg.Log.Level)

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Запускаем keep-alive планировщик
	if cfg.KeepAlive.Enabled {
		keepAlive := services.NewKeepAliveService(cfg)
		if err := keepAlive.Start(); err != nil {
			log.Fatalf("Ошибка запуска keep-alive планировщика: %v", err)
		}
		defer keepAlive.Stop()
	}

	router, err := setupRouter(cfg, db)
	if err != nil {
		log.Fatalf("Ошибка инициализации роутера: %v", err)
	}

	// Запускаем сервер
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.LogInfo("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
