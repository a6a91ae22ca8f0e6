package controllers

import (
	"net/http"

	"github.com/SegundamanoDev/Aurelius-backend/middleware"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TraderController обрабатывает запросы реестра стратегов и копирования
type TraderController struct {
	traderService *services.TraderService
	db            *gorm.DB
	jwtKey        []byte
}

// NewTraderController создает новый экземпляр TraderController
func NewTraderController(traderService *services.TraderService, db *gorm.DB, jwtKey []byte) *TraderController {
	return &TraderController{
		traderService: traderService,
		db:            db,
		jwtKey:        jwtKey,
	}
}

// GetTraders возвращает витрину публичных стратегов
func (ctrl *TraderController) GetTraders(c *gin.Context) {
	traders, err := ctrl.traderService.GetPublicTraders()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, traders)
}

// GetTraderByID возвращает стратега по ID
func (ctrl *TraderController) GetTraderByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid trader ID"})
		return
	}

	trader, err := ctrl.traderService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trader)
}

// CreateTrader создает профиль стратега (администратор)
func (ctrl *TraderController) CreateTrader(c *gin.Context) {
	var req services.CreateTraderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	trader, err := ctrl.traderService.CreateTrader(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trader)
}

// UpdateTrader обновляет профиль стратега (администратор)
func (ctrl *TraderController) UpdateTrader(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid trader ID"})
		return
	}

	var req services.UpdateTraderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	trader, err := ctrl.traderService.UpdateTrader(id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trader)
}

// DeleteTrader удаляет профиль стратега (администратор)
func (ctrl *TraderController) DeleteTrader(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid trader ID"})
		return
	}

	if err := ctrl.traderService.DeleteTrader(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trader removed from terminal"})
}

// StartCopying начинает копирование стратега
func (ctrl *TraderController) StartCopying(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := ctrl.traderService.StartCopying(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Mirroring started successfully",
		"tradingBalance": result.TradingBalance,
		"copiedTraders":  result.CopiedTraders,
	})
}

// StopCopying прекращает копирование стратега
func (ctrl *TraderController) StopCopying(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.StopCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := ctrl.traderService.StopCopying(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Position closed. Funds returned to trading balance.",
		"tradingBalance": result.TradingBalance,
	})
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *TraderController) RegisterRoutes(router *gin.RouterGroup) {
	traders := router.Group("/traders")

	// Витрина доступна без авторизации
	traders.GET("", ctrl.GetTraders)
	traders.GET("/:id", ctrl.GetTraderByID)

	auth := traders.Group("")
	auth.Use(middleware.Auth(ctrl.db, ctrl.jwtKey))
	auth.POST("/copy/start", ctrl.StartCopying)
	auth.POST("/copy/stop", ctrl.StopCopying)

	admin := auth.Group("")
	admin.Use(middleware.Admin())
	admin.POST("", ctrl.CreateTrader)
	admin.PUT("/:id", ctrl.UpdateTrader)
	admin.DELETE("/:id", ctrl.DeleteTrader)
}
