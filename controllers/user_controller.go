package controllers

import (
	"net/http"
	"strconv"

	"github.com/SegundamanoDev/Aurelius-backend/middleware"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserController обрабатывает запросы к профилям пользователей
type UserController struct {
	userService *services.UserService
	db          *gorm.DB
	jwtKey      []byte
}

// NewUserController создает новый экземпляр UserController
func NewUserController(userService *services.UserService, db *gorm.DB, jwtKey []byte) *UserController {
	return &UserController{
		userService: userService,
		db:          db,
		jwtKey:      jwtKey,
	}
}

// GetProfile возвращает профиль текущего пользователя
func (ctrl *UserController) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profile, err := ctrl.userService.GetByID(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile обновляет профиль текущего пользователя
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	updated, err := ctrl.userService.UpdateProfile(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// GetAllUsers возвращает всех пользователей (администратор)
func (ctrl *UserController) GetAllUsers(c *gin.Context) {
	users, err := ctrl.userService.GetAllUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserByID возвращает пользователя по ID (администратор)
func (ctrl *UserController) GetUserByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	user, err := ctrl.userService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser обновляет пользователя с привилегиями администратора
func (ctrl *UserController) UpdateUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	var req services.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := ctrl.userService.AdminUpdateUser(id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser удаляет пользователя (администратор)
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	if err := ctrl.userService.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User successfully purged from system"})
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *UserController) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.Auth(ctrl.db, ctrl.jwtKey))

	users.GET("/profile", ctrl.GetProfile)
	users.PUT("/profile", ctrl.UpdateProfile)

	admin := users.Group("/admin")
	admin.Use(middleware.Admin())
	admin.GET("/all", ctrl.GetAllUsers)
	admin.GET("/:id", ctrl.GetUserByID)
	admin.PUT("/:id", ctrl.UpdateUser)
	admin.DELETE("/:id", ctrl.DeleteUser)
}

// parseIDParam разбирает параметр :id маршрута
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
