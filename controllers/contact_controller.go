package controllers

import (
	"net/http"

	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/gin-gonic/gin"
)

// ContactController обрабатывает сообщения контактной формы
type ContactController struct {
	contactService *services.ContactService
}

// NewContactController создает новый экземпляр ContactController
func NewContactController(contactService *services.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

// Submit принимает сообщение контактной формы без авторизации
func (ctrl *ContactController) Submit(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	message, err := ctrl.contactService.Submit(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message received. Our team will contact you shortly.",
		"id":      message.ID,
	})
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *ContactController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/contact", ctrl.Submit)
}
