package controllers

import (
	"net/http"
	"strconv"

	"github.com/SegundamanoDev/Aurelius-backend/middleware"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionController обрабатывает запросы журнала денежных операций
type TransactionController struct {
	transactionService *services.TransactionService
	uploadService      *services.UploadService
	emailService       *services.EmailService
	db                 *gorm.DB
	jwtKey             []byte
}

// NewTransactionController создает новый экземпляр TransactionController
func NewTransactionController(
	transactionService *services.TransactionService,
	uploadService *services.UploadService,
	emailService *services.EmailService,
	db *gorm.DB,
	jwtKey []byte,
) *TransactionController {
	return &TransactionController{
		transactionService: transactionService,
		uploadService:      uploadService,
		emailService:       emailService,
		db:                 db,
		jwtKey:             jwtKey,
	}
}

// Deposit принимает заявку на пополнение. Форма multipart: подтверждение
// платежа загружается в хранилище до записи заявки в журнал.
func (ctrl *TransactionController) Deposit(c *gin.Context) {
	user := middleware.CurrentUser(c)

	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}

	req := services.DepositRequest{
		Amount:      amount,
		Method:      c.PostForm("method"),
		ReferenceID: c.PostForm("referenceId"),
	}

	file, header, err := c.Request.FormFile("proofImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Proof of payment is required"})
		return
	}
	defer file.Close()

	proofURL, err := ctrl.uploadService.UploadProof(file, header)
	if err != nil {
		respondError(c, err)
		return
	}
	req.ProofImage = proofURL

	transaction, err := ctrl.transactionService.Deposit(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Deposit submitted. Awaiting confirmation.",
		"transaction": transaction,
	})
}

// Withdraw принимает заявку на вывод средств
func (ctrl *TransactionController) Withdraw(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.RequestWithdrawal(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Уведомление не входит в успех заявки, сбой только логируется
	go func(email, reference string, amount float64) {
		if err := ctrl.emailService.SendWithdrawalNotification(email, reference, amount); err != nil {
			utils.LogError("withdrawal notification email failed: %v", err)
		}
	}(user.Email, transaction.ReferenceID, transaction.Amount)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Withdrawal request submitted",
		"reference":   transaction.ReferenceID,
		"transaction": transaction,
	})
}

// Purchase обрабатывает покупку плана или торгового сигнала
func (ctrl *TransactionController) Purchase(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.Purchase(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Purchase completed",
		"transaction": transaction,
	})
}

// PurchaseService обрабатывает сервисную операцию с дискриминатором типа
func (ctrl *TransactionController) PurchaseService(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.ServicePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.PurchaseService(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Operation completed",
		"transaction": transaction,
	})
}

// GetMyTransactions возвращает историю операций текущего пользователя
func (ctrl *TransactionController) GetMyTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	transactions, err := ctrl.transactionService.GetUserTransactions(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// GetAllTransactions возвращает все операции (администратор)
func (ctrl *TransactionController) GetAllTransactions(c *gin.Context) {
	transactions, err := ctrl.transactionService.GetAllTransactions()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// UpdateStatus переводит операцию в терминальный статус (администратор)
func (ctrl *TransactionController) UpdateStatus(c *gin.Context) {
	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.UpdateStatus(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction status updated",
		"transaction": transaction,
	})
}

// InjectLedgerEntry создает запись журнала напрямую (администратор)
func (ctrl *TransactionController) InjectLedgerEntry(c *gin.Context) {
	var req services.InjectLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.InjectLedgerEntry(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Ledger entry created",
		"transaction": transaction,
	})
}

// TopupProfit начисляет прибыль пользователю (администратор)
func (ctrl *TransactionController) TopupProfit(c *gin.Context) {
	var req services.TopupProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	transaction, err := ctrl.transactionService.TopupProfit(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Profit allocated",
		"transaction": transaction,
	})
}

// ExportStatement выгружает журнал в XML (администратор)
func (ctrl *TransactionController) ExportStatement(c *gin.Context) {
	data, err := ctrl.transactionService.ExportStatement()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="statement.xml"`)
	c.Data(http.StatusOK, "application/xml", data)
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *TransactionController) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	transactions.Use(middleware.Auth(ctrl.db, ctrl.jwtKey))

	transactions.POST("/deposit", ctrl.Deposit)
	transactions.POST("/withdraw", ctrl.Withdraw)
	transactions.POST("/purchase", ctrl.Purchase)
	transactions.POST("/purchase-service", ctrl.PurchaseService)
	transactions.GET("/my-history", ctrl.GetMyTransactions)
	transactions.POST("/inject-profit", middleware.Admin(), ctrl.TopupProfit)

	admin := transactions.Group("/admin")
	admin.Use(middleware.Admin())
	admin.GET("/all", ctrl.GetAllTransactions)
	admin.PUT("/update-status", ctrl.UpdateStatus)
	admin.POST("/inject", ctrl.InjectLedgerEntry)
	admin.GET("/export", ctrl.ExportStatement)
}
