package controllers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/middleware"
	"github.com/SegundamanoDev/Aurelius-backend/models"
	"github.com/SegundamanoDev/Aurelius-backend/services"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Фронтенд живет на другом домене, origin проверяется на уровне CORS
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatClient представляет одно WebSocket-соединение комнаты
type chatClient struct {
	conn *websocket.Conn
	send chan models.ChatMessage
	room string
}

// chatHub раздает сообщения по комнатам. Каждая комната соответствует
// одному пользователю, администраторы подключаются к чужим комнатам.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*chatClient]bool
}

func newChatHub() *chatHub {
	return &chatHub{rooms: make(map[string]map[*chatClient]bool)}
}

func (h *chatHub) join(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[client.room] == nil {
		h.rooms[client.room] = make(map[*chatClient]bool)
	}
	h.rooms[client.room][client] = true
}

func (h *chatHub) leave(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[client.room]; ok {
		if clients[client] {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.rooms, client.room)
		}
	}
}

// broadcast рассылает сообщение всем участникам комнаты.
// Возвращает число получателей помимо отправителя.
func (h *chatHub) broadcast(sender *chatClient, message models.ChatMessage) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[message.Room] {
		select {
		case client.send <- message:
			if client != sender {
				delivered++
			}
		default:
			// Медленный получатель, сообщение останется в истории
		}
	}
	return delivered
}

// inboundChatMessage представляет входящее сообщение клиента
type inboundChatMessage struct {
	Text string `json:"text"`
}

// ChatController обрабатывает чат поддержки: историю и WebSocket
type ChatController struct {
	chatService *services.ChatService
	hub         *chatHub
	db          *gorm.DB
	jwtKey      []byte
}

// NewChatController создает новый экземпляр ChatController
func NewChatController(chatService *services.ChatService, db *gorm.DB, jwtKey []byte) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         newChatHub(),
		db:          db,
		jwtKey:      jwtKey,
	}
}

// GetHistory возвращает историю комнаты. Пользователь видит только
// свою комнату, администратор любую.
func (ctrl *ChatController) GetHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	room := c.Param("room")
	if user.Role != models.RoleAdmin && room != roomForUser(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access to this room is denied"})
		return
	}

	messages, err := ctrl.chatService.GetHistory(room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Connect апгрейдит соединение до WebSocket и подключает к комнате
func (ctrl *ChatController) Connect(c *gin.Context) {
	user := middleware.CurrentUser(c)

	room := c.Query("room")
	if room == "" {
		room = roomForUser(user.ID)
	}
	if user.Role != models.RoleAdmin && room != roomForUser(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access to this room is denied"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError("websocket upgrade failed: %v", err)
		return
	}

	client := &chatClient{
		conn: conn,
		send: make(chan models.ChatMessage, 16),
		room: room,
	}
	ctrl.hub.join(client)

	go ctrl.writePump(client)
	go ctrl.readPump(client, user)
}

// readPump читает сообщения клиента, сохраняет их и рассылает по комнате
func (ctrl *ChatController) readPump(client *chatClient, user *models.User) {
	defer func() {
		ctrl.hub.leave(client)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(chatPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(chatPongWait))
		return nil
	})

	for {
		var inbound inboundChatMessage
		if err := client.conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogError("websocket read error: %v", err)
			}
			return
		}

		message, err := ctrl.chatService.SaveMessage(client.room, user.ID, inbound.Text, user.Role == models.RoleAdmin)
		if err != nil {
			utils.LogError("failed to save chat message: %v", err)
			continue
		}

		if ctrl.hub.broadcast(client, *message) > 0 {
			if err := ctrl.chatService.MarkDelivered(message.ID); err != nil {
				utils.LogError("failed to mark message delivered: %v", err)
			}
		}
	}
}

// writePump пишет сообщения комнаты в соединение
func (ctrl *ChatController) writePump(client *chatClient) {
	ticker := time.NewTicker(chatPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RegisterRoutes регистрирует маршруты контроллера
func (ctrl *ChatController) RegisterRoutes(router *gin.RouterGroup) {
	chat := router.Group("/chat")
	chat.Use(middleware.Auth(ctrl.db, ctrl.jwtKey))

	chat.GET("/history/:room", ctrl.GetHistory)
	chat.GET("/ws", ctrl.Connect)
}

// roomForUser возвращает имя персональной комнаты пользователя
func roomForUser(userID uint) string {
	return "user-" + strconv.FormatUint(uint64(userID), 10)
}
