package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"werewolf_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	wsManager   *service.WebSocketManager
	roomService *service.RoomService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(wsManager *service.WebSocketManager, roomService *service.RoomService) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		roomService: roomService,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求
// 只有已加入房間的玩家可以建立連接
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	roomID := c.Param("id")
	pid := playerID(c)

	// 確認玩家已加入此房間
	room, err := h.roomService.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	member := false
	for _, p := range room.Players {
		if p.ID == pid {
			member = true
			break
		}
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "用戶未加入此房間"})
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &service.Client{
		Conn:     conn,
		PlayerID: pid,
		RoomID:   roomID,
	}

	// 處理客戶端連接，阻塞直到連接關閉
	h.wsManager.HandleClient(client)
}
