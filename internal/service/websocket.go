package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event 是推送給客戶端的統一訊息格式
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// 各事件的 payload 結構
type PhaseChangePayload struct {
	GameID string `json:"game_id"`
	Phase  Phase  `json:"phase"`
}

type RoleTurnPayload struct {
	GameID   string    `json:"game_id"`
	Role     RoleName  `json:"role"`
	Deadline time.Time `json:"deadline"`
}

type VoteResultPayload struct {
	GameID             string  `json:"game_id"`
	EliminatedPlayerID *string `json:"eliminated_player_id"` // 沒有人被淘汰時為 null
}

type GameOverPayload struct {
	GameID         string  `json:"game_id"`
	WinningFaction Faction `json:"winning_faction"`
}

type ChatPayload struct {
	RoomID    string    `json:"room_id"`
	PlayerID  string    `json:"player_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// clientMessage 是客戶端經由 WebSocket 傳入的指令
type clientMessage struct {
	Type    string `json:"type"` // chat / wolf_chat / vote / action / couple
	Content string `json:"content,omitempty"`
	Target  string `json:"target,omitempty"`
	Target2 string `json:"target2,omitempty"`
	Action  string `json:"action,omitempty"`
}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn // WebSocket 連接
	PlayerID string          // 玩家 ID
	RoomID   string          // 房間 ID
	SendChan chan Event      // 訊息發送通道，用於異步傳送訊息
}

// WebSocketManager 管理所有的 WebSocket 連接和訊息傳遞，
// 同時作為遊戲核心的推播出口（實作 Notifier）
// 與指令入口（將客戶端訊息轉交給 RoomService / GameService）
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖

	rooms *RoomService
	games *GameService
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理服務
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// Bind 注入房間與對局服務
// GameService 在建構時需要 Notifier，因此這層綁定延後到兩者都建立之後
func (m *WebSocketManager) Bind(rooms *RoomService, games *GameService) {
	m.rooms = rooms
	m.games = games
}

// HandleClient 處理新的 WebSocket 連接，阻塞直到連接關閉
func (m *WebSocketManager) HandleClient(client *Client) {
	client.SendChan = make(chan Event, 256)
	m.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		m.removeClient(client)
		client.Conn.Close()
		close(client.SendChan)
	}()

	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續監聽並處理從客戶端接收的訊息
func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("message parse error: %v", err)
			continue
		}

		m.dispatch(client, msg)
	}
}

// dispatch 將客戶端指令轉交給對應的服務
// 對局指令以房間ID作為對局ID（一個房間同時只有一場對局）
func (m *WebSocketManager) dispatch(client *Client, msg clientMessage) {
	switch msg.Type {
	case "chat":
		room, err := m.rooms.GetRoom(client.RoomID)
		if err != nil || !room.Settings.DiscussionEnabled {
			return
		}
		m.BroadcastToRoom(client.RoomID, Event{
			Type: "CHAT",
			Payload: ChatPayload{
				RoomID:    client.RoomID,
				PlayerID:  client.PlayerID,
				Content:   msg.Content,
				Timestamp: time.Now(),
			},
		})

	case "wolf_chat":
		m.handleWolfChat(client, msg.Content)

	case "vote":
		if err := m.games.RegisterVote(client.RoomID, client.PlayerID, msg.Target); err != nil {
			m.sendToClient(client, Event{Type: "ERROR", Payload: err.Error()})
		}

	case "action":
		if !m.games.HandleRoleAction(client.RoomID, client.PlayerID, msg.Action) {
			m.sendToClient(client, Event{Type: "ERROR", Payload: ErrInvalidAction.Error()})
		}

	case "couple":
		if err := m.games.SetCouple(client.RoomID, msg.Target, msg.Target2); err != nil {
			m.sendToClient(client, Event{Type: "ERROR", Payload: err.Error()})
		}

	default:
		log.Printf("unhandled message type: %s", msg.Type)
	}
}

// handleWolfChat 處理狼人頻道訊息，只在夜晚對存活的狼人廣播
func (m *WebSocketManager) handleWolfChat(client *Client, content string) {
	room, err := m.rooms.GetRoom(client.RoomID)
	if err != nil || !room.Settings.WerewolfChatEnabled {
		return
	}

	game, err := m.games.GetGame(client.RoomID)
	if err != nil || game.Phase != PhaseNight {
		return
	}

	wolves := make(map[string]bool)
	senderIsWolf := false
	for _, p := range game.Players {
		if p.Alive && p.Role == RoleWerewolf {
			wolves[p.ID] = true
			if p.ID == client.PlayerID {
				senderIsWolf = true
			}
		}
	}
	if !senderIsWolf {
		return
	}

	event := Event{
		Type: "WOLF_CHAT",
		Payload: ChatPayload{
			RoomID:    client.RoomID,
			PlayerID:  client.PlayerID,
			Content:   content,
			Timestamp: time.Now(),
		},
	}

	m.clientsMux.RLock()
	clients := m.clients[client.RoomID]
	m.clientsMux.RUnlock()

	for c := range clients {
		if wolves[c.PlayerID] {
			m.sendToClient(c, event)
		}
	}
}

// writePump 處理向客戶端發送訊息的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("message encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastToRoom 向房間內的所有客戶端廣播訊息
// 寫入的是帶緩衝的發送通道，不會阻塞呼叫方
func (m *WebSocketManager) BroadcastToRoom(roomID string, event Event) {
	m.clientsMux.RLock()
	clients := m.clients[roomID]
	m.clientsMux.RUnlock()

	for client := range clients {
		m.sendToClient(client, event)
	}
}

func (m *WebSocketManager) sendToClient(client *Client, event Event) {
	select {
	case client.SendChan <- event:
		// 訊息成功加入發送隊列
	default:
		// 客戶端訊息隊列已滿，關閉連接
		m.removeClient(client)
		client.Conn.Close()
	}
}

// PhaseChange 實作 Notifier
func (m *WebSocketManager) PhaseChange(gameID string, phase Phase) {
	m.BroadcastToRoom(gameID, Event{
		Type:    EventPhaseChange,
		Payload: PhaseChangePayload{GameID: gameID, Phase: phase},
	})
}

// RoleTurn 實作 Notifier
func (m *WebSocketManager) RoleTurn(gameID string, role RoleName, deadline time.Time) {
	m.BroadcastToRoom(gameID, Event{
		Type:    EventRoleTurn,
		Payload: RoleTurnPayload{GameID: gameID, Role: role, Deadline: deadline},
	})
}

// VoteResult 實作 Notifier
func (m *WebSocketManager) VoteResult(gameID string, eliminatedID string) {
	payload := VoteResultPayload{GameID: gameID}
	if eliminatedID != "" {
		payload.EliminatedPlayerID = &eliminatedID
	}
	m.BroadcastToRoom(gameID, Event{Type: EventVoteResult, Payload: payload})
}

// GameOver 實作 Notifier
func (m *WebSocketManager) GameOver(gameID string, winner Faction) {
	m.BroadcastToRoom(gameID, Event{
		Type:    EventGameOver,
		Payload: GameOverPayload{GameID: gameID, WinningFaction: winner},
	})
}

// addClient 安全地添加新的客戶端連接
func (m *WebSocketManager) addClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.clients[client.RoomID] == nil {
		m.clients[client.RoomID] = make(map[*Client]bool)
	}
	m.clients[client.RoomID][client] = true
}

// removeClient 安全地移除客戶端連接
func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if clients, ok := m.clients[client.RoomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(m.clients, client.RoomID)
		}
	}
}

// GetRoomClients 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) GetRoomClients(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}
