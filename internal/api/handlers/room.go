package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"werewolf_web/internal/service"
)

// RoomHandler 處理與遊戲房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
	userService *service.UserService
	gameService *service.GameService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, userService *service.UserService, gameService *service.GameService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		userService: userService,
		gameService: gameService,
	}
}

// playerID 將 JWT 中的用戶ID轉為遊戲層使用的玩家ID
func playerID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	return strconv.FormatUint(uint64(userID.(uint)), 10)
}

// CreateRoom 處理創建新房間的請求，房間ID由伺服器生成
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input struct {
		MaxPlayers int `json:"max_players" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(uuid.NewString(), playerID(c), input.MaxPlayers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms 回傳所有房間列表
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.roomService.ListRooms())
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, room)
}

// JoinRoom 處理加入房間的請求
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, _ := c.Get("userID")
	user, err := h.userService.GetUserByID(userID.(uint))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用戶不存在"})
		return
	}

	player := &service.Player{
		ID:    playerID(c),
		Name:  user.Username,
		Alive: true,
	}
	if !h.roomService.AddPlayer(c.Param("id"), player) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "房間已滿或不存在"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功加入房間"})
}

// LeaveRoom 處理離開房間的請求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	h.roomService.RemovePlayer(c.Param("id"), playerID(c))
	c.JSON(http.StatusOK, gin.H{"message": "成功離開房間"})
}

// DeleteRoom 處理刪除房間的請求，只有房主可以操作
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if room.HostID != playerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotHost.Error()})
		return
	}

	// 房間拆除時一併銷毀進行中的對局
	h.gameService.DeleteGame(room.ID)
	h.roomService.DeleteRoom(room.ID)
	c.JSON(http.StatusOK, gin.H{"message": "房間已刪除"})
}

// UpdateSettings 處理修改房間設置的請求
func (h *RoomHandler) UpdateSettings(c *gin.Context) {
	var input service.RoomSettingsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.roomService.UpdateSettings(c.Param("id"), playerID(c), input)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "設置已更新"})
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// SetReady 處理玩家準備狀態切換的請求
func (h *RoomHandler) SetReady(c *gin.Context) {
	var input struct {
		Ready bool `json:"ready"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomService.SetReady(c.Param("id"), playerID(c), input.Ready); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "準備狀態已更新"})
}
