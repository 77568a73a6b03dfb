package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"werewolf_web/internal/service"
)

// GameHandler 處理與對局相關的請求
// 對局ID與房間ID相同，一個房間同時只有一場對局
type GameHandler struct {
	roomService *service.RoomService
	gameService *service.GameService
}

// NewGameHandler 創建一個新的 GameHandler 實例
func NewGameHandler(roomService *service.RoomService, gameService *service.GameService) *GameHandler {
	return &GameHandler{
		roomService: roomService,
		gameService: gameService,
	}
}

// StartGame 將房間轉為進行中的對局：房主發起、取得名單與設置快照、
// 建立對局並開始第一個夜晚
func (h *GameHandler) StartGame(c *gin.Context) {
	roomID := c.Param("id")

	players, settings, err := h.roomService.BeginGame(roomID, playerID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotHost):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	h.gameService.CreateGame(roomID, roomID, players, settings)
	if err := h.gameService.StartGame(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "遊戲開始"})
}

// GetGame 回傳對局狀態的快照
func (h *GameHandler) GetGame(c *gin.Context) {
	game, err := h.gameService.GetGame(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, game)
}

// Vote 登記一票，所有存活玩家投完後伺服器自動結算
func (h *GameHandler) Vote(c *gin.Context) {
	var input struct {
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.gameService.RegisterVote(c.Param("id"), playerID(c), input.TargetID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "投票成功"})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// Action 處理玩家在自己角色回合內的行動
func (h *GameHandler) Action(c *gin.Context) {
	var input struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.gameService.HandleRoleAction(c.Param("id"), playerID(c), input.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidAction.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "行動成功"})
}

// Couple 記錄丘比特指定的情侶配對
func (h *GameHandler) Couple(c *gin.Context) {
	var input struct {
		Player1ID string `json:"player1_id" binding:"required"`
		Player2ID string `json:"player2_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.gameService.SetCouple(c.Param("id"), input.Player1ID, input.Player2ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "配對成功"})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
