package service

import (
	"math/rand"
	"time"

	"werewolf_web/internal/repository"
)

type Services struct {
	User             *UserService
	Room             *RoomService
	Game             *GameService
	WebSocketManager *WebSocketManager
}

// NewServices 建立並連接所有服務
// WebSocketManager 同時是遊戲核心的推播出口，
// 因此先建立它再注入 GameService，最後回頭綁定指令路由
func NewServices(repos *repository.Repositories) *Services {
	wsManager := NewWebSocketManager()
	catalog := NewRoleCatalog()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	roomService := NewRoomService()
	gameService := NewGameService(catalog, wsManager, rng)
	gameService.OnGameOver(roomService.MarkFinished)
	wsManager.Bind(roomService, gameService)

	return &Services{
		User:             NewUserService(repos.User),
		Room:             roomService,
		Game:             gameService,
		WebSocketManager: wsManager,
	}
}
