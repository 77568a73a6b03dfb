package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"werewolf_web/internal/api/handlers"
	"werewolf_web/internal/middleware"
	"werewolf_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	roomHandler := handlers.NewRoomHandler(services.Room, services.User, services.Game)
	gameHandler := handlers.NewGameHandler(services.Room, services.Game)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager, services.Room)

	// API 路由群組，所有請求共用頻率限制（每分鐘 100 次）
	api := r.Group("/api")
	api.Use(middleware.RateLimit(100, time.Minute))

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/refresh", authHandler.Refresh)
		api.POST("/logout", authHandler.Logout)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("/me", authHandler.Me)

		// 遊戲房間相關
		rooms := authorized.Group("/rooms")
		{
			// 基本操作
			rooms.GET("", roomHandler.ListRooms)          // 獲取房間列表
			rooms.POST("", roomHandler.CreateRoom)        // 創建房間
			rooms.GET("/:id", roomHandler.GetRoom)        // 獲取房間信息
			rooms.DELETE("/:id", roomHandler.DeleteRoom)  // 刪除房間（房主）
			rooms.PUT("/:id/settings", roomHandler.UpdateSettings) // 修改設置（房主）

			// 房間參與
			rooms.POST("/:id/join", roomHandler.JoinRoom)   // 加入房間
			rooms.POST("/:id/leave", roomHandler.LeaveRoom) // 離開房間
			rooms.POST("/:id/ready", roomHandler.SetReady)  // 準備狀態

			// 對局操作
			rooms.POST("/:id/start", gameHandler.StartGame) // 開始遊戲（房主）
			rooms.GET("/:id/game", gameHandler.GetGame)     // 對局狀態
			rooms.POST("/:id/vote", gameHandler.Vote)       // 投票
			rooms.POST("/:id/action", gameHandler.Action)   // 角色行動
			rooms.POST("/:id/couple", gameHandler.Couple)   // 丘比特配對

			// WebSocket 連接
			rooms.GET("/:id/ws", wsHandler.HandleWebSocket) // WebSocket 連接點
		}
	}
}
