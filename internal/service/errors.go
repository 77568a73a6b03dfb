package service

import "errors"

// 服務層錯誤，handler 負責轉換為對應的 HTTP 狀態碼
var (
	ErrRoomNotFound     = errors.New("房間不存在")
	ErrRoomExists       = errors.New("房間ID已被使用")
	ErrNotHost          = errors.New("只有房主可以執行此操作")
	ErrRoomFull         = errors.New("房間已滿")
	ErrRoomNotWaiting   = errors.New("房間不在等待狀態")
	ErrNotEnoughPlayers = errors.New("玩家人數不足")
	ErrInvalidSettings  = errors.New("無效的房間設置")

	ErrGameNotFound  = errors.New("遊戲不存在")
	ErrGameStarted   = errors.New("遊戲已經開始")
	ErrInvalidVote   = errors.New("無效的投票")
	ErrInvalidAction = errors.New("無效的行動")
	ErrGameOver      = errors.New("遊戲已結束")
	ErrCoupleExists  = errors.New("情侶配對已經存在")
)
