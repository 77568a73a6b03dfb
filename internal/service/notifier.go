package service

import "time"

// 推播事件類型
const (
	EventPhaseChange = "PHASE_CHANGE"
	EventRoleTurn    = "ROLE_TURN"
	EventVoteResult  = "VOTE_RESULT"
	EventGameOver    = "GAME_OVER"
)

// Notifier 是遊戲核心對外推播的抽象能力
// GameService 在每次狀態轉換時同步呼叫，實作方不可阻塞排程流程
type Notifier interface {
	PhaseChange(gameID string, phase Phase)
	RoleTurn(gameID string, role RoleName, deadline time.Time)
	// VoteResult 的 eliminatedID 為空字串時表示本輪沒有人被淘汰
	VoteResult(gameID string, eliminatedID string)
	GameOver(gameID string, winner Faction)
}
