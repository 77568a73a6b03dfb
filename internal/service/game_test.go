package service

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// recordingNotifier 記錄核心推送的事件，測試用
type recordingNotifier struct {
	mu           sync.Mutex
	phaseChanges []Phase
	roleTurns    []RoleName
	voteResults  []string
	gameOvers    []Faction
}

func (n *recordingNotifier) PhaseChange(gameID string, phase Phase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.phaseChanges = append(n.phaseChanges, phase)
}

func (n *recordingNotifier) RoleTurn(gameID string, role RoleName, deadline time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roleTurns = append(n.roleTurns, role)
}

func (n *recordingNotifier) VoteResult(gameID string, eliminatedID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.voteResults = append(n.voteResults, eliminatedID)
}

func (n *recordingNotifier) GameOver(gameID string, winner Faction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gameOvers = append(n.gameOvers, winner)
}

func (n *recordingNotifier) turnCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.roleTurns)
}

func newTestGameService() (*GameService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	s := NewGameService(NewRoleCatalog(), notifier, rand.New(rand.NewSource(1)))
	return s, notifier
}

// makePlayers 依給定角色建立玩家 p1, p2, ...
func makePlayers(roles ...RoleName) []*Player {
	players := make([]*Player, len(roles))
	for i, role := range roles {
		players[i] = &Player{
			ID:    fmt.Sprintf("p%d", i+1),
			Name:  fmt.Sprintf("player%d", i+1),
			Role:  role,
			Alive: true,
		}
	}
	return players
}

func TestStartGameUnknownID(t *testing.T) {
	s, _ := newTestGameService()
	if err := s.StartGame("missing"); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestAssignRolesPadsWithVillagers(t *testing.T) {
	s, _ := newTestGameService()

	const n = 10
	players := make([]*Player, n)
	for i := range players {
		players[i] = &Player{ID: fmt.Sprintf("p%d", i+1)}
	}
	game := s.CreateGame("g1", "r1", players, DefaultSettings())

	game.mu.Lock()
	s.assignRoles(game)
	game.mu.Unlock()

	counts := make(map[RoleName]int)
	for _, p := range game.Players {
		if !p.Alive {
			t.Fatalf("player %s should start alive", p.ID)
		}
		counts[p.Role]++
	}

	// 角色表每種角色恰好一個，剩餘名額全部是村民
	for _, role := range []RoleName{RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleCupid} {
		if counts[role] != 1 {
			t.Fatalf("expected exactly one %s, got %d", role, counts[role])
		}
	}
	if counts[RoleVillager] != n-5 {
		t.Fatalf("expected %d villagers, got %d", n-5, counts[RoleVillager])
	}
}

func TestStartGameEntersNight(t *testing.T) {
	s, notifier := newTestGameService()

	players := make([]*Player, 6)
	for i := range players {
		players[i] = &Player{ID: fmt.Sprintf("p%d", i+1)}
	}
	s.CreateGame("g1", "r1", players, DefaultSettings())

	if err := s.StartGame("g1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	game, err := s.GetGame("g1")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if game.Phase != PhaseNight {
		t.Fatalf("expected night phase, got %s", game.Phase)
	}
	// 夜晚隊列頭（狼人）已被取出成為當前回合
	if game.CurrentRole != RoleWerewolf {
		t.Fatalf("expected werewolf turn, got %s", game.CurrentRole)
	}
	if notifier.turnCount() != 1 {
		t.Fatalf("expected one ROLE_TURN event, got %d", notifier.turnCount())
	}

	// 重複開始同一場對局必須失敗
	if err := s.StartGame("g1"); err != ErrGameStarted {
		t.Fatalf("expected ErrGameStarted, got %v", err)
	}

	s.DeleteGame("g1")
}

// 建立一場夜晚進行中的對局：狼人回合已經開始
func setupNightGame(t *testing.T, s *GameService, roles ...RoleName) *Game {
	t.Helper()
	game := s.CreateGame("g1", "r1", makePlayers(roles...), DefaultSettings())
	game.mu.Lock()
	game.Phase = PhaseNight
	game.RemainingRoles = s.catalog.ForPhase(PhaseNight)
	s.scheduleNextTurn(game)
	game.mu.Unlock()
	return game
}

func TestHandleRoleActionAdvancesTurn(t *testing.T) {
	s, notifier := newTestGameService()
	game := setupNightGame(t, s, RoleWerewolf, RoleSeer, RoleVillager, RoleVillager)
	defer s.DeleteGame("g1")

	if game.current != RoleWerewolf {
		t.Fatalf("expected werewolf turn, got %s", game.current)
	}

	// 狼人行動後回合立即推進到預言家
	if !s.HandleRoleAction("g1", "p1", "kill") {
		t.Fatal("werewolf action should succeed")
	}
	if game.current != RoleSeer {
		t.Fatalf("expected seer turn, got %s", game.current)
	}
	if notifier.turnCount() != 2 {
		t.Fatalf("expected 2 ROLE_TURN events, got %d", notifier.turnCount())
	}

	if len(game.Actions) != 1 || game.Actions[0].PlayerID != "p1" {
		t.Fatalf("action not logged: %+v", game.Actions)
	}
}

func TestHandleRoleActionValidation(t *testing.T) {
	s, _ := newTestGameService()
	game := setupNightGame(t, s, RoleWerewolf, RoleSeer, RoleVillager, RoleVillager)
	defer s.DeleteGame("g1")

	if s.HandleRoleAction("missing", "p1", "kill") {
		t.Fatal("unknown game should fail")
	}
	if s.HandleRoleAction("g1", "ghost", "kill") {
		t.Fatal("unknown player should fail")
	}
	// 不是當前回合的角色不能行動
	if s.HandleRoleAction("g1", "p2", "see") {
		t.Fatal("out-of-turn action should fail")
	}

	game.mu.Lock()
	game.Players[0].Alive = false
	game.mu.Unlock()
	if s.HandleRoleAction("g1", "p1", "kill") {
		t.Fatal("dead player should fail")
	}

	// 任何拒絕都不得推進回合
	if game.current != RoleWerewolf {
		t.Fatalf("turn advanced on rejected action: %s", game.current)
	}
}

func TestTurnAdvancesAtMostOnce(t *testing.T) {
	s, notifier := newTestGameService()
	game := setupNightGame(t, s, RoleWerewolf, RoleSeer, RoleVillager, RoleVillager)
	defer s.DeleteGame("g1")

	// 情境一：玩家先行動，計時器到期後到達（舊序號）必須是無效操作
	staleSeq := game.turnSeq
	if !s.HandleRoleAction("g1", "p1", "kill") {
		t.Fatal("werewolf action should succeed")
	}
	turnsAfterAction := notifier.turnCount()

	s.onTurnExpired(game, staleSeq)
	if notifier.turnCount() != turnsAfterAction {
		t.Fatal("stale timer expiry advanced the turn again")
	}
	if game.current != RoleSeer {
		t.Fatalf("expected seer turn, got %s", game.current)
	}

	// 情境二：計時器先到期，之後的玩家行動必須失敗
	s.onTurnExpired(game, game.turnSeq)
	if game.current != RoleWitch {
		t.Fatalf("expected witch turn after expiry, got %s", game.current)
	}
	if s.HandleRoleAction("g1", "p2", "see") {
		t.Fatal("late action for an expired turn should fail")
	}
	if game.current != RoleWitch {
		t.Fatalf("late action advanced the turn: %s", game.current)
	}
}

func TestPhaseFlipsWhenQueueEmpties(t *testing.T) {
	s, _ := newTestGameService()
	game := setupNightGame(t, s, RoleWerewolf, RoleSeer, RoleVillager, RoleVillager)
	defer s.DeleteGame("g1")

	// 依序耗盡夜晚隊列：狼人、預言家、女巫、丘比特
	for i := 0; i < 4; i++ {
		s.onTurnExpired(game, game.turnSeq)
	}

	game.mu.Lock()
	phase, current := game.Phase, game.current
	game.mu.Unlock()

	if phase != PhaseDay {
		t.Fatalf("expected day phase, got %s", phase)
	}
	if current != RoleVillager {
		t.Fatalf("expected villager turn, got %s", current)
	}
}

func TestSetCoupleValidation(t *testing.T) {
	s, _ := newTestGameService()
	game := s.CreateGame("g1", "r1", makePlayers(RoleCupid, RoleVillager, RoleVillager, RoleWerewolf), DefaultSettings())
	defer s.DeleteGame("g1")

	if err := s.SetCouple("missing", "p1", "p2"); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if err := s.SetCouple("g1", "p1", "p1"); err != ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction for self pairing, got %v", err)
	}
	if err := s.SetCouple("g1", "p1", "ghost"); err != ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction for unknown player, got %v", err)
	}

	game.mu.Lock()
	game.Players[2].Alive = false
	game.mu.Unlock()
	if err := s.SetCouple("g1", "p1", "p3"); err != ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction for dead member, got %v", err)
	}

	if err := s.SetCouple("g1", "p1", "p2"); err != nil {
		t.Fatalf("SetCouple failed: %v", err)
	}
	// 一局只能配對一次
	if err := s.SetCouple("g1", "p2", "p4"); err != ErrCoupleExists {
		t.Fatalf("expected ErrCoupleExists, got %v", err)
	}
}

func TestTerminalGameRefusesAllMutation(t *testing.T) {
	s, notifier := newTestGameService()
	game := setupNightGame(t, s, RoleWerewolf, RoleSeer, RoleVillager, RoleVillager)
	defer s.DeleteGame("g1")

	finishedRoom := ""
	s.OnGameOver(func(roomID string) { finishedRoom = roomID })

	game.mu.Lock()
	s.endGame(game, FactionVillagers)
	game.mu.Unlock()

	if finishedRoom != "r1" {
		t.Fatalf("game over callback not invoked, got %q", finishedRoom)
	}
	if game.Phase != PhaseGameOver {
		t.Fatalf("expected gameover phase, got %s", game.Phase)
	}

	turns := notifier.turnCount()
	if s.HandleRoleAction("g1", "p1", "kill") {
		t.Fatal("action on finished game should fail")
	}
	if err := s.RegisterVote("g1", "p3", "p1"); err != ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := s.SetCouple("g1", "p1", "p2"); err != ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := s.StartGame("g1"); err != ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}

	s.onTurnExpired(game, game.turnSeq)
	if notifier.turnCount() != turns {
		t.Fatal("timer expiry advanced a finished game")
	}
	if len(notifier.gameOvers) != 1 || notifier.gameOvers[0] != FactionVillagers {
		t.Fatalf("expected single GAME_OVER event, got %v", notifier.gameOvers)
	}
}
