package service

import (
	"math/rand"
	"sync"
	"time"
)

// Action 記錄一次玩家行動，依時間順序附加
type Action struct {
	PlayerID   string    `json:"player_id"`
	ActionType string    `json:"action_type"`
	TargetID   string    `json:"target_id,omitempty"`
	Content    string    `json:"content,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Game 代表一場進行中的對局
// 所有欄位只能由 GameService 在持有 mu 的情況下修改
type Game struct {
	ID             string
	RoomID         string
	Phase          Phase
	Players        []*Player // 與 Room 共享同一批玩家引用
	Votes          map[string]string
	Actions        []Action
	Couple         []string // 空或兩個玩家ID
	IsGameOver     bool
	Winner         Faction
	RemainingRoles []RoleName
	Settings       RoomSettings

	mu        sync.Mutex
	voteOrder []string // 投票者的首次投票順序，平票時依此裁定
	turnSeq   uint64   // 回合序號，保證每回合只推進一次
	current   RoleName // 正在行動的角色
	deadline  time.Time
	timer     *time.Timer
}

// GameSnapshot 是對局狀態的唯讀視圖，供查詢介面使用
type GameSnapshot struct {
	ID             string            `json:"id"`
	RoomID         string            `json:"room_id"`
	Phase          Phase             `json:"phase"`
	Players        []*Player         `json:"players"`
	Votes          map[string]string `json:"votes,omitempty"`
	Actions        []Action          `json:"actions"`
	Couple         []string          `json:"couple,omitempty"`
	IsGameOver     bool              `json:"is_game_over"`
	Winner         Faction           `json:"winner,omitempty"`
	RemainingRoles []RoleName        `json:"remaining_roles"`
	CurrentRole    RoleName          `json:"current_role,omitempty"`
	TurnDeadline   time.Time         `json:"turn_deadline,omitempty"`
}

// GameService 管理所有進行中的對局：角色分配、階段轉換、
// 回合計時、投票處理與勝負判定
type GameService struct {
	catalog  *RoleCatalog
	notifier Notifier

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.RWMutex
	games map[string]*Game

	onGameOver func(roomID string)
}

// NewGameService 建立對局管理服務
// 隨機來源由外部注入，測試時可以換成固定種子
func NewGameService(catalog *RoleCatalog, notifier Notifier, rng *rand.Rand) *GameService {
	return &GameService{
		catalog:  catalog,
		notifier: notifier,
		rng:      rng,
		games:    make(map[string]*Game),
	}
}

// OnGameOver 註冊遊戲結束時的回調，用於通知房間層更新狀態
func (s *GameService) OnGameOver(fn func(roomID string)) {
	s.onGameOver = fn
}

// CreateGame 建立一場新對局，初始為 lobby 階段
func (s *GameService) CreateGame(gameID, roomID string, players []*Player, settings RoomSettings) *Game {
	game := &Game{
		ID:       gameID,
		RoomID:   roomID,
		Phase:    PhaseLobby,
		Players:  players,
		Votes:    make(map[string]string),
		Actions:  []Action{},
		Couple:   []string{},
		Settings: settings,
	}

	s.mu.Lock()
	s.games[gameID] = game
	s.mu.Unlock()
	return game
}

// StartGame 分配角色並進入第一個夜晚，啟動回合排程
func (s *GameService) StartGame(gameID string) error {
	game := s.find(gameID)
	if game == nil {
		return ErrGameNotFound
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if game.IsGameOver {
		return ErrGameOver
	}
	if game.Phase != PhaseLobby {
		return ErrGameStarted
	}

	s.assignRoles(game)
	game.Phase = PhaseNight
	game.Votes = make(map[string]string)
	game.voteOrder = nil
	game.RemainingRoles = s.catalog.ForPhase(PhaseNight)

	s.notifier.PhaseChange(game.ID, game.Phase)
	s.scheduleNextTurn(game)
	return nil
}

// assignRoles 隨機分配角色：以完整角色表為基礎，
// 不足的名額以村民補齊，打亂後按座位順序分配
// 分配不受房間設置中角色數量範圍的影響（設置僅作為大廳資料）
func (s *GameService) assignRoles(game *Game) {
	roles := s.catalog.Names()
	for len(roles) < len(game.Players) {
		roles = append(roles, RoleVillager)
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	s.rngMu.Unlock()

	for i, p := range game.Players {
		p.Role = roles[i]
		p.Alive = true
	}
}

// scheduleNextTurn 取出隊列頭的角色並啟動該回合的計時器
// 隊列為空時切換到下一個階段
// 呼叫者必須持有 game.mu
func (s *GameService) scheduleNextTurn(game *Game) {
	if game.IsGameOver {
		return
	}
	if len(game.RemainingRoles) == 0 {
		s.nextPhase(game)
		return
	}

	role := game.RemainingRoles[0]
	game.RemainingRoles = game.RemainingRoles[1:]
	game.current = role

	// 每個新回合使前一個回合的序號失效，
	// 遲到的計時器回調或玩家行動都成為無效操作
	game.turnSeq++
	seq := game.turnSeq

	budget := s.catalog.ActionTime(role)
	game.deadline = time.Now().Add(budget)

	if game.timer != nil {
		game.timer.Stop()
	}
	game.timer = time.AfterFunc(budget, func() {
		s.onTurnExpired(game, seq)
	})

	s.notifier.RoleTurn(game.ID, role, game.deadline)
}

// onTurnExpired 處理回合計時到期
// 序號不符表示該回合已經由玩家行動推進過，直接忽略
func (s *GameService) onTurnExpired(game *Game, seq uint64) {
	game.mu.Lock()
	defer game.mu.Unlock()

	if game.IsGameOver || seq != game.turnSeq {
		return
	}
	s.scheduleNextTurn(game)
}

// nextPhase 在夜晚與白天之間切換，重新計算待行動的角色隊列
// 呼叫者必須持有 game.mu
func (s *GameService) nextPhase(game *Game) {
	if game.IsGameOver {
		return
	}

	if game.Phase == PhaseNight {
		game.Phase = PhaseDay
	} else {
		game.Phase = PhaseNight
	}

	game.RemainingRoles = s.catalog.ForPhase(game.Phase)
	s.notifier.PhaseChange(game.ID, game.Phase)
	s.scheduleNextTurn(game)
}

// HandleRoleAction 處理玩家在自己角色回合內的行動
// 玩家必須存活且其角色正是當前回合的角色，否則回傳 false
// 行動成功後立即推進到下一個回合
func (s *GameService) HandleRoleAction(gameID, playerID, action string) bool {
	game := s.find(gameID)
	if game == nil {
		return false
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if game.IsGameOver || game.current == "" {
		return false
	}

	player := findPlayer(game, playerID)
	if player == nil || !player.Alive {
		return false
	}
	if player.Role != game.current {
		return false
	}

	game.Actions = append(game.Actions, Action{
		PlayerID:   playerID,
		ActionType: "use_power",
		Content:    action,
		Timestamp:  time.Now(),
	})

	s.scheduleNextTurn(game)
	return true
}

// SetCouple 記錄丘比特指定的情侶配對
// 兩人都必須存活，且一局只能配對一次
func (s *GameService) SetCouple(gameID, player1ID, player2ID string) error {
	game := s.find(gameID)
	if game == nil {
		return ErrGameNotFound
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if game.IsGameOver {
		return ErrGameOver
	}
	if len(game.Couple) != 0 {
		return ErrCoupleExists
	}

	p1 := findPlayer(game, player1ID)
	p2 := findPlayer(game, player2ID)
	if p1 == nil || p2 == nil || !p1.Alive || !p2.Alive || player1ID == player2ID {
		return ErrInvalidAction
	}

	game.Couple = []string{player1ID, player2ID}
	return nil
}

// GetGame 回傳對局狀態的唯讀快照
func (s *GameService) GetGame(gameID string) (*GameSnapshot, error) {
	game := s.find(gameID)
	if game == nil {
		return nil, ErrGameNotFound
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	snapshot := &GameSnapshot{
		ID:             game.ID,
		RoomID:         game.RoomID,
		Phase:          game.Phase,
		Players:        append([]*Player{}, game.Players...),
		Actions:        append([]Action{}, game.Actions...),
		Couple:         append([]string{}, game.Couple...),
		IsGameOver:     game.IsGameOver,
		Winner:         game.Winner,
		RemainingRoles: append([]RoleName{}, game.RemainingRoles...),
		CurrentRole:    game.current,
		TurnDeadline:   game.deadline,
	}

	// 匿名投票模式下不暴露投票明細
	if game.Settings.VotingMode != "anonymous" {
		snapshot.Votes = make(map[string]string, len(game.Votes))
		for voter, target := range game.Votes {
			snapshot.Votes[voter] = target
		}
	}
	return snapshot, nil
}

// DeleteGame 移除對局並取消未觸發的計時器，房間拆除時呼叫
func (s *GameService) DeleteGame(gameID string) {
	s.mu.Lock()
	game, ok := s.games[gameID]
	delete(s.games, gameID)
	s.mu.Unlock()

	if ok {
		game.mu.Lock()
		// 標記為終局，已經在等鎖的計時器回調不會再重新排程
		game.IsGameOver = true
		if game.timer != nil {
			game.timer.Stop()
			game.timer = nil
		}
		game.mu.Unlock()
	}
}

// endGame 標記對局結束並永久停止排程
// 呼叫者必須持有 game.mu
func (s *GameService) endGame(game *Game, winner Faction) {
	game.IsGameOver = true
	game.Winner = winner
	game.Phase = PhaseGameOver
	game.current = ""

	if game.timer != nil {
		game.timer.Stop()
		game.timer = nil
	}

	s.notifier.GameOver(game.ID, winner)
	if s.onGameOver != nil {
		s.onGameOver(game.RoomID)
	}
}

func (s *GameService) find(gameID string) *Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[gameID]
}

func findPlayer(game *Game, playerID string) *Player {
	for _, p := range game.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// randomAlivePlayer 隨機選出一名存活玩家，可排除指定ID，沒有候選時回傳空字串
func (s *GameService) randomAlivePlayer(game *Game, excludeID string) string {
	candidates := make([]string, 0, len(game.Players))
	for _, p := range game.Players {
		if p.Alive && p.ID != excludeID {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return candidates[s.rng.Intn(len(candidates))]
}
