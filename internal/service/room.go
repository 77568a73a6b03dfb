package service

import (
	"sync"
)

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusInGame   RoomStatus = "inGame"
	RoomStatusFinished RoomStatus = "finished"
)

// Player 代表房間內的一個玩家，遊戲開始後由 GameService 分配角色
// 遊戲進行中只有 GameService 可以修改 Role 與 Alive
type Player struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Role    RoleName `json:"role,omitempty"` // 遊戲開始前為空
	Alive   bool     `json:"alive"`
	IsReady bool     `json:"is_ready"`
	RoomID  string   `json:"room_id"`
}

// RoleBounds 表示某個角色在房間設置中的數量範圍
type RoleBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Current int `json:"current"`
}

// RoomSettings 包含房間可自訂的遊戲參數，只有房主可以修改
type RoomSettings struct {
	MinPlayers          int                     `json:"min_players"`
	MaxPlayers          int                     `json:"max_players"`
	RolesConfig         map[RoleName]RoleBounds `json:"roles_config"`
	DayDuration         int                     `json:"day_duration"`   // 秒
	NightDuration       int                     `json:"night_duration"` // 秒
	VotingMode          string                  `json:"voting_mode"`    // public / anonymous
	DiscussionEnabled   bool                    `json:"discussion_enabled"`
	WerewolfChatEnabled bool                    `json:"werewolf_chat_enabled"`
}

// RoomSettingsUpdate 是設置的局部更新，nil 欄位表示不變動
// RolesConfig 中出現的角色會覆蓋原本的範圍，未出現的保持不變
type RoomSettingsUpdate struct {
	MinPlayers          *int                    `json:"min_players"`
	MaxPlayers          *int                    `json:"max_players"`
	RolesConfig         map[RoleName]RoleBounds `json:"roles_config"`
	DayDuration         *int                    `json:"day_duration"`
	NightDuration       *int                    `json:"night_duration"`
	VotingMode          *string                 `json:"voting_mode"`
	DiscussionEnabled   *bool                   `json:"discussion_enabled"`
	WerewolfChatEnabled *bool                   `json:"werewolf_chat_enabled"`
}

// Room 代表一個遊戲房間（大廳）
type Room struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	GameType   string       `json:"game_type"`
	Players    []*Player    `json:"players"`
	MaxPlayers int          `json:"max_players"`
	Status     RoomStatus   `json:"status"`
	HostID     string       `json:"host_id"`
	Settings   RoomSettings `json:"settings"`
}

// RoomService 管理所有房間的生命週期，房間只存活在記憶體中
type RoomService struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomService() *RoomService {
	return &RoomService{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 建立一個新房間，房間ID重複時回傳錯誤
func (s *RoomService) CreateRoom(roomID, hostID string, maxPlayers int) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; ok {
		return nil, ErrRoomExists
	}

	room := &Room{
		ID:         roomID,
		Name:       "Room " + roomID,
		GameType:   "werewolf",
		Players:    []*Player{},
		MaxPlayers: maxPlayers,
		Status:     RoomStatusWaiting,
		HostID:     hostID,
		Settings:   DefaultSettings(),
	}
	s.rooms[roomID] = room
	return snapshotRoom(room), nil
}

// GetRoom 查詢房間，回傳唯讀快照
func (s *RoomService) GetRoom(roomID string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return snapshotRoom(room), nil
}

// ListRooms 回傳所有房間的快照
func (s *RoomService) ListRooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, snapshotRoom(room))
	}
	return list
}

// UpdateSettings 更新房間設置，只有房主可以操作
// 採逐欄位合併而非整體替換，並檢查每個角色 min <= current <= max
func (s *RoomService) UpdateSettings(roomID, requesterID string, update RoomSettingsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.HostID != requesterID {
		return ErrNotHost
	}

	merged := room.Settings
	merged.RolesConfig = make(map[RoleName]RoleBounds, len(room.Settings.RolesConfig))
	for name, bounds := range room.Settings.RolesConfig {
		merged.RolesConfig[name] = bounds
	}

	if update.MinPlayers != nil {
		merged.MinPlayers = *update.MinPlayers
	}
	if update.MaxPlayers != nil {
		merged.MaxPlayers = *update.MaxPlayers
	}
	for name, bounds := range update.RolesConfig {
		merged.RolesConfig[name] = bounds
	}
	if update.DayDuration != nil {
		merged.DayDuration = *update.DayDuration
	}
	if update.NightDuration != nil {
		merged.NightDuration = *update.NightDuration
	}
	if update.VotingMode != nil {
		merged.VotingMode = *update.VotingMode
	}
	if update.DiscussionEnabled != nil {
		merged.DiscussionEnabled = *update.DiscussionEnabled
	}
	if update.WerewolfChatEnabled != nil {
		merged.WerewolfChatEnabled = *update.WerewolfChatEnabled
	}

	if err := validateSettings(merged); err != nil {
		return err
	}

	room.Settings = merged
	return nil
}

// AddPlayer 將玩家加入房間，房間已滿或不存在時回傳 false
func (s *RoomService) AddPlayer(roomID string, player *Player) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || len(room.Players) >= room.MaxPlayers {
		return false
	}

	player.RoomID = roomID
	room.Players = append(room.Players, player)
	return true
}

// RemovePlayer 將玩家移出房間，玩家不在房間內時不做任何事
func (s *RoomService) RemovePlayer(roomID, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return
	}

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			return
		}
	}
}

// SetReady 設置玩家在房間內的準備狀態
func (s *RoomService) SetReady(roomID, playerID string, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	for _, p := range room.Players {
		if p.ID == playerID {
			p.IsReady = ready
			return nil
		}
	}
	return ErrInvalidAction
}

// DeleteRoom 刪除房間
func (s *RoomService) DeleteRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
}

// BeginGame 將房間轉為遊戲狀態，回傳名單與設置快照供 GameService 使用
// 只有房主可以開始，且人數必須達到設置的下限
func (s *RoomService) BeginGame(roomID, requesterID string) ([]*Player, RoomSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, RoomSettings{}, ErrRoomNotFound
	}
	if room.HostID != requesterID {
		return nil, RoomSettings{}, ErrNotHost
	}
	if room.Status != RoomStatusWaiting {
		return nil, RoomSettings{}, ErrRoomNotWaiting
	}
	if len(room.Players) < room.Settings.MinPlayers {
		return nil, RoomSettings{}, ErrNotEnoughPlayers
	}

	room.Status = RoomStatusInGame
	players := make([]*Player, len(room.Players))
	copy(players, room.Players)
	return players, room.Settings, nil
}

// MarkFinished 將房間標記為已結束，遊戲結束時由 GameService 回調
// 狀態只會向前推進，不會倒退
func (s *RoomService) MarkFinished(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if ok && room.Status == RoomStatusInGame {
		room.Status = RoomStatusFinished
	}
}

// DefaultSettings 回傳房間的預設設置
func DefaultSettings() RoomSettings {
	return RoomSettings{
		MinPlayers: 4,
		MaxPlayers: 12,
		RolesConfig: map[RoleName]RoleBounds{
			RoleWerewolf: {Min: 1, Max: 3, Current: 2},
			RoleSeer:     {Min: 0, Max: 1, Current: 1},
			RoleVillager: {Min: 2, Max: 8, Current: 5},
			RoleWitch:    {Min: 0, Max: 1, Current: 1},
			RoleHunter:   {Min: 0, Max: 1, Current: 0},
			RoleCupid:    {Min: 0, Max: 1, Current: 0},
		},
		DayDuration:         45,
		NightDuration:       30,
		VotingMode:          "public",
		DiscussionEnabled:   true,
		WerewolfChatEnabled: true,
	}
}

func validateSettings(settings RoomSettings) error {
	if settings.MinPlayers <= 0 || settings.MaxPlayers < settings.MinPlayers {
		return ErrInvalidSettings
	}
	for _, bounds := range settings.RolesConfig {
		if bounds.Min < 0 || bounds.Current < bounds.Min || bounds.Current > bounds.Max {
			return ErrInvalidSettings
		}
	}
	return nil
}

// snapshotRoom 複製房間結構與玩家列表，避免外部呼叫者繞過服務修改狀態
func snapshotRoom(room *Room) *Room {
	clone := *room
	clone.Players = make([]*Player, len(room.Players))
	copy(clone.Players, room.Players)
	return &clone
}
