package service

import "time"

// RoleName 定義遊戲角色名稱的類型
type RoleName string

const (
	RoleWerewolf RoleName = "Werewolf" // 狼人
	RoleVillager RoleName = "Villager" // 村民
	RoleSeer     RoleName = "Seer"     // 預言家
	RoleWitch    RoleName = "Witch"    // 女巫
	RoleHunter   RoleName = "Hunter"   // 獵人
	RoleCupid    RoleName = "Cupid"    // 丘比特
)

// Phase 定義遊戲階段的類型
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseNight    Phase = "night"
	PhaseDay      Phase = "day"
	PhaseGameOver Phase = "gameover"
)

// Faction 定義勝利陣營的類型
type Faction string

const (
	FactionVillagers  Faction = "villagers"
	FactionWerewolves Faction = "werewolves"
	FactionLovers     Faction = "lovers"
)

// defaultActionTime 每個角色回合的預設行動時間
const defaultActionTime = 20 * time.Second

// Role 定義每個角色的靜態資料：行動階段、行動時間與能力
type Role struct {
	Name       RoleName
	Phase      Phase // 角色在哪個階段行動
	ActionTime time.Duration
	Powers     []string
}

// RoleCatalog 是角色的靜態表，遊戲開始時用來分配角色，
// 階段切換時用來計算待行動的角色隊列
type RoleCatalog struct {
	roles  []Role
	byName map[RoleName]Role
}

// NewRoleCatalog 建立標準的角色表
func NewRoleCatalog() *RoleCatalog {
	roles := []Role{
		{Name: RoleWerewolf, Phase: PhaseNight, ActionTime: defaultActionTime, Powers: []string{"kill"}},
		{Name: RoleVillager, Phase: PhaseDay, ActionTime: defaultActionTime},
		{Name: RoleSeer, Phase: PhaseNight, ActionTime: defaultActionTime, Powers: []string{"see_role"}},
		{Name: RoleWitch, Phase: PhaseNight, ActionTime: defaultActionTime, Powers: []string{"save", "poison"}},
		{Name: RoleHunter, Phase: PhaseDay, ActionTime: defaultActionTime, Powers: []string{"shoot"}},
		{Name: RoleCupid, Phase: PhaseNight, ActionTime: defaultActionTime, Powers: []string{"pair"}},
	}

	byName := make(map[RoleName]Role, len(roles))
	for _, r := range roles {
		byName[r.Name] = r
	}
	return &RoleCatalog{roles: roles, byName: byName}
}

// Get 查詢單一角色的靜態資料
func (c *RoleCatalog) Get(name RoleName) (Role, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Names 回傳完整角色列表（固定順序），角色分配時以此為基礎
func (c *RoleCatalog) Names() []RoleName {
	names := make([]RoleName, len(c.roles))
	for i, r := range c.roles {
		names[i] = r.Name
	}
	return names
}

// ForPhase 回傳在指定階段需要行動的角色隊列
// 夜晚：狼人、預言家、女巫、丘比特；白天：村民（集體討論與投票）、獵人
func (c *RoleCatalog) ForPhase(phase Phase) []RoleName {
	if phase == PhaseNight {
		return []RoleName{RoleWerewolf, RoleSeer, RoleWitch, RoleCupid}
	}
	return []RoleName{RoleVillager, RoleHunter}
}

// ActionTime 查詢角色的行動時間，未知角色使用預設值
func (c *RoleCatalog) ActionTime(name RoleName) time.Duration {
	if r, ok := c.byName[name]; ok && r.ActionTime > 0 {
		return r.ActionTime
	}
	return defaultActionTime
}
