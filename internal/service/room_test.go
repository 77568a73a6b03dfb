package service

import (
	"fmt"
	"testing"
)

func TestCreateRoomDuplicateID(t *testing.T) {
	s := NewRoomService()

	if _, err := s.CreateRoom("room1", "host", 8); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, err := s.CreateRoom("room1", "other", 8); err != ErrRoomExists {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestAddPlayerCapacity(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 3)

	for i := 0; i < 3; i++ {
		p := &Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("player%d", i)}
		if !s.AddPlayer("room1", p) {
			t.Fatalf("AddPlayer %d should succeed", i)
		}
	}

	// 超過上限的加入必須失敗，且人數不得超過 MaxPlayers
	if s.AddPlayer("room1", &Player{ID: "p3"}) {
		t.Fatal("AddPlayer beyond capacity should fail")
	}

	room, _ := s.GetRoom("room1")
	if len(room.Players) > room.MaxPlayers {
		t.Fatalf("players %d exceeds maxPlayers %d", len(room.Players), room.MaxPlayers)
	}

	if s.AddPlayer("missing", &Player{ID: "p9"}) {
		t.Fatal("AddPlayer on unknown room should fail")
	}
}

func TestRemovePlayerIdempotent(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 4)
	s.AddPlayer("room1", &Player{ID: "p1"})

	s.RemovePlayer("room1", "p1")
	s.RemovePlayer("room1", "p1") // 第二次移除不做任何事
	s.RemovePlayer("missing", "p1")

	room, _ := s.GetRoom("room1")
	if len(room.Players) != 0 {
		t.Fatalf("expected empty room, got %d players", len(room.Players))
	}
}

func TestUpdateSettingsHostOnly(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)

	day := 60
	if err := s.UpdateSettings("room1", "stranger", RoomSettingsUpdate{DayDuration: &day}); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := s.UpdateSettings("missing", "host", RoomSettingsUpdate{DayDuration: &day}); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestUpdateSettingsMergesFieldByField(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)

	day := 90
	mode := "anonymous"
	err := s.UpdateSettings("room1", "host", RoomSettingsUpdate{
		DayDuration: &day,
		VotingMode:  &mode,
		RolesConfig: map[RoleName]RoleBounds{
			RoleWerewolf: {Min: 1, Max: 4, Current: 3},
		},
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	room, _ := s.GetRoom("room1")
	settings := room.Settings
	if settings.DayDuration != 90 || settings.VotingMode != "anonymous" {
		t.Fatalf("updated fields not applied: %+v", settings)
	}
	// 未提供的欄位保持預設值
	if settings.NightDuration != 30 || !settings.DiscussionEnabled {
		t.Fatalf("untouched fields changed: %+v", settings)
	}
	if settings.RolesConfig[RoleWerewolf].Current != 3 {
		t.Fatalf("werewolf bounds not merged: %+v", settings.RolesConfig[RoleWerewolf])
	}
	if settings.RolesConfig[RoleSeer].Current != 1 {
		t.Fatalf("seer bounds should be untouched: %+v", settings.RolesConfig[RoleSeer])
	}
}

func TestUpdateSettingsValidatesRoleBounds(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)

	err := s.UpdateSettings("room1", "host", RoomSettingsUpdate{
		RolesConfig: map[RoleName]RoleBounds{
			RoleWerewolf: {Min: 1, Max: 2, Current: 5}, // current > max
		},
	})
	if err != ErrInvalidSettings {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}

	// 驗證失敗時設置不得被部分修改
	room, _ := s.GetRoom("room1")
	if room.Settings.RolesConfig[RoleWerewolf].Current != 2 {
		t.Fatalf("settings mutated on rejected update: %+v", room.Settings.RolesConfig[RoleWerewolf])
	}
}

func TestBeginGameRequirements(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)
	for i := 0; i < 4; i++ {
		s.AddPlayer("room1", &Player{ID: fmt.Sprintf("p%d", i)})
	}

	if _, _, err := s.BeginGame("room1", "stranger"); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if _, _, err := s.BeginGame("missing", "host"); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	players, settings, err := s.BeginGame("room1", "host")
	if err != nil {
		t.Fatalf("BeginGame failed: %v", err)
	}
	if len(players) != 4 || settings.MinPlayers != 4 {
		t.Fatalf("unexpected roster/settings: %d players", len(players))
	}

	room, _ := s.GetRoom("room1")
	if room.Status != RoomStatusInGame {
		t.Fatalf("expected inGame status, got %s", room.Status)
	}

	// 進行中的房間不能再次開始
	if _, _, err := s.BeginGame("room1", "host"); err != ErrRoomNotWaiting {
		t.Fatalf("expected ErrRoomNotWaiting, got %v", err)
	}
}

func TestBeginGameNotEnoughPlayers(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)
	s.AddPlayer("room1", &Player{ID: "p1"})

	if _, _, err := s.BeginGame("room1", "host"); err != ErrNotEnoughPlayers {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestRoomStatusNeverMovesBackward(t *testing.T) {
	s := NewRoomService()
	s.CreateRoom("room1", "host", 8)

	// waiting 狀態的房間不受 MarkFinished 影響
	s.MarkFinished("room1")
	room, _ := s.GetRoom("room1")
	if room.Status != RoomStatusWaiting {
		t.Fatalf("waiting room should not finish, got %s", room.Status)
	}

	for i := 0; i < 4; i++ {
		s.AddPlayer("room1", &Player{ID: fmt.Sprintf("p%d", i)})
	}
	s.BeginGame("room1", "host")
	s.MarkFinished("room1")

	room, _ = s.GetRoom("room1")
	if room.Status != RoomStatusFinished {
		t.Fatalf("expected finished, got %s", room.Status)
	}
}
