package service

// CheckGameOver 依遊戲狀態判定是否已經分出勝負
// 判定順序是固定的：村民 → 狼人 → 情侶
// 當多個條件同時成立時（例如狼人全滅且情侶雙雙存活），
// 先判定的村民陣營勝出，此順序為既定行為且有測試鎖定
func CheckGameOver(game *Game) (Faction, bool) {
	aliveWerewolves := 0
	aliveOthers := 0
	for _, p := range game.Players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleWerewolf {
			aliveWerewolves++
		} else {
			aliveOthers++
		}
	}

	aliveCouple := 0
	for _, id := range game.Couple {
		if p := findPlayer(game, id); p != nil && p.Alive {
			aliveCouple++
		}
	}

	if aliveWerewolves == 0 {
		return FactionVillagers, true
	}
	if aliveWerewolves >= aliveOthers {
		return FactionWerewolves, true
	}
	if aliveCouple == 2 && aliveWerewolves == 0 {
		return FactionLovers, true
	}
	return "", false
}
