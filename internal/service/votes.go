package service

// RegisterVote 登記一名存活玩家對目標的投票，重複投票時覆蓋原選擇
// 當所有存活玩家都投完票時，立即同步結算本輪投票
func (s *GameService) RegisterVote(gameID, voterID, targetID string) error {
	game := s.find(gameID)
	if game == nil {
		return ErrGameNotFound
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if game.IsGameOver {
		return ErrGameOver
	}

	voter := findPlayer(game, voterID)
	if voter == nil || !voter.Alive {
		return ErrInvalidVote
	}

	if _, voted := game.Votes[voterID]; !voted {
		game.voteOrder = append(game.voteOrder, voterID)
	}
	game.Votes[voterID] = targetID

	aliveCount := 0
	for _, p := range game.Players {
		if p.Alive {
			aliveCount++
		}
	}
	if len(game.Votes) == aliveCount {
		s.resolveVotes(game)
	}
	return nil
}

// tallyVotes 依投票者的先後順序累計票數，回傳被選中的目標
// 只有「創下新高票數」的目標才會成為當選者，因此平票時
// 由先達到最高票的目標勝出，這是刻意固定的裁定順序
func tallyVotes(votes map[string]string, order []string) string {
	counts := make(map[string]int, len(votes))
	elected := ""
	maxVotes := 0

	for _, voter := range order {
		target, ok := votes[voter]
		if !ok {
			continue
		}
		counts[target]++
		if counts[target] > maxVotes {
			maxVotes = counts[target]
			elected = target
		}
	}
	return elected
}

// resolveVotes 結算一輪投票：淘汰最高票玩家、套用特殊角色效果、
// 清空票箱並強制進入夜晚，最後檢查勝負
// 沒有任何有效票時跳過淘汰，但階段照樣推進
// 呼叫者必須持有 game.mu
func (s *GameService) resolveVotes(game *Game) {
	electedID := tallyVotes(game.Votes, game.voteOrder)

	eliminated := ""
	if electedID != "" {
		if player := findPlayer(game, electedID); player != nil && player.Alive {
			player.Alive = false
			eliminated = player.ID
			s.applyEliminationEffects(game, player)
		}
	}

	game.Votes = make(map[string]string)
	game.voteOrder = nil

	s.notifier.VoteResult(game.ID, eliminated)

	if winner, over := CheckGameOver(game); over {
		s.endGame(game, winner)
		return
	}

	// 投票永遠發生在夜晚之前，結算後強制切換到夜晚並重排回合
	game.Phase = PhaseNight
	game.RemainingRoles = s.catalog.ForPhase(PhaseNight)
	s.notifier.PhaseChange(game.ID, game.Phase)
	s.scheduleNextTurn(game)
}

// applyEliminationEffects 套用淘汰引發的特殊角色效果，只對
// 最初被淘汰的玩家觸發一次，連鎖死亡不會再引發新的連鎖
func (s *GameService) applyEliminationEffects(game *Game, eliminated *Player) {
	// 獵人死前開出最後一槍，目標隨機
	if eliminated.Role == RoleHunter {
		if targetID := s.randomAlivePlayer(game, eliminated.ID); targetID != "" {
			if target := findPlayer(game, targetID); target != nil {
				target.Alive = false
			}
		}
	}

	// 情侶其中一人死亡，另一人殉情
	if len(game.Couple) == 2 && (game.Couple[0] == eliminated.ID || game.Couple[1] == eliminated.ID) {
		loverID := game.Couple[0]
		if loverID == eliminated.ID {
			loverID = game.Couple[1]
		}
		if lover := findPlayer(game, loverID); lover != nil {
			lover.Alive = false
		}
	}
}
