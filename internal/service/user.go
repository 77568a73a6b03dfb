package service

import (
	"werewolf_web/internal/models"
	"werewolf_web/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(user *models.User) error {
	return s.userRepo.Create(user)
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

func (s *UserService) GetUserByRefreshToken(token string) (*models.User, error) {
	return s.userRepo.FindByRefreshToken(token)
}

// SaveRefreshToken 記錄用戶當前有效的 refresh token，換發時舊的即失效
func (s *UserService) SaveRefreshToken(user *models.User, token string) error {
	user.RefreshToken = token
	return s.userRepo.Update(user)
}

// ClearRefreshToken 清除 refresh token，讓用戶登出
func (s *UserService) ClearRefreshToken(user *models.User) error {
	user.RefreshToken = ""
	return s.userRepo.Update(user)
}
