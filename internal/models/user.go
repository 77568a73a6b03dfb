package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的用戶
// 只有用戶需要持久化，房間和對局都存活在記憶體中
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password     string `gorm:"not null" json:"-"`                    // 密碼，json 序列化時會被忽略
	RefreshToken string `gorm:"type:text" json:"-"`                   // 當前有效的 refresh token，登出時清空
}
