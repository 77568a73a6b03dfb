package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	accessSecret  = []byte("your_jwt_secret") // 預設值，啟動時由 SetSecrets 覆蓋
	refreshSecret = []byte("your_refresh_secret")
)

// SetSecrets 設置簽發 token 用的密鑰，應在服務啟動時從配置載入
func SetSecrets(access, refresh string) {
	accessSecret = []byte(access)
	refreshSecret = []byte(refresh)
}

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// GenerateToken 生成一個新的 access token，有效期 1 小時
func GenerateToken(userID uint) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(time.Hour)

	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(accessSecret)
}

// GenerateRefreshToken 生成一個新的 refresh token，不設過期時間
// 有效性由資料庫中存儲的值決定，登出或換發時即失效
func GenerateRefreshToken(userID uint) (string, error) {
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: time.Now().Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(refreshSecret)
}

// ParseToken 解析和驗證 access token
func ParseToken(token string) (*Claims, error) {
	return parseWith(token, accessSecret)
}

// ParseRefreshToken 解析和驗證 refresh token
func ParseRefreshToken(token string) (*Claims, error) {
	return parseWith(token, refreshSecret)
}

func parseWith(token string, secret []byte) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if tokenClaims != nil {
		if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
			return claims, nil
		}
	}

	return nil, err
}
