package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type requestWindow struct {
	count     int
	timestamp time.Time
}

// RateLimit 限制單一 IP 在時間窗口內的請求次數
// 採用固定窗口計數，窗口過期後重新計數
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	limits := make(map[string]*requestWindow)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		entry, ok := limits[ip]
		if !ok || now.Sub(entry.timestamp) >= window {
			limits[ip] = &requestWindow{count: 1, timestamp: now}
			mu.Unlock()
			c.Next()
			return
		}

		entry.count++
		exceeded := entry.count > maxRequests
		mu.Unlock()

		if exceeded {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "請求過於頻繁，請稍後再試"})
			c.Abort()
			return
		}

		c.Next()
	}
}
