package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders JSON API 와 엑셀/iCalendar 다운로드용 응답 헤더.
// 관리자 토큰이 실린 요청의 응답(직원 포인트, 운송 기록)은 캐시하지 않는다.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if c.GetHeader("Authorization") != "" {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
