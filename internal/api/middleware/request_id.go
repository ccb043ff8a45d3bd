package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seunghochoi2018/soslab/pkg/response"
)

// 로그에 그대로 남으므로 안전한 문자만 받는다
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID X-Request-ID 를 이어받거나 새 UUID 를 만든다.
// 값은 접근 로그와 오류 응답의 request_id 로 함께 쓰인다.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if !validRequestID.MatchString(rid) {
			rid = uuid.NewString()
		}

		c.Set(response.RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
