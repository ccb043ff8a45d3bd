package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/pkg/response"
)

// BodyLimit 요청 본문 크기 제한. 직원 명단 업로드(multipart)는 uploadMax, 나머지는 maxBytes.
// Content-Length 가 이미 넘치면 읽기 전에 거절한다.
func BodyLimit(maxBytes, uploadMax int64) gin.HandlerFunc {
	if uploadMax < maxBytes {
		uploadMax = maxBytes
	}
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadMax
		}
		if c.Request.ContentLength > limit {
			response.TooLarge(c)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.TooLarge(c)
				return
			}
		}
	}
}
