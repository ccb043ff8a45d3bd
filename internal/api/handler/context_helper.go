package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/pkg/response"
)

// 인증 미들웨어가 gin 컨텍스트에 넣는 키
const (
	CtxUsername = "username"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUsername gin 컨텍스트에서 관리자 아이디를 꺼낸다.
// JWT 미들웨어가 값을 넣지 않았으면 401 을 쓰고 false 를 돌려준다.
// 호출자는 ok=false 이면 바로 return 해야 한다.
func MustGetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxUsername)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "인증이 필요합니다")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "인증이 필요합니다")
		return "", false
	}
	return s, true
}

// tokenIdentity 로그아웃할 토큰의 jti 와 만료 시각
func tokenIdentity(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
