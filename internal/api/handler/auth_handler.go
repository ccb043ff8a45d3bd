package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// AuthHandler 관리자 인증 HTTP 처리기
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler AuthHandler 생성
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 관리자 로그인
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "입력값이 올바르지 않습니다")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, response.CodeInvalidCredentials, "")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 로그아웃. 현재 토큰을 만료 시각까지 블랙리스트에 올린다.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenIdentity(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me 현재 관리자 정보
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	admin, err := h.authSvc.Me(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			response.NotFound(c, response.CodeAdminNotFound, "관리자 계정이 없습니다")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, admin)
}
