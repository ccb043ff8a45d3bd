package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("아이디 또는 비밀번호가 올바르지 않습니다")
	ErrAdminNotFound      = errors.New("관리자 계정이 없습니다")
)

// RoleAdmin 관리자 역할
const RoleAdmin = "admin"

// AuthService 관리자 인증
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, username string) (*dto.AdminResponse, error)
}

type authService struct {
	cfg       *config.Config
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService AuthService 생성. 계정은 설정의 auth.admins 정적 목록이다.
func NewAuthService(
	cfg *config.Config,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) findAdmin(username string) (*config.AdminAccount, bool) {
	for i := range s.cfg.Auth.Admins {
		if s.cfg.Auth.Admins[i].Username == username {
			return &s.cfg.Auth.Admins[i], true
		}
	}
	return nil, false
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 계정 조회
	admin, ok := s.findAdmin(req.Username)
	if !ok {
		s.logger.Info("로그인 실패: 없는 계정", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 2. 비밀번호 검증 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("로그인 실패: 비밀번호 불일치", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. 토큰 발급
	token, err := s.jwtMgr.GenerateAccessToken(admin.Username, RoleAdmin)
	if err != nil {
		s.logger.Error("AccessToken 생성 실패", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Admin:       toAdminResponse(admin),
	}, nil
}

// Logout 토큰을 남은 유효기간 동안 블랙리스트에 올린다.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("토큰 블랙리스트 등록 실패", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(_ context.Context, username string) (*dto.AdminResponse, error) {
	admin, ok := s.findAdmin(username)
	if !ok {
		return nil, ErrAdminNotFound
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

func toAdminResponse(a *config.AdminAccount) dto.AdminResponse {
	name := a.Name
	if name == "" {
		name = a.Username
	}
	return dto.AdminResponse{Username: a.Username, Name: name, Role: RoleAdmin}
}
