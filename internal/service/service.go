package service

import (
	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/repository"
	"github.com/seunghochoi2018/soslab/pkg/jwt"
)

// Service 모든 Service 의 집합
type Service struct {
	Auth       AuthService
	Webhook    WebhookService
	Record     RecordService
	Dashboard  DashboardService
	Employee   EmployeeService
	ChatImport ChatImportService
	Export     ExportService
}

// NewService Service 집합 생성
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	coord Coordination,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, jwtMgr, coord.Blacklist, logger),
		Webhook:    NewWebhookService(cfg, repo, coord, notifier, logger),
		Record:     NewRecordService(cfg, repo, coord.Locker, logger),
		Dashboard:  NewDashboardService(repo, logger),
		Employee:   NewEmployeeService(cfg, repo, coord.Locker, notifier, logger),
		ChatImport: NewChatImportService(cfg, repo, coord.Locker, logger),
		Export:     NewExportService(cfg, repo, logger),
	}
}
