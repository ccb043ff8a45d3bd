package handler

import "github.com/seunghochoi2018/soslab/internal/service"

// Handler 모든 Handler 의 묶음
type Handler struct {
	Auth       *AuthHandler
	Record     *RecordHandler
	Dashboard  *DashboardHandler
	Employee   *EmployeeHandler
	Webhook    *WebhookHandler
	ChatImport *ChatImportHandler
	Export     *ExportHandler
}

// NewHandler Handler 묶음 생성
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Record:     NewRecordHandler(svc.Record),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Employee:   NewEmployeeHandler(svc.Employee),
		Webhook:    NewWebhookHandler(svc.Webhook),
		ChatImport: NewChatImportHandler(svc.ChatImport),
		Export:     NewExportHandler(svc.Export),
	}
}
