package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

// DashboardHandler 대시보드 HTTP 처리기
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler DashboardHandler 생성
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Get 순위/통계/최근 기록
// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	resp, err := h.dashboardSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
