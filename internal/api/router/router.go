package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/api/handler"
	"github.com/seunghochoi2018/soslab/internal/api/middleware"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/jwt"
)

// Deps 라우터가 쓰는 공유 자원
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.TokenChecker
	Limiter   middleware.RateLimiter // nil 이면 요청 수 제한 없음
	Ready     func() error           // /health 에서 호출. nil 이면 항상 ok
}

// Setup Gin 엔진을 만들고 라우트를 등록한다
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 전역 미들웨어 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.BodyLimit > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, cfg.Server.UploadLimit))
	}

	// ── 상태 확인 ──
	health := func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(503, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	}
	r.GET("/health", health)

	admin := middleware.RoleAuth(service.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", health)

		// 인증 없이 접근
		v1.POST("/auth/login", middleware.RateLimit(deps.Limiter, 10, cfg.Webhook.RateWindow), h.Auth.Login)
		v1.POST("/webhook/jandi",
			middleware.RateLimit(deps.Limiter, cfg.Webhook.RateLimit, cfg.Webhook.RateWindow),
			h.Webhook.Receive)

		v1.GET("/records", h.Record.List)
		v1.GET("/records/:id", h.Record.Get)
		v1.GET("/stats", h.Record.Stats)
		v1.GET("/dashboard", h.Dashboard.Get)
		v1.GET("/employees", h.Employee.List)
		v1.GET("/employees/template", h.Employee.Template)
		v1.GET("/employees/:id", h.Employee.Get)
		v1.GET("/export/deadlines.ics", h.Export.DeadlineCalendar)

		// 관리자 전용
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist), admin)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			records := authorized.Group("/records")
			{
				records.POST("", h.Record.Create)
				records.PUT("/:id", h.Record.Update)
				records.DELETE("/:id", h.Record.Delete)
			}

			employees := authorized.Group("/employees")
			{
				employees.POST("", h.Employee.Create)
				employees.PUT("/:id", h.Employee.Update)
				employees.DELETE("/:id", h.Employee.Delete)
				employees.POST("/import", h.Employee.Import)
				employees.POST("/:id/points", h.Employee.AdjustPoints)
			}

			authorized.POST("/chat-import", h.ChatImport.Import)
			authorized.GET("/export/records", h.Export.ExportRecords)
		}
	}

	return r
}
