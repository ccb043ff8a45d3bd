package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/api/handler"
	"github.com/seunghochoi2018/soslab/internal/api/router"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/repository"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/database"
	"github.com/seunghochoi2018/soslab/pkg/jwt"
	applogger "github.com/seunghochoi2018/soslab/pkg/logger"
	"github.com/seunghochoi2018/soslab/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "설정 파일 경로 (기본: ./config/config.yaml)")
	flag.Parse()

	// 1. 설정
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "로그 초기화 실패: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("서버 시작 중",
		zap.Int("port", cfg.Server.Port),
		zap.String("timezone", cfg.App.Timezone),
		zap.String("log_level", cfg.Log.Level),
	)
	if len(cfg.Auth.Admins) == 0 {
		logger.Warn("관리자 계정이 없어 관리 기능에 로그인할 수 없습니다 (auth.admins)")
	}

	// 3. 데이터베이스 + 마이그레이션
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("데이터베이스 연결 실패", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB 획득 실패", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("데이터베이스 마이그레이션 실패", zap.Error(err))
	}

	// 4. Redis (선택. 없으면 프로세스 내부 잠금/중복 제거로 단일 인스턴스 운영)
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 연결 실패, 단일 인스턴스 모드로 실행", zap.Error(err))
			rdb = nil
		}
	}
	coord := service.NewCoordination(rdb)

	// 5. 잔디 알림
	var sender notify.Sender = notify.NopSender{}
	if cfg.Jandi.WebhookURL != "" {
		sender = notify.NewJandiSender(cfg.Jandi.WebhookURL, cfg.Jandi.Timeout)
	} else {
		logger.Warn("jandi.webhook_url 이 비어 있어 알림을 보내지 않습니다")
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Jandi.QueueSize, cfg.Jandi.Timeout, logger)

	// 6. 의존성 조립: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, coord, dispatcher, logger)
	h := handler.NewHandler(svc)

	deps := router.Deps{
		JWT:       jwtMgr,
		Blacklist: coord.Blacklist,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		deps.Limiter = rdb
	}
	engine := router.Setup(cfg, h, deps, logger)

	// 7. HTTP 서버 (정상 종료)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 서버 시작", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 서버 오류", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("종료 신호 수신, 정상 종료 시작", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("서버 종료 오류", zap.Error(err))
	}

	// 남은 알림을 보낸 뒤 자원 정리
	dispatcher.Close()
	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("서버 종료 완료")
}
