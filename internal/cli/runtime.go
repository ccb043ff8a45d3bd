package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/repository"
	"github.com/seunghochoi2018/soslab/internal/service"
	"github.com/seunghochoi2018/soslab/pkg/database"
	applogger "github.com/seunghochoi2018/soslab/pkg/logger"
	"github.com/seunghochoi2018/soslab/pkg/redis"
)

// cliCaller 관리 명령으로 만든 기록의 created_by
const cliCaller = "pointctl"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// runtime DB 가 필요한 명령이 공유하는 자원
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repo   *repository.Repository
	rdb    *redis.Client
}

// openRuntime --config 로 설정을 읽고 DB 에 연결한다
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("로그 초기화 실패: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, db: db, repo: repository.NewRepository(db)}
	if cfg.Redis.Enabled {
		if rdb, err := redis.NewClient(&cfg.Redis, logger); err == nil {
			rt.rdb = rdb
		} else {
			logger.Warn("Redis 연결 실패, 프로세스 내부 잠금 사용", zap.Error(err))
		}
	}
	return rt, nil
}

// coordination 서버와 같은 쓰기 잠금을 쓴다 (Redis 가 있을 때)
func (rt *runtime) coordination() service.Coordination {
	return service.NewCoordination(rt.rdb)
}

func (rt *runtime) Close() {
	if rt.rdb != nil {
		rt.rdb.Close()
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		sqlDB.Close()
	}
	rt.logger.Sync()
}
