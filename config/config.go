package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 애플리케이션 전역 설정
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Jandi    JandiConfig    `mapstructure:"jandi"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Parser   ParserConfig   `mapstructure:"parser"`
}

// AppConfig 업무 공통 설정
type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 설정된 시간대. 검증을 통과한 뒤에만 호출한다.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	BaseURL     string     `mapstructure:"base_url"`
	BodyLimit   int64      `mapstructure:"body_limit"`   // bytes
	UploadLimit int64      `mapstructure:"upload_limit"` // multipart 업로드, bytes
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig 교차 출처 설정
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 설정
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 분
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 분
}

// DSN PostgreSQL 접속 문자열
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 설정. Enabled=false 이면 잠금/중복 제거/블랙리스트를 프로세스 내부로 대체한다.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 관리자 인증 설정
type AuthConfig struct {
	JWTSecret      string         `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration  `mapstructure:"access_token_ttl"`
	Admins         []AdminAccount `mapstructure:"admins"`
}

// AdminAccount 정적 관리자 계정. 비밀번호는 bcrypt 해시로만 보관한다.
type AdminAccount struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Name         string `mapstructure:"name"`
}

// LogConfig 로그 설정. File 이 있으면 lumberjack 으로 회전한다.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// JandiConfig 잔디 Incoming Webhook 알림 설정
type JandiConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	QueueSize  int           `mapstructure:"queue_size"`
}

// WebhookConfig 잔디 Outgoing Webhook 수신 설정
type WebhookConfig struct {
	Token      string        `mapstructure:"token"` // 비어 있으면 토큰 검사를 하지 않는다
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
	DedupeTTL  time.Duration `mapstructure:"dedupe_ttl"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

// WriterLockTTL 쓰기 잠금 유지/대기 시간 (미설정 시 10초)
func (c *WebhookConfig) WriterLockTTL() time.Duration {
	if c.LockTTL <= 0 {
		return 10 * time.Second
	}
	return c.LockTTL
}

// DedupeWindow 중복 제거 유지 시간 (미설정 시 24시간)
func (c *WebhookConfig) DedupeWindow() time.Duration {
	if c.DedupeTTL <= 0 {
		return 24 * time.Hour
	}
	return c.DedupeTTL
}

// ParserConfig 메시지 해석 설정. 비어 있는 항목은 기본 키워드를 쓴다.
type ParserConfig struct {
	Command      string             `mapstructure:"command"`
	Rules        []IntentRuleConfig `mapstructure:"rules"`
	ItemKeywords []string           `mapstructure:"item_keywords"`
	HintKeywords []string           `mapstructure:"hint_keywords"`
}

// IntentRuleConfig 키워드 → 의도 (request | accept | complete)
type IntentRuleConfig struct {
	Intent   string   `mapstructure:"intent"`
	Keywords []string `mapstructure:"keywords"`
}

// Load 설정 파일과 환경 변수에서 설정을 읽는다.
// 우선순위: 환경 변수 > 설정 파일 > 기본값
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 설정 파일 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 환경 변수 ──
	v.SetEnvPrefix("POINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정 해석 실패: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.timezone", "Asia/Seoul")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 10<<20)
	v.SetDefault("server.upload_limit", 20<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "courier_point")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Seoul")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "8h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("jandi.webhook_url", "")
	v.SetDefault("jandi.timeout", "5s")
	v.SetDefault("jandi.queue_size", 64)

	v.SetDefault("webhook.token", "")
	v.SetDefault("webhook.rate_limit", 60)
	v.SetDefault("webhook.rate_window", "1m")
	v.SetDefault("webhook.dedupe_ttl", "24h")
	v.SetDefault("webhook.lock_ttl", "10s")

	v.SetDefault("parser.command", "/싣고받고")
}

// Validate 핵심 설정 검증
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("설정 검증 실패: auth.jwt_secret 이 비어 있습니다")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("설정 검증 실패: auth.jwt_secret 은 16자 이상이어야 합니다")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("설정 검증 실패: server.port 는 1-65535 범위여야 합니다")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("설정 검증 실패: app.timezone %q: %w", c.App.Timezone, err)
	}
	seen := make(map[string]bool, len(c.Auth.Admins))
	for i, a := range c.Auth.Admins {
		if a.Username == "" || a.PasswordHash == "" {
			return fmt.Errorf("설정 검증 실패: auth.admins[%d] 에 username/password_hash 가 필요합니다", i)
		}
		if seen[a.Username] {
			return fmt.Errorf("설정 검증 실패: auth.admins 에 중복된 username %q", a.Username)
		}
		seen[a.Username] = true
	}
	for i, r := range c.Parser.Rules {
		switch r.Intent {
		case "request", "accept", "complete":
		default:
			return fmt.Errorf("설정 검증 실패: parser.rules[%d].intent %q 는 request/accept/complete 중 하나여야 합니다", i, r.Intent)
		}
	}
	return nil
}
