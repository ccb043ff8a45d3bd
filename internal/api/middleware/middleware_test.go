package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/pkg/jwt"
	"github.com/seunghochoi2018/soslab/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

type fakeLimiter struct{ calls int }

func (f *fakeLimiter) CheckRateLimit(_ context.Context, _ string, limit int, _ time.Duration) (bool, error) {
	f.calls++
	return f.calls <= limit, nil
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-tests-32b",
		AccessTokenTTL: time.Minute,
	})
}

func protectedRouter(mgr *jwt.Manager, bl TokenChecker) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, bl), RoleAuth("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("username"))
	})
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	mgr := newManager()
	token, err := mgr.GenerateAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("토큰 발급 실패: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, fakeBlacklist{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "admin" {
		t.Errorf("기대 200/admin, 실제 %d/%s", w.Code, w.Body.String())
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	w := httptest.NewRecorder()
	protectedRouter(newManager(), nil).ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("기대 401, 실제 %d", w.Code)
	}
}

func TestJWTAuth_BlacklistedToken(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("admin", "admin")
	claims, _ := mgr.ParseToken(token)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, fakeBlacklist{claims.ID: true}).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("로그아웃된 토큰은 401, 실제 %d", w.Code)
	}
}

func TestRoleAuth_Forbidden(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("viewer", "viewer")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, nil).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("기대 403, 실제 %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	r := gin.New()
	r.POST("/webhook", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/webhook", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("세 번째 요청은 429 기대: %v", codes)
	}
}

func TestRateLimit_NilLimiterPasses(t *testing.T) {
	r := gin.New()
	r.POST("/webhook", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/webhook", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("제한기가 없으면 통과, 실제 %d", w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(response.RequestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("전달된 요청 ID 를 유지해야 함: %s", w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("UUID 를 새로 만들어야 함: %q", w.Header().Get("X-Request-ID"))
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("허용된 출처 사전 요청 오류: %d %v", w.Code, w.Header())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("허용되지 않은 출처에는 CORS 헤더가 없어야 함")
	}
}

func TestRequestID_RejectsUnsafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc\nforged=1")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "abc\nforged=1" || len(got) != 36 {
		t.Errorf("안전하지 않은 요청 ID 는 새 UUID 로 바꿔야 함: %q", got)
	}
}

func bodyLimitRouter(maxBytes, uploadMax int64, reached *bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(BodyLimit(maxBytes, uploadMax))
	r.POST("/", func(c *gin.Context) {
		*reached = true
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestBodyLimit_RejectsLargeJSON(t *testing.T) {
	var reached bool
	r := bodyLimitRouter(10, 100, &reached)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"chat_text":"0123456789"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("기대 413, 실제 %d", w.Code)
	}
	if reached {
		t.Error("Content-Length 초과 요청은 처리기까지 가면 안 됨")
	}
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("응답 해석 실패: %v", err)
	}
	if body.Code != response.CodeBodyTooLarge || body.Message == "" {
		t.Errorf("오류 본문 불일치: %+v", body)
	}
	if body.RequestID == "" || body.RequestID != w.Header().Get("X-Request-ID") {
		t.Errorf("오류 응답에 요청 ID 가 있어야 함: %q / %q", body.RequestID, w.Header().Get("X-Request-ID"))
	}
}

func TestBodyLimit_UploadUsesLargerLimit(t *testing.T) {
	var reached bool
	r := bodyLimitRouter(10, 100, &reached)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 50)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !reached {
		t.Errorf("업로드 한도 안이면 통과, 실제 %d", w.Code)
	}
}

func TestBodyLimit_UnknownLengthStillCapped(t *testing.T) {
	var reached bool
	r := bodyLimitRouter(10, 100, &reached)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 50)))
	req.ContentLength = -1
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("길이를 모르는 본문도 한도를 넘으면 413, 실제 %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Content-Security-Policy") == "" {
		t.Errorf("기본 보안 헤더 누락: %v", w.Header())
	}
	if w.Header().Get("Cache-Control") != "" {
		t.Error("공개 조회 응답은 캐시 제한을 두지 않음")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	r.ServeHTTP(w, req)
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("관리자 응답은 no-store, 실제 %q", w.Header().Get("Cache-Control"))
	}
}
