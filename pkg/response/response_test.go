package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("응답 해석 실패: %v", err)
	}
	return resp
}

func TestError_DefaultMessageAndRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "req-1")

	Busy(c, CodeWebhookBusy)

	if w.Code != http.StatusServiceUnavailable || w.Header().Get("Retry-After") == "" {
		t.Errorf("503 + Retry-After 기대, 실제 %d %v", w.Code, w.Header())
	}
	resp := decode(t, w)
	if resp.Code != 20005 || resp.Message != MessageFor(CodeWebhookBusy) || resp.RequestID != "req-1" {
		t.Errorf("오류 본문 불일치: %+v", resp)
	}
}

func TestError_ExplicitMessageWins(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	BadRequest(c, CodeMalformedRequest, "출발지/도착지를 확인하세요")

	resp := decode(t, w)
	if resp.Code != 20001 || resp.Message != "출발지/도착지를 확인하세요" || resp.RequestID != "" {
		t.Errorf("오류 본문 불일치: %+v", resp)
	}
}

func TestOKPage_TotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{45, 20, 3},
		{40, 20, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		OKPage(c, []int{}, tc.total, 1, tc.pageSize)

		var body struct {
			Data PageData `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("응답 해석 실패: %v", err)
		}
		if body.Data.Pagination.TotalPages != tc.want {
			t.Errorf("total=%d size=%d: 기대 %d, 실제 %d", tc.total, tc.pageSize, tc.want, body.Data.Pagination.TotalPages)
		}
	}
}
