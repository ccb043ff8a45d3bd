package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCmd_Command(t *testing.T) {
	out, err := run(t, "", "parse", "/싣고받고 제조혁신센터 광주R&D 센서 박스")
	if err != nil {
		t.Fatalf("parse 실패: %v", err)
	}
	for _, want := range []string{"요청", "평촌 → 광주R&D", "센서 박스", "요청자 5000 / 전달자 10000"} {
		if !strings.Contains(out, want) {
			t.Errorf("출력에 %q 가 없음:\n%s", want, out)
		}
	}
}

func TestParseCmd_Malformed(t *testing.T) {
	out, err := run(t, "", "parse", "/싣고받고 서울 부산")
	if err != nil {
		t.Fatalf("parse 실패: %v", err)
	}
	if !strings.Contains(out, "경로 해석 실패") {
		t.Errorf("해석 실패 안내가 없음:\n%s", out)
	}
}

func TestParseCmd_Complete(t *testing.T) {
	out, _ := run(t, "", "parse", "잘 받았습니다")
	if !strings.Contains(out, "수령 완료") {
		t.Errorf("완료 의도 기대:\n%s", out)
	}
}

func TestPointsCmd(t *testing.T) {
	out, err := run(t, "", "points", "판교R&D", "평촌")
	if err != nil {
		t.Fatalf("points 실패: %v", err)
	}
	if !strings.Contains(out, "판교 → 평촌: 요청자 5000 / 전달자 5000") {
		t.Errorf("출력 오류: %s", out)
	}

	if _, err := run(t, "", "points", "서울", "평촌"); err == nil {
		t.Error("알 수 없는 사무실은 오류")
	}
}

func TestHashPasswordCmd(t *testing.T) {
	out, err := run(t, "secret-pass\n", "hash-password", "--cost", "4")
	if err != nil {
		t.Fatalf("hash-password 실패: %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-pass")); err != nil {
		t.Errorf("해시가 비밀번호와 맞지 않음: %v", err)
	}

	if _, err := run(t, "", "hash-password", "short"); err == nil {
		t.Error("8자 미만은 거부")
	}
}

func TestSampleData(t *testing.T) {
	if len(sampleEmployees) != 12 || len(sampleRecords) != 7 {
		t.Fatalf("예시 데이터 수 오류: %d / %d", len(sampleEmployees), len(sampleRecords))
	}
	known := make(map[string]bool, len(sampleEmployees))
	for _, e := range sampleEmployees {
		known[e.EmployeeID] = true
	}
	for _, r := range sampleRecords {
		if !known[r.Applicant] || (r.Transporter != "" && !known[r.Transporter]) {
			t.Errorf("예시 기록의 직원이 예시 직원 목록에 없음: %+v", r)
		}
	}
}
