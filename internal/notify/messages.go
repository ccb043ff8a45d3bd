package notify

import (
	"fmt"
	"strings"

	"github.com/seunghochoi2018/soslab/internal/model"
)

// MalformedRequest 사무실 명칭 안내
func MalformedRequest(command string) Message {
	var b strings.Builder
	b.WriteString("**정확한 사무실 명칭을 사용해주세요!**\n\n")
	b.WriteString("📍 **사용 가능한 사무실:**\n")
	b.WriteString("• **평촌** (제조혁신센터)\n• **판교** (R&D센터)\n• **광주본사**\n• **광주R&D**\n\n")
	b.WriteString("📝 **예시:**\n")
	fmt.Fprintf(&b, "`%s 평촌 판교 센서`\n`%s 광주본사 광주R&D 노트북`", command, command)
	return Message{Title: "🏢 사무실 명칭을 정확히 입력해주세요", Body: b.String(), Color: ColorError}
}

// RequestCreated 요청 접수
func RequestCreated(r *model.TransportRequest) Message {
	return Message{
		Title: "✅ 접수완료",
		Body: fmt.Sprintf("📋 **#%d번** %s→%s %s | %sP",
			r.ID, r.FromLocation, r.ToLocation, r.Item, formatPoints(r.ApplicantAmount)),
		Color: ColorSuccess,
	}
}

// TransporterAssigned 전달자 배정
func TransporterAssigned(r *model.TransportRequest) Message {
	return Message{
		Title: "✅ 접수완료!",
		Body: fmt.Sprintf("🚛 전달자: %s\n📦 요청: %s → %s\n물품: %s\n\n배송을 시작해주세요!",
			r.Transporter, r.FromLocation, r.ToLocation, r.Item),
		Color: ColorSuccess,
	}
}

// RequestCompleted 배송 완료
func RequestCompleted(r *model.TransportRequest) Message {
	return Message{
		Title: "🎉 배송완료!",
		Body: fmt.Sprintf("✅ 운송이 완료되었습니다!\n\n요청자: %s (+%sP)\n전달자: %s (+%sP)\n경로: %s → %s\n물품: %s\n\n포인트 적립 완료! 감사합니다! 🙏",
			r.Applicant, formatPoints(r.ApplicantAmount),
			r.Transporter, formatPoints(r.TransporterAmount),
			r.FromLocation, r.ToLocation, r.Item),
		Color: ColorSuccess,
	}
}

// UsageHint 사용법 안내
func UsageHint(command string) Message {
	return Message{
		Title: "❓ 사용법",
		Body: fmt.Sprintf("**간단한 키워드로 사용하세요!**\n\n🚚 **운송 요청**: `%s 평촌 판교 센서`\n✅ **전달 수락**: `접수` (댓글로)\n✅ **완료 확인**: `완료`",
			command),
		Color: ColorHint,
	}
}

// PointAdjustment 관리자 포인트 조정
func PointAdjustment(employee string, adjustment int64, reason string, newTotal int64) Message {
	emoji, action, color := "📈", "지급", ColorSuccess
	if adjustment <= 0 {
		emoji, action, color = "📉", "차감", ColorError
	}
	sign := "+"
	if adjustment < 0 {
		sign = "-"
	}
	abs := adjustment
	if abs < 0 {
		abs = -abs
	}
	return Message{
		Title: "포인트 조정",
		Body: fmt.Sprintf("%s 포인트 %s\n대상자: %s\n%s 포인트: %s%sP\n현재 총 포인트: %sP\n사유: %s",
			emoji, action, employee, action, sign, formatPoints(abs), formatPoints(newTotal), reason),
		Color: color,
	}
}

// formatPoints 천 단위 구분 (12345 → 12,345)
func formatPoints(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
