package courier

import (
	"strings"
	"unicode/utf8"
)

// Office 정규화된 사무실 식별자
type Office string

const (
	OfficePyeongchon Office = "평촌"
	OfficePangyo     Office = "판교"
	OfficeGwangjuHQ  Office = "광주본사"
	OfficeGwangjuRnD Office = "광주R&D"
	OfficeAdjustment Office = "관리자조정" // 포인트 수동 조정 레코드 전용
)

// officeAliases 사무실별 허용 표기 (검사 순서 = 동률 시 우선순위)
var officeAliases = []struct {
	office  Office
	aliases []string
}{
	{OfficePyeongchon, []string{"평촌", "제조혁신센터"}},
	{OfficePangyo, []string{"판교", "판교R&D", "판교rnd", "1센터", "2센터"}},
	{OfficeGwangjuHQ, []string{"광주본사", "광주", "본사"}},
	{OfficeGwangjuRnD, []string{"광주R&D", "광주rnd", "rnd"}},
}

// Offices 정규 사무실 목록 (표시 순서)
func Offices() []Office {
	out := make([]Office, 0, len(officeAliases))
	for _, e := range officeAliases {
		out = append(out, e.office)
	}
	return out
}

// Normalize 자유 텍스트 조각을 정규 사무실로 변환한다.
//
// 조각에 포함된 표기 중 가장 긴 것이 이긴다. 길이가 같으면 목록에서 먼저
// 나온 사무실이 이긴다. 따라서 "광주"는 광주본사, "판교R&D"는 판교,
// "광주R&D"는 광주R&D로 해석된다. 라틴 문자는 대소문자를 구분하지 않는다.
func Normalize(fragment string) (Office, bool) {
	text := strings.ToLower(strings.TrimSpace(fragment))
	if text == "" {
		return "", false
	}

	var (
		best    Office
		bestLen int
	)
	for _, e := range officeAliases {
		for _, alias := range e.aliases {
			if !strings.Contains(text, strings.ToLower(alias)) {
				continue
			}
			if n := utf8.RuneCountInString(alias); n > bestLen {
				best, bestLen = e.office, n
			}
		}
	}
	return best, bestLen > 0
}

// IsGwangju 광주 계열 사무실 여부
func (o Office) IsGwangju() bool {
	return o == OfficeGwangjuHQ || o == OfficeGwangjuRnD
}
