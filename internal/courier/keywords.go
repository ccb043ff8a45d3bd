package courier

import "strings"

// IntentType 메시지 의도
type IntentType string

const (
	IntentRequest      IntentType = "request"
	IntentAccept       IntentType = "accept"
	IntentComplete     IntentType = "complete"
	IntentUnrecognized IntentType = "unrecognized"
)

// DefaultCommand 운송 요청 명령어
const DefaultCommand = "/싣고받고"

// DefaultItem 물품명을 추출하지 못했을 때의 기본값
const DefaultItem = "물품"

// IntentRule 키워드 → 의도 매핑. 규칙은 나열된 순서대로 평가된다.
type IntentRule struct {
	Intent   IntentType `mapstructure:"intent"   json:"intent"`
	Keywords []string   `mapstructure:"keywords" json:"keywords"`
}

// Matches 메시지가 규칙의 키워드 중 하나를 포함하는지
func (r IntentRule) Matches(message string) bool {
	return ContainsAny(message, r.Keywords)
}

// DefaultIntentRules 기본 키워드 규칙
func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{Intent: IntentRequest, Keywords: []string{"이송 부탁", "전달 부탁", "전달 요청", "이동하시는 분", "운송 요청"}},
		{Intent: IntentAccept, Keywords: []string{"접수", "신청"}},
		{Intent: IntentComplete, Keywords: []string{"받았습니다", "수령했습니다", "잘 받았습니다", "완료"}},
	}
}

// DefaultItemKeywords 메시지에서 찾아내는 물품 키워드 (먼저 나온 것이 우선)
func DefaultItemKeywords() []string {
	return []string{"센서", "박스", "노트북", "ML-U", "SL-U", "보드", "서버", "하드웨어"}
}

// DefaultHintKeywords 인식하지 못한 메시지 중 사용법 안내를 보낼 만한 키워드
func DefaultHintKeywords() []string {
	return []string{"운송", "이송", "전달", "배송"}
}

// ContainsAny 메시지가 키워드 중 하나라도 포함하는지
func ContainsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(message, kw) {
			return true
		}
	}
	return false
}
