package courier

import (
	"regexp"
	"strings"
)

// ExtractionForm 경로를 추출한 형식
type ExtractionForm string

const (
	FormNone    ExtractionForm = ""
	FormCommand ExtractionForm = "command" // /싣고받고 출발지 도착지 [물품]
	FormBare    ExtractionForm = "bare"    // 출발지 도착지 [물품]
	FormPattern ExtractionForm = "pattern" // 평촌→판교, 평촌에서 판교로 ...
)

// TaggedName 메시지에서 태그된 사람 (@Paul(윤희선))
type TaggedName struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

// ParsedIntent 메시지 한 건의 해석 결과
type ParsedIntent struct {
	Type        IntentType     `json:"type"`
	From        Office         `json:"from,omitempty"`
	To          Office         `json:"to,omitempty"`
	Item        string         `json:"item,omitempty"`
	Form        ExtractionForm `json:"form,omitempty"`
	TaggedNames []TaggedName   `json:"tagged_names,omitempty"`
}

// HasRoute 출발지/도착지가 모두 해석되었는지
func (p ParsedIntent) HasRoute() bool {
	return p.From != "" && p.To != ""
}

// Malformed 요청으로 분류되었지만 경로를 해석하지 못한 경우
func (p ParsedIntent) Malformed() bool {
	return p.Type == IntentRequest && !p.HasRoute()
}

// ParserOptions 파서 설정. 빈 필드는 기본값을 사용한다.
type ParserOptions struct {
	Command      string
	Rules        []IntentRule
	ItemKeywords []string
}

// Parser 채팅 메시지 해석기. 상태가 없으므로 동시에 사용해도 안전하다.
type Parser struct {
	command      string
	rules        []IntentRule
	itemKeywords []string
}

var (
	routePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(평촌|판교|광주)\s*[→>-]+\s*(평촌|판교|광주)`),
		regexp.MustCompile(`(평촌|판교|광주)\s*--+>\s*(평촌|판교|광주)`),
		regexp.MustCompile(`(평촌|판교|광주)\s*에서\s*(평촌|판교|광주)\s*로`),
		regexp.MustCompile(`(?i)(평촌|판교|광주).*to.*(평촌|판교|광주)`),
	}
	taggedNamePattern = regexp.MustCompile(`@?([A-Za-z]+)\(([가-힣]+)\)`)
	identityPattern   = regexp.MustCompile(`^@?([A-Za-z]+)\s*\([가-힣]+\)$`)
)

// NewParser 파서 생성
func NewParser(opts ParserOptions) *Parser {
	p := &Parser{
		command:      strings.TrimSpace(opts.Command),
		rules:        opts.Rules,
		itemKeywords: opts.ItemKeywords,
	}
	if p.command == "" {
		p.command = DefaultCommand
	}
	if len(p.rules) == 0 {
		p.rules = DefaultIntentRules()
	}
	if len(p.itemKeywords) == 0 {
		p.itemKeywords = DefaultItemKeywords()
	}
	return p
}

// Command 요청 명령어
func (p *Parser) Command() string { return p.command }

// Parse 메시지를 해석한다.
//
// 경로 추출은 명령어 형식 → 두 토큰 형식 → 문장 패턴 순으로 시도하고
// 처음 성공한 것을 쓴다. 출발지와 도착지가 같으면 해석 실패로 본다.
func (p *Parser) Parse(message string) ParsedIntent {
	text := strings.TrimSpace(message)
	tokens := strings.Fields(text)
	isCommand := strings.HasPrefix(text, p.command)

	result := ParsedIntent{
		Type:        IntentUnrecognized,
		TaggedNames: TaggedNames(text),
	}

	switch {
	case isCommand && len(tokens) >= 3:
		if from, to, ok := resolveRoute(tokens[1], tokens[2], true); ok {
			result.From, result.To, result.Form = from, to, FormCommand
			result.Item = DefaultItem
			if len(tokens) > 3 {
				result.Item = strings.Join(tokens[3:], " ")
			}
		}
	case !isCommand && len(tokens) >= 2:
		if from, to, ok := resolveRoute(tokens[0], tokens[1], false); ok {
			result.From, result.To, result.Form = from, to, FormBare
			result.Item = p.scanItem(text)
			if result.Item == "" && len(tokens) == 3 {
				result.Item = tokens[2]
			}
		}
	}

	if !result.HasRoute() {
		for _, re := range routePatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if from, to, ok := resolveRoute(m[1], m[2], false); ok {
				result.From, result.To, result.Form = from, to, FormPattern
				result.Item = p.scanItem(text)
				break
			}
		}
	}
	if result.HasRoute() && result.Item == "" {
		result.Item = DefaultItem
	}

	switch {
	case result.HasRoute():
		result.Type = IntentRequest
	case isCommand:
		// 명령어를 썼지만 사무실을 해석하지 못함 → 안내 대상
		result.Type = IntentRequest
	default:
		for _, rule := range p.rules {
			if rule.Matches(text) {
				result.Type = rule.Intent
				break
			}
		}
	}

	return result
}

func (p *Parser) scanItem(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range p.itemKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}

// resolveRoute 두 조각을 사무실로 해석한다. allowSame 이 false 면 같은 사무실 쌍은 경로로 보지 않는다
// ("광주 본사에서 잘 받았습니다" 같은 문장).
func resolveRoute(fromText, toText string, allowSame bool) (Office, Office, bool) {
	from, ok := Normalize(fromText)
	if !ok {
		return "", "", false
	}
	to, ok := Normalize(toText)
	if !ok || (from == to && !allowSame) {
		return "", "", false
	}
	return from, to, true
}

// TaggedNames 메시지에 등장한 태그 이름 (등장 순서, 중복 유지)
func TaggedNames(message string) []TaggedName {
	matches := taggedNamePattern.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]TaggedName, 0, len(matches))
	for _, m := range matches {
		names = append(names, TaggedName{Handle: m[1], DisplayName: m[2]})
	}
	return names
}

// ResolveIdentity "Paul(윤희선)" 형태의 발신자 표기를 직원 ID("Paul")로 바꾼다.
// 형식이 맞지 않으면 공백만 정리해 그대로 돌려준다.
func ResolveIdentity(sender string) string {
	s := strings.TrimSpace(sender)
	if m := identityPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
