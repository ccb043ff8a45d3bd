package response

// 업무 오류 코드. 앞 두 자리가 영역을 나타낸다.
const (
	CodeOK = 0

	// 10xxx 공통
	CodeInvalidParam = 10001
	CodeUnauthorized = 10002
	CodeForbidden    = 10003
	CodeRateLimited  = 10004
	CodeBodyTooLarge = 10005

	// 11xxx 인증
	CodeInvalidCredentials = 11001
	CodeAdminNotFound      = 11002

	// 12xxx 운송 기록
	CodeRecordNotFound     = 12001
	CodeInvalidStatus      = 12002
	CodeStatusRegression   = 12003
	CodeAmountImmutable    = 12004
	CodeUnknownLocation    = 12005
	CodePendingTransporter = 12006
	CodeAccumulateDate     = 12007
	CodeInvalidDate        = 12008
	CodeRecordConflict     = 12009
	CodeRecordLockTimeout  = 12010

	// 13xxx 직원
	CodeEmployeeNotFound    = 13001
	CodeEmployeeExists      = 13002
	CodeZeroAdjustment      = 13003
	CodeImportInvalid       = 13004
	CodeEmployeeConflict    = 13005
	CodeEmployeeLockTimeout = 13006

	// 14xxx 대화 가져오기
	CodeEmptyChatText  = 14001
	CodeChatImportBusy = 14002

	// 16xxx 내보내기
	CodeExportEmpty   = 16001
	CodeExportInvalid = 16002

	// 20xxx 채팅 웹훅
	CodeMalformedRequest    = 20001
	CodeNoPendingRequest    = 20002
	CodeNoInProgressRequest = 20003
	CodeUnrecognizedMessage = 20004
	CodeWebhookBusy         = 20005

	CodeInternal = 50000
)

// 기본 안내 문구. 오류 원문을 그대로 보여 주지 않는 코드에만 쓴다.
var defaultMessages = map[int]string{
	CodeUnauthorized:        "인증이 필요합니다",
	CodeForbidden:           "권한이 없습니다",
	CodeRateLimited:         "요청이 너무 많습니다. 잠시 후 다시 시도하세요",
	CodeBodyTooLarge:        "요청 본문이 너무 큽니다",
	CodeInvalidCredentials:  "아이디 또는 비밀번호가 올바르지 않습니다",
	CodeAdminNotFound:       "관리자 계정이 없습니다",
	CodeRecordLockTimeout:   "다른 작업이 처리 중입니다. 잠시 후 다시 시도하세요",
	CodeEmployeeLockTimeout: "다른 작업이 처리 중입니다. 잠시 후 다시 시도하세요",
	CodeChatImportBusy:      "다른 작업이 처리 중입니다. 잠시 후 다시 시도하세요",
	CodeWebhookBusy:         "처리 중인 요청이 많습니다. 다시 보내 주세요",
	CodeInternal:            "서버 내부 오류",
}

// MessageFor 코드의 기본 안내 문구 (없으면 빈 문자열)
func MessageFor(code int) string {
	return defaultMessages[code]
}
