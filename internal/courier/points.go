package courier

// Points 한 건의 운송에 대해 지급되는 포인트
type Points struct {
	Applicant   int64 `json:"applicant"`
	Transporter int64 `json:"transporter"`
}

var (
	shortRoutePoints   = Points{Applicant: 5000, Transporter: 5000}
	longRoutePoints    = Points{Applicant: 5000, Transporter: 10000}
	defaultRoutePoints = Points{Applicant: 5000, Transporter: 5000}
)

// CalculatePoints 경로(순서 무관)에 따른 요청자/전달자 포인트
//
//	{판교, 평촌}                → 5000 / 5000
//	{광주본사|광주R&D} × {판교|평촌} → 5000 / 10000
//	그 외                        → 5000 / 5000
func CalculatePoints(from, to Office) Points {
	switch {
	case isMetro(from) && isMetro(to) && from != to:
		return shortRoutePoints
	case from.IsGwangju() && isMetro(to), to.IsGwangju() && isMetro(from):
		return longRoutePoints
	default:
		return defaultRoutePoints
	}
}

func isMetro(o Office) bool {
	return o == OfficePangyo || o == OfficePyeongchon
}
