package model

// Employee 직원 (employees)
//
// TotalPoints 는 누계값이다. 완료 적립과 관리자 조정으로만 가산되며
// 이력을 다시 합산해 재계산하지 않는다.
type Employee struct {
	EmployeeID  string `gorm:"type:varchar(50);primaryKey"        json:"employee_id"`
	Name        string `gorm:"type:varchar(100);not null"         json:"name"`
	Department  string `gorm:"type:varchar(50);not null;default:''" json:"department"`
	TotalPoints int64  `gorm:"not null;default:0"                 json:"total_points"`
	Version     int    `gorm:"not null;default:1"                 json:"version"`
	BaseModel
}

// TableName 테이블명
func (Employee) TableName() string { return "employees" }
